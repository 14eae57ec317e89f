package api

import (
	"context"
	"errors"
	"html"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"pride-notify/internal/domain/notification"
	reqdto "pride-notify/internal/handler/dto/request"
	resdto "pride-notify/internal/handler/dto/response"
	"pride-notify/internal/handler/httperr"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/dispatch"

	"github.com/gin-gonic/gin"
)

const maxAttachmentBytes = 10 << 20

var errAttachmentTooLarge = errs.New("attachment too large")

// OperatorSender sends content an operator submitted by hand.
type OperatorSender interface {
	SendSMS(ctx context.Context, records []notification.RawRecord) (*dispatch.BatchResult, error)
	SendEmail(ctx context.Context, email dispatch.Email) (*notification.Outcome, error)
}

type SendHandler struct {
	sender OperatorSender
	logger *slog.Logger
}

func NewSendHandler(sender OperatorSender, logger *slog.Logger) *SendHandler {
	return &SendHandler{sender: sender, logger: logger}
}

// @Summary Send SMS from records
// @Description Classifies, renders and sends each record as an SMS. Every outcome is recorded
// @Description in the log table of the record's variant.
// @Tags send
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body reqdto.SendSMSRequest true "Records"
// @Success 200 {object} resdto.BatchResultResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} resdto.BatchResultResponse
// @Router /internal/send/sms [post]
func (h *SendHandler) SMS(c *gin.Context) {
	var req reqdto.SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}

	records := make([]notification.RawRecord, len(req.Records))
	for i, r := range req.Records {
		records[i] = notification.RawRecord(r)
	}

	res, err := h.sender.SendSMS(context.WithoutCancel(c.Request.Context()), records)
	var ce *notification.ClassificationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resdto.FromBatchResult(res))
	case errors.As(err, &ce):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "No record could be classified", nil)
	case res != nil:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, resdto.FromBatchResult(res))
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Send failed", nil)
	}
}

// @Summary Send an email
// @Description Sends one email to every to and cc address through the email relay and records it
// @Description in the custom message log. A plain message is escaped when no html_message is given.
// @Tags send
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param sender_email formData string false "From address"
// @Param subject formData string true "Subject"
// @Param html_message formData string false "HTML body"
// @Param message formData string false "Plain text body"
// @Param to formData []string true "Recipients" collectionFormat(multi)
// @Param cc formData []string false "Copy recipients" collectionFormat(multi)
// @Param attachments formData file false "Attachments"
// @Success 200 {object} resdto.SendEmailResponse
// @Failure 400 {object} httperr.Response
// @Failure 413 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /internal/send/email [post]
func (h *SendHandler) Email(c *gin.Context) {
	var req reqdto.SendEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
		return
	}

	body := req.HTMLMessage
	if strings.TrimSpace(body) == "" && strings.TrimSpace(req.Message) != "" {
		body = "<pre>" + html.EscapeString(req.Message) + "</pre>"
	}
	if strings.TrimSpace(body) == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(errs.New("empty body"), dispatch.ErrInvalidEmail),
			"html_message or message is required", nil)
		return
	}

	attachments, err := readAttachments(req.Attachments)
	if err != nil {
		status := http.StatusBadRequest
		if errs.Is(err, errAttachmentTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		httperr.AbortWithError(c, status, err, "Invalid attachment", nil)
		return
	}

	outcome, err := h.sender.SendEmail(context.WithoutCancel(c.Request.Context()), dispatch.Email{
		Sender:      req.SenderEmail,
		Subject:     req.Subject,
		HTML:        body,
		To:          req.To,
		Cc:          req.Cc,
		Attachments: attachments,
	})
	var gwErr *notification.GatewayError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resdto.SendEmailResponse{
			Success:   1,
			Message:   "Email has been sent successfully",
			OutcomeID: outcome.ID().String(),
		})
	case errs.Is(err, dispatch.ErrInvalidEmail):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid email", nil)
	case errors.As(err, &gwErr):
		var detail map[string]string
		if outcome != nil {
			detail = map[string]string{"outcome_id": outcome.ID().String()}
		}
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Email gateway rejected the message", detail)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Email could not be sent", nil)
	}
}

func readAttachments(files []*multipart.FileHeader) ([]notification.Attachment, error) {
	out := make([]notification.Attachment, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxAttachmentBytes {
			return nil, errs.Mark(errs.Newf("%s is %d bytes", fh.Filename, fh.Size), errAttachmentTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errs.Wrapf(err, "open %s", fh.Filename)
		}
		content, err := io.ReadAll(io.LimitReader(f, maxAttachmentBytes+1))
		_ = f.Close()
		if err != nil {
			return nil, errs.Wrapf(err, "read %s", fh.Filename)
		}
		if len(content) > maxAttachmentBytes {
			return nil, errs.Mark(errs.Newf("%s exceeds %d bytes", fh.Filename, maxAttachmentBytes), errAttachmentTooLarge)
		}
		out = append(out, notification.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return out, nil
}
