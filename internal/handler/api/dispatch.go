package api

import (
	"context"
	"log/slog"
	"net/http"

	"pride-notify/internal/domain/notification"
	reqdto "pride-notify/internal/handler/dto/request"
	resdto "pride-notify/internal/handler/dto/response"
	"pride-notify/internal/handler/httperr"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/dispatch"

	"github.com/gin-gonic/gin"
)

// Dispatcher is the slice of the orchestrator the trigger API drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, category string, mode dispatch.RecordMode) (*dispatch.BatchResult, error)
	Run(ctx context.Context, category string) (*dispatch.BatchResult, error)
}

type DispatchHandler struct {
	dispatcher Dispatcher
	scheduler  dispatch.Scheduler
	logger     *slog.Logger
}

func NewDispatchHandler(dispatcher Dispatcher, scheduler dispatch.Scheduler, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher, scheduler: scheduler, logger: logger}
}

// @Summary Trigger a dispatch
// @Description Runs one batch for the category and records outcomes in bulk. With schedule=true the
// @Description batch is started in the background with retries and the call returns immediately.
// @Tags dispatch
// @Produce json
// @Security ApiKeyAuth
// @Param category path string true "Category" Enums(loans_due, birthdays, group_loans, atm_expiry, escrow, ledger_report, custom)
// @Param schedule query bool false "Run in background with retries"
// @Success 200 {object} resdto.BatchResultResponse
// @Success 202 {object} resdto.ScheduledDispatchResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} resdto.BatchResultResponse
// @Router /internal/dispatch/{category} [post]
func (h *DispatchHandler) Trigger(c *gin.Context) {
	category := c.Param("category")
	if _, err := notification.LookupCategory(category); err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown category", nil)
		return
	}

	var req reqdto.DispatchQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	if req.Schedule {
		h.scheduler.After(0, func(ctx context.Context) {
			if _, err := h.dispatcher.Run(ctx, category); err != nil {
				h.logger.Warn("triggered dispatch ended with error", "category", category, "error", err)
			}
		})
		c.JSON(http.StatusAccepted, resdto.ScheduledDispatchResponse{
			Category: category,
			Message:  "dispatch scheduled",
		})
		return
	}

	// the batch outlives a client that hangs up mid-send
	res, err := h.dispatcher.Dispatch(context.WithoutCancel(c.Request.Context()), category, dispatch.RecordBulk)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resdto.FromBatchResult(res))
	case errs.Is(err, errs.ErrBatchInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Dispatch already running for category", nil)
	case res != nil:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, resdto.FromBatchResult(res))
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Dispatch failed", nil)
	}
}
