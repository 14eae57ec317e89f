package api

import (
	"net/http"

	reqdto "pride-notify/internal/handler/dto/request"
	resdto "pride-notify/internal/handler/dto/response"
	"pride-notify/internal/handler/httperr"
	"pride-notify/internal/pkg/errs"
	"pride-notify/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	q queries.OutcomeQueries
}

func NewReportHandler(q queries.OutcomeQueries) *ReportHandler {
	return &ReportHandler{q: q}
}

// @Summary List outcome logs
// @Description Paginated outcome log for one variant, newest first. Both dates are required and end_date is inclusive.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param variant path string true "Variant" Enums(loan_due, birthday, group_loan_receipt, atm_card_expiry, custom_message, escrow_statement_line, ledger_report_line)
// @Param start_date query string true "First day (YYYY-MM-DD)"
// @Param end_date query string true "Last day (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Rows per page" default(10)
// @Success 200 {object} resdto.OutcomeLogPageResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/logs/{variant} [get]
func (h *ReportHandler) List(c *gin.Context) {
	var req reqdto.ReportQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	r, err := h.q.ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		h.abort(c, err)
		return
	}
	page, err := h.q.List(c.Request.Context(), c.Param("variant"), r, req.Page, req.PageSize)
	if err != nil {
		h.abort(c, err)
		return
	}
	res, err := resdto.FromOutcomeLogPage(page)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to build report", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Export outcome logs
// @Description Every outcome log row for one variant in the date range.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param variant path string true "Variant"
// @Param start_date query string true "First day (YYYY-MM-DD)"
// @Param end_date query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} resdto.OutcomeLogExportResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/logs/{variant}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var req reqdto.ReportQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	r, err := h.q.ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		h.abort(c, err)
		return
	}
	export, err := h.q.Export(c.Request.Context(), c.Param("variant"), r)
	if err != nil {
		h.abort(c, err)
		return
	}
	res, err := resdto.FromOutcomeLogExport(export)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to build export", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) abort(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrInvalidDateRange):
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
	case errs.Is(err, errs.ErrUnknownVariant):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown report variant", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load report", nil)
	}
}
