package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"publicpulse/internal/domain"
	"publicpulse/internal/export"
	"publicpulse/internal/service"
)

// ReportHandler produces downloadable submission reports.
type ReportHandler struct {
	submissions service.SubmissionService
	log         *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(submissions service.SubmissionService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{submissions: submissions, log: log}
}

// maximum rows per report download
const reportLimit = 10000

// ExportXLSX handles GET /api/v1/reports/submissions.xlsx?status=...
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	_, role, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var status *domain.SubmissionStatus
	if s := c.Query("status"); s != "" {
		st := domain.SubmissionStatus(s)
		status = &st
	}

	subs, _, err := h.submissions.ListQueue(c.Request.Context(), role, status, 0, reportLimit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	w, err := export.NewWriter()
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	defer func() { _ = w.Close() }()

	if err := w.WriteSubmissions(subs); err != nil {
		HandleError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("submissions-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if _, err := w.WriteTo(c.Writer); err != nil {
		h.log.Error("writing xlsx report", zap.Error(err))
	}
}
