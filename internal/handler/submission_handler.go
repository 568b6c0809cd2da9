package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"publicpulse/internal/domain"
	"publicpulse/internal/service"
)

// SubmissionHandler handles the citizen submission endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	log         *zap.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissions service.SubmissionService, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, log: log}
}

// Create handles POST /api/v1/submissions (multipart form with one or
// more "images" files plus document_type and description fields).
func (h *SubmissionHandler) Create(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "multipart form is required")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		RespondError(c, http.StatusBadRequest, "NO_IMAGES", "at least one image file is required")
		return
	}

	images := make([]service.SubmissionImage, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "could not read uploaded file")
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "could not read uploaded file")
			return
		}
		images = append(images, service.SubmissionImage{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	input := &service.CreateSubmissionInput{
		ApplicantID:  userID,
		DocumentType: domain.DocumentType(c.PostForm("document_type")),
		Description:  c.PostForm("description"),
		Images:       images,
	}

	sub, err := h.submissions.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, sub)
}

// Get handles GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	sub, err := h.submissions.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, sub)
}

// ListMine handles GET /api/v1/submissions
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	subs, total, err := h.submissions.ListMine(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListQueue handles GET /api/v1/queue?status=...
func (h *SubmissionHandler) ListQueue(c *gin.Context) {
	_, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	var status *domain.SubmissionStatus
	if s := c.Query("status"); s != "" {
		st := domain.SubmissionStatus(s)
		status = &st
	}

	subs, total, err := h.submissions.ListQueue(c.Request.Context(), role, status, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

type reviewRequest struct {
	Status domain.ReviewStatus `json:"status" binding:"required"`
	Notes  string              `json:"notes"`
}

// Review handles POST /api/v1/submissions/:id/review
func (h *SubmissionHandler) Review(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	sub, err := h.submissions.Review(c.Request.Context(), &service.ReviewInput{
		SubmissionID: id,
		ReviewerID:   userID,
		ReviewerRole: role,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, sub)
}

type decisionRequest struct {
	Decision domain.DecisionStatus `json:"decision" binding:"required"`
	Summary  string                `json:"summary"`
}

// Decide handles POST /api/v1/submissions/:id/decision
func (h *SubmissionHandler) Decide(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	sub, err := h.submissions.Decide(c.Request.Context(), &service.DecisionInput{
		SubmissionID: id,
		DeciderID:    userID,
		DeciderRole:  role,
		Decision:     req.Decision,
		Summary:      req.Summary,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, sub)
}

// ReExtract handles POST /api/v1/submissions/:id/re-extract
func (h *SubmissionHandler) ReExtract(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	sub, err := h.submissions.ReExtract(c.Request.Context(), id, userID, role)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, sub)
}

// ImageURLs handles GET /api/v1/submissions/:id/images
func (h *SubmissionHandler) ImageURLs(c *gin.Context) {
	userID, role, ok := extractAuthContext(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid submission id")
		return
	}

	urls, err := h.submissions.ImageURLs(c.Request.Context(), id, userID, role)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, gin.H{"urls": urls})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
