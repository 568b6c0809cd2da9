package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"publicpulse/internal/domain"
	"publicpulse/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound, "SUBMISSION_NOT_FOUND", "submission not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already registered"
	case errors.Is(err, domain.ErrUnsupportedImageType):
		return http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE", "unsupported image type; allowed: jpg, png"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "image exceeds maximum allowed size"
	case errors.Is(err, domain.ErrNoImages):
		return http.StatusBadRequest, "NO_IMAGES", "at least one image is required"
	case errors.Is(err, domain.ErrInvalidDocumentType):
		return http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "invalid document type"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusConflict, "INVALID_STATUS", "submission is not in a state that allows this action"
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, "INSUFFICIENT_ROLE", "insufficient role for this action"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "image upload to storage failed"
	case errors.Is(err, domain.ErrNoDataExtracted):
		return http.StatusUnprocessableEntity, "NO_DATA_EXTRACTED", "no data could be extracted from the images"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// extractAuthContext extracts user ID and role from the request context.
// Returns false if auth context is missing (error response already written).
func extractAuthContext(c *gin.Context) (userID uuid.UUID, role domain.UserRole, ok bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, "", false
	}
	role = domain.UserRole(middleware.GetRole(c))
	return userID, role, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error("internal error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
	}
	RespondError(c, status, code, msg)
}
