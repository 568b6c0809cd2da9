package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user is inactive")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image exceeds maximum allowed size")
	ErrNoImages             = errors.New("at least one image is required")
	ErrUploadFailed         = errors.New("image upload to storage failed")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrInvalidDocumentType  = errors.New("invalid document type")
	ErrInvalidStatus        = errors.New("invalid status transition")
	ErrInsufficientRole     = errors.New("insufficient role for this action")

	// Pipeline errors. Recovery is local wherever possible: a decode
	// failure falls back to the unmerged originals, a transport failure
	// becomes a failed attempt, a parse failure becomes a fallback
	// record. Only ErrNoDataExtracted surfaces to callers.
	ErrImageDecode     = errors.New("image could not be decoded")
	ErrResponseParse   = errors.New("extraction response contains no parseable JSON object")
	ErrNoDataExtracted = errors.New("no data extracted from any image")
)
