package domain

// ImageType represents the allowed image types for document upload.
type ImageType string

const (
	ImageTypeJPG ImageType = "jpg"
	ImageTypePNG ImageType = "png"
)

// AllowedImageTypes maps ImageType to its MIME content type.
var AllowedImageTypes = map[ImageType]string{
	ImageTypeJPG: "image/jpeg",
	ImageTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to ImageType.
var AllowedContentTypes = map[string]ImageType{
	"image/jpeg": ImageTypeJPG,
	"image/png":  ImageTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to ImageType.
var AllowedExtensions = map[string]ImageType{
	"jpg":  ImageTypeJPG,
	"jpeg": ImageTypeJPG,
	"png":  ImageTypePNG,
}

// UserRole defines the portal role hierarchy.
type UserRole string

const (
	RoleCitizen  UserRole = "citizen"
	RoleOfficial UserRole = "official"
	RoleAdmin    UserRole = "admin"
)

// ValidRoles enumerates assignable roles.
var ValidRoles = map[UserRole]bool{
	RoleCitizen:  true,
	RoleOfficial: true,
	RoleAdmin:    true,
}

// DocumentType identifies the kind of government document submitted.
type DocumentType string

const (
	DocTypeNationalID       DocumentType = "national_id"
	DocTypePassport         DocumentType = "passport"
	DocTypeDriversLicense   DocumentType = "drivers_license"
	DocTypeBirthCertificate DocumentType = "birth_certificate"
	DocTypeLandTitle        DocumentType = "land_title"
	DocTypeOther            DocumentType = "other"
)

// ValidDocumentTypes enumerates accepted document types.
var ValidDocumentTypes = map[DocumentType]bool{
	DocTypeNationalID:       true,
	DocTypePassport:         true,
	DocTypeDriversLicense:   true,
	DocTypeBirthCertificate: true,
	DocTypeLandTitle:        true,
	DocTypeOther:            true,
}

// SubmissionStatus represents the lifecycle of a citizen submission.
type SubmissionStatus string

const (
	SubmissionPending      SubmissionStatus = "pending"
	SubmissionExtracted    SubmissionStatus = "extracted"
	SubmissionManualReview SubmissionStatus = "needs_manual_review"
	SubmissionValidated    SubmissionStatus = "validated"
	SubmissionRejected     SubmissionStatus = "rejected"
	SubmissionApproved     SubmissionStatus = "approved"
)

// ReviewStatus is the status an official assigns during review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewValid    ReviewStatus = "valid"
	ReviewInvalid  ReviewStatus = "invalid"
	ReviewEscalate ReviewStatus = "needs_review"
)

// ValidReviewStatuses enumerates statuses an official may set.
var ValidReviewStatuses = map[ReviewStatus]bool{
	ReviewValid:    true,
	ReviewInvalid:  true,
	ReviewEscalate: true,
}

// DecisionStatus is the final call an admin makes on a submission.
type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

// ValidDecisionStatuses enumerates final decisions.
var ValidDecisionStatuses = map[DecisionStatus]bool{
	DecisionApproved: true,
	DecisionRejected: true,
}
