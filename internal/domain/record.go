package domain

import "strings"

// Sentinel values for fields without a real extracted value. NotFound
// means the model looked and found nothing; ExtractionFailed means the
// extraction call or its response parsing failed outright.
const (
	SentinelNotFound         = "Not Found"
	SentinelExtractionFailed = "Extraction Failed"
)

// IsSentinel reports whether v is a placeholder rather than a real value.
// Field-specific sentinels ("Village Not Found", ...) end in the generic one.
func IsSentinel(v string) bool {
	return v == "" || v == SentinelExtractionFailed || strings.HasSuffix(v, SentinelNotFound)
}

// Address holds the five administrative levels used on Ugandan documents,
// from smallest to largest.
type Address struct {
	Village   string `json:"village"`
	Parish    string `json:"parish"`
	SubCounty string `json:"subcounty"`
	County    string `json:"county"`
	District  string `json:"district"`
}

// PersonalInfo holds the person-identifying fields of a document.
type PersonalInfo struct {
	FullName    string  `json:"full_name"`
	IDNumber    string  `json:"id_number"`
	DateOfBirth string  `json:"date_of_birth"`
	Gender      string  `json:"gender"`
	Email       string  `json:"email"`
	Address     Address `json:"address"`
}

// DocumentInfo holds the document-identifying fields.
type DocumentInfo struct {
	DocumentType     string `json:"document_type"`
	ExpiryDate       string `json:"expiry_date"`
	IssuingAuthority string `json:"issuing_authority"`
	DocumentNumber   string `json:"document_number"`
}

// Confidence carries the 0..100 extraction confidence per field plus an
// overall score.
type Confidence struct {
	Overall float64            `json:"overall"`
	Fields  map[string]float64 `json:"fields"`
}

// ExtractedRecord is the canonical output of the extraction pipeline.
// Every field always carries either a real value or an explicit sentinel;
// confidences are always within [0,100].
type ExtractedRecord struct {
	PersonalInfo     PersonalInfo `json:"personal_info"`
	DocumentInfo     DocumentInfo `json:"document_info"`
	Confidence       Confidence   `json:"confidence"`
	Recommendations  []string     `json:"recommendations"`
	RawExtractedText string       `json:"raw_extracted_text"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
}

// ExtractionAttempt is the outcome of one extraction call for one image.
type ExtractionAttempt struct {
	Success          bool             `json:"success"`
	Record           *ExtractedRecord `json:"record,omitempty"`
	Error            string           `json:"error,omitempty"`
	ModelUsed        string           `json:"model_used,omitempty"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

// ImageAsset is an encoded image payload moving through the pipeline.
type ImageAsset struct {
	Data        []byte
	ContentType string
}
