package extractor

import "publicpulse/internal/domain"

// FieldID identifies one field of the fixed extraction schema.
type FieldID string

const (
	FieldFullName         FieldID = "full_name"
	FieldIDNumber         FieldID = "id_number"
	FieldDateOfBirth      FieldID = "date_of_birth"
	FieldGender           FieldID = "gender"
	FieldEmail            FieldID = "email"
	FieldVillage          FieldID = "village"
	FieldParish           FieldID = "parish"
	FieldSubCounty        FieldID = "subcounty"
	FieldCounty           FieldID = "county"
	FieldDistrict         FieldID = "district"
	FieldDocumentType     FieldID = "document_type"
	FieldExpiryDate       FieldID = "expiry_date"
	FieldIssuingAuthority FieldID = "issuing_authority"
	FieldDocumentNumber   FieldID = "document_number"
)

// fieldSpec binds a FieldID to typed accessors on the canonical record.
// Core fields are the ones the national-ID schema rewrites to a
// field-specific sentinel when nothing was found.
type fieldSpec struct {
	ID       FieldID
	Core     bool
	Sentinel string
	Get      func(*domain.ExtractedRecord) string
	Set      func(*domain.ExtractedRecord, string)
}

// recordFields enumerates the 14-field schema in canonical order. The
// normalizer and the multi-result merger both iterate this table instead of
// walking the record by string paths.
var recordFields = []fieldSpec{
	{
		ID: FieldFullName, Core: true, Sentinel: "Name Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.FullName },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.FullName = v },
	},
	{
		ID: FieldIDNumber, Core: true, Sentinel: "ID Number Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.IDNumber },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.IDNumber = v },
	},
	{
		ID: FieldDateOfBirth, Core: true, Sentinel: "Date of Birth Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.DateOfBirth },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.DateOfBirth = v },
	},
	{
		ID: FieldGender, Core: true, Sentinel: "Gender Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Gender },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Gender = v },
	},
	{
		ID: FieldEmail, Sentinel: domain.SentinelNotFound,
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Email },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Email = v },
	},
	{
		ID: FieldVillage, Core: true, Sentinel: "Village Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Address.Village },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Address.Village = v },
	},
	{
		ID: FieldParish, Core: true, Sentinel: "Parish Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Address.Parish },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Address.Parish = v },
	},
	{
		ID: FieldSubCounty, Core: true, Sentinel: "Subcounty Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Address.SubCounty },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Address.SubCounty = v },
	},
	{
		ID: FieldCounty, Core: true, Sentinel: "County Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Address.County },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Address.County = v },
	},
	{
		ID: FieldDistrict, Core: true, Sentinel: "District Not Found",
		Get: func(r *domain.ExtractedRecord) string { return r.PersonalInfo.Address.District },
		Set: func(r *domain.ExtractedRecord, v string) { r.PersonalInfo.Address.District = v },
	},
	{
		ID: FieldDocumentType, Sentinel: domain.SentinelNotFound,
		Get: func(r *domain.ExtractedRecord) string { return r.DocumentInfo.DocumentType },
		Set: func(r *domain.ExtractedRecord, v string) { r.DocumentInfo.DocumentType = v },
	},
	{
		ID: FieldExpiryDate, Sentinel: domain.SentinelNotFound,
		Get: func(r *domain.ExtractedRecord) string { return r.DocumentInfo.ExpiryDate },
		Set: func(r *domain.ExtractedRecord, v string) { r.DocumentInfo.ExpiryDate = v },
	},
	{
		ID: FieldIssuingAuthority, Sentinel: domain.SentinelNotFound,
		Get: func(r *domain.ExtractedRecord) string { return r.DocumentInfo.IssuingAuthority },
		Set: func(r *domain.ExtractedRecord, v string) { r.DocumentInfo.IssuingAuthority = v },
	},
	{
		ID: FieldDocumentNumber, Sentinel: domain.SentinelNotFound,
		Get: func(r *domain.ExtractedRecord) string { return r.DocumentInfo.DocumentNumber },
		Set: func(r *domain.ExtractedRecord, v string) { r.DocumentInfo.DocumentNumber = v },
	},
}

// FieldIDs returns the schema's field identifiers in canonical order.
func FieldIDs() []FieldID {
	ids := make([]FieldID, len(recordFields))
	for i, f := range recordFields {
		ids[i] = f.ID
	}
	return ids
}
