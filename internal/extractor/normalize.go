package extractor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"publicpulse/internal/domain"
)

var (
	datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

const (
	ninDigits    = 14
	cardNoDigits = 9
)

// rawRecord mirrors the JSON shape requested by the prompts, with loose
// scalar types so null, numbers and strings all decode.
type rawRecord struct {
	PersonalInfo struct {
		FullName    any `json:"full_name"`
		IDNumber    any `json:"id_number"`
		DateOfBirth any `json:"date_of_birth"`
		Gender      any `json:"gender"`
		Email       any `json:"email"`
		Address     struct {
			Village   any `json:"village"`
			Parish    any `json:"parish"`
			SubCounty any `json:"subcounty"`
			County    any `json:"county"`
			District  any `json:"district"`
		} `json:"address"`
	} `json:"personal_info"`
	DocumentInfo struct {
		DocumentType     any `json:"document_type"`
		ExpiryDate       any `json:"expiry_date"`
		IssuingAuthority any `json:"issuing_authority"`
		DocumentNumber   any `json:"document_number"`
	} `json:"document_info"`
	Confidence struct {
		Overall any            `json:"overall"`
		Fields  map[string]any `json:"fields"`
	} `json:"confidence"`
	Recommendations  []any `json:"recommendations"`
	RawExtractedText any   `json:"raw_extracted_text"`
}

// Normalize parses the raw model response into a canonical record. The
// model may wrap its JSON in prose or code fences; the first top-level JSON
// object found is used. Every schema field in the result carries either a
// real value or an explicit sentinel, and all confidences are in [0,100].
func Normalize(rawText string, docType domain.DocumentType) (*domain.ExtractedRecord, error) {
	jsonText, ok := extractJSONObject(rawText)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrResponseParse, truncate(rawText, 200))
	}

	var raw rawRecord
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResponseParse, err)
	}

	rec := &domain.ExtractedRecord{
		Confidence: domain.Confidence{Fields: make(map[string]float64, len(recordFields))},
	}
	rec.PersonalInfo.FullName = coerceString(raw.PersonalInfo.FullName)
	rec.PersonalInfo.IDNumber = coerceString(raw.PersonalInfo.IDNumber)
	rec.PersonalInfo.DateOfBirth = coerceString(raw.PersonalInfo.DateOfBirth)
	rec.PersonalInfo.Gender = coerceString(raw.PersonalInfo.Gender)
	rec.PersonalInfo.Email = coerceString(raw.PersonalInfo.Email)
	rec.PersonalInfo.Address.Village = coerceString(raw.PersonalInfo.Address.Village)
	rec.PersonalInfo.Address.Parish = coerceString(raw.PersonalInfo.Address.Parish)
	rec.PersonalInfo.Address.SubCounty = coerceString(raw.PersonalInfo.Address.SubCounty)
	rec.PersonalInfo.Address.County = coerceString(raw.PersonalInfo.Address.County)
	rec.PersonalInfo.Address.District = coerceString(raw.PersonalInfo.Address.District)
	rec.DocumentInfo.DocumentType = coerceString(raw.DocumentInfo.DocumentType)
	rec.DocumentInfo.ExpiryDate = coerceString(raw.DocumentInfo.ExpiryDate)
	rec.DocumentInfo.IssuingAuthority = coerceString(raw.DocumentInfo.IssuingAuthority)
	rec.DocumentInfo.DocumentNumber = coerceString(raw.DocumentInfo.DocumentNumber)

	for _, f := range recordFields {
		f.Set(rec, normalizeValue(f.Get(rec)))
		rec.Confidence.Fields[string(f.ID)] = clampConfidence(coerceFloat(raw.Confidence.Fields[string(f.ID)]))
	}
	rec.PersonalInfo.Gender = ConvertGender(rec.PersonalInfo.Gender)
	rec.Confidence.Overall = clampConfidence(coerceFloat(raw.Confidence.Overall))

	for _, item := range raw.Recommendations {
		if s := strings.TrimSpace(coerceString(item)); s != "" {
			rec.Recommendations = append(rec.Recommendations, s)
		}
	}
	rec.RawExtractedText = normalizeValue(coerceString(raw.RawExtractedText))

	if docType == domain.DocTypeNationalID {
		applyNationalIDChecks(rec)
	}
	return rec, nil
}

// NormalizeOrFallback never fails: any parse error yields the all-failed
// record so the submission flow always has something to attach.
func NormalizeOrFallback(rawText string, docType domain.DocumentType) *domain.ExtractedRecord {
	rec, err := Normalize(rawText, docType)
	if err != nil {
		return FallbackRecord()
	}
	return rec
}

// FallbackRecord returns a record with every field set to the extraction
// failure sentinel and zero confidence.
func FallbackRecord() *domain.ExtractedRecord {
	rec := &domain.ExtractedRecord{
		Confidence:      domain.Confidence{Fields: make(map[string]float64, len(recordFields))},
		Recommendations: []string{"Automatic extraction failed; enter the document details manually."},
	}
	for _, f := range recordFields {
		f.Set(rec, domain.SentinelExtractionFailed)
		rec.Confidence.Fields[string(f.ID)] = 0
	}
	rec.RawExtractedText = domain.SentinelExtractionFailed
	return rec
}

// ConvertGender maps the single-letter and uppercase forms to the canonical
// values. Sentinels and unrecognized values pass through unchanged.
func ConvertGender(v string) string {
	if domain.IsSentinel(v) {
		return v
	}
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M", "MALE":
		return "Male"
	case "F", "FEMALE":
		return "Female"
	}
	return v
}

// applyNationalIDChecks applies the national-ID schema validation: exact
// digit counts for the NIN and card number, strict DD.MM.YYYY dates, and
// field-specific sentinels for core fields that stayed unfound.
func applyNationalIDChecks(rec *domain.ExtractedRecord) {
	checkDigits(rec, FieldIDNumber, ninDigits)
	checkDigits(rec, FieldDocumentNumber, cardNoDigits)
	checkDate(rec, FieldDateOfBirth)
	checkDate(rec, FieldExpiryDate)

	for _, f := range recordFields {
		if f.Core && f.Get(rec) == domain.SentinelNotFound {
			f.Set(rec, f.Sentinel)
			rec.Confidence.Fields[string(f.ID)] = 0
		}
	}
}

// checkDigits strips separators from a numeric field. A value with exactly
// want digits is normalized to those digits and its confidence raised to at
// least 90; anything else keeps its value but is capped at 50.
func checkDigits(rec *domain.ExtractedRecord, id FieldID, want int) {
	f := fieldByID(id)
	v := f.Get(rec)
	if domain.IsSentinel(v) {
		return
	}
	digits := nonDigits.ReplaceAllString(v, "")
	key := string(id)
	if len(digits) == want {
		f.Set(rec, digits)
		if rec.Confidence.Fields[key] < 90 {
			rec.Confidence.Fields[key] = 90
		}
	} else if rec.Confidence.Fields[key] > 50 {
		rec.Confidence.Fields[key] = 50
	}
}

// checkDate penalizes dates not matching DD.MM.YYYY. The value itself is
// left as extracted; only the confidence is capped.
func checkDate(rec *domain.ExtractedRecord, id FieldID) {
	f := fieldByID(id)
	v := f.Get(rec)
	if domain.IsSentinel(v) || datePattern.MatchString(v) {
		return
	}
	key := string(id)
	if rec.Confidence.Fields[key] > 50 {
		rec.Confidence.Fields[key] = 50
	}
}

func fieldByID(id FieldID) fieldSpec {
	for _, f := range recordFields {
		if f.ID == id {
			return f
		}
	}
	// recordFields is a closed table; an unknown ID is a programming error.
	panic(fmt.Sprintf("unknown field id %q", id))
}

// extractJSONObject locates the first balanced top-level JSON object in s,
// skipping prose and code fences around it.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// normalizeValue coerces the model's various "nothing here" spellings to
// the Not Found sentinel and trims real values.
func normalizeValue(v string) string {
	t := strings.TrimSpace(v)
	switch strings.ToLower(t) {
	case "", "null", "undefined", "n/a", "none":
		return domain.SentinelNotFound
	}
	return t
}

func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func coerceFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func clampConfidence(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
