package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicpulse/internal/domain"
)

func attemptWithRecord(rec *domain.ExtractedRecord, elapsedMs int64) domain.ExtractionAttempt {
	return domain.ExtractionAttempt{Success: true, Record: rec, ProcessingTimeMs: elapsedMs}
}

func recordWith(t *testing.T, values map[FieldID]string, confs map[FieldID]float64) *domain.ExtractedRecord {
	t.Helper()
	rec := FallbackRecord()
	rec.Recommendations = nil
	for _, f := range recordFields {
		f.Set(rec, domain.SentinelNotFound)
		rec.Confidence.Fields[string(f.ID)] = 0
	}
	for id, v := range values {
		fieldByID(id).Set(rec, v)
	}
	for id, c := range confs {
		rec.Confidence.Fields[string(id)] = c
	}
	rec.RawExtractedText = domain.SentinelNotFound
	return rec
}

func TestMergeAttempts_AllFailed(t *testing.T) {
	attempts := []domain.ExtractionAttempt{
		{Success: false, Error: "timeout"},
		{Success: false, Error: "rate limited"},
	}
	assert.Nil(t, MergeAttempts(attempts, StrategyFirstMatch))
	assert.Nil(t, MergeAttempts(nil, StrategyFirstMatch))
}

func TestMergeAttempts_FirstMatchWins(t *testing.T) {
	front := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO JAMES", FieldIDNumber: "90123456789012"},
		map[FieldID]float64{FieldFullName: 80, FieldIDNumber: 90})
	back := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO J.", FieldVillage: "KIWATULE"},
		map[FieldID]float64{FieldFullName: 95, FieldVillage: 85})

	merged := MergeAttempts([]domain.ExtractionAttempt{
		attemptWithRecord(front, 1200),
		attemptWithRecord(back, 800),
	}, StrategyFirstMatch)
	require.NotNil(t, merged)

	// First attempt found the name, so its value wins despite the lower
	// confidence; the back side fills in what the front lacked.
	assert.Equal(t, "OKELLO JAMES", merged.PersonalInfo.FullName)
	assert.Equal(t, "90123456789012", merged.PersonalInfo.IDNumber)
	assert.Equal(t, "KIWATULE", merged.PersonalInfo.Address.Village)

	// Per-field confidence is the max across attempts.
	assert.Equal(t, 95.0, merged.Confidence.Fields["full_name"])

	assert.Equal(t, int64(2000), merged.ProcessingTimeMs)
}

func TestMergeAttempts_HighestConfidenceStrategy(t *testing.T) {
	a := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO JAMES"},
		map[FieldID]float64{FieldFullName: 60})
	b := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO JAMES PETER"},
		map[FieldID]float64{FieldFullName: 92})

	merged := MergeAttempts([]domain.ExtractionAttempt{
		attemptWithRecord(a, 0),
		attemptWithRecord(b, 0),
	}, StrategyHighestConfidence)
	require.NotNil(t, merged)

	assert.Equal(t, "OKELLO JAMES PETER", merged.PersonalInfo.FullName)
	assert.Equal(t, 92.0, merged.Confidence.Fields["full_name"])
}

func TestMergeAttempts_OverallIsMeanOverAllFields(t *testing.T) {
	a := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO JAMES"},
		map[FieldID]float64{FieldFullName: 100})
	b := recordWith(t, nil, nil)

	merged := MergeAttempts([]domain.ExtractionAttempt{
		attemptWithRecord(a, 0),
		attemptWithRecord(b, 0),
	}, StrategyFirstMatch)
	require.NotNil(t, merged)

	// One field at 100, thirteen at zero.
	assert.InDelta(t, 100.0/float64(len(recordFields)), merged.Confidence.Overall, 0.001)
}

func TestMergeAttempts_SingleRecordPassesThrough(t *testing.T) {
	rec := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO JAMES", FieldVillage: "Village Not Found"},
		map[FieldID]float64{FieldFullName: 90, FieldVillage: 0})
	rec.Confidence.Overall = 80

	merged := MergeAttempts([]domain.ExtractionAttempt{attemptWithRecord(rec, 450)}, StrategyFirstMatch)
	require.NotNil(t, merged)

	// A lone record keeps the normalizer's output untouched: the
	// field-specific sentinel and the model-reported overall confidence
	// must not be recomputed.
	assert.Equal(t, "Village Not Found", merged.PersonalInfo.Address.Village)
	assert.Equal(t, 80.0, merged.Confidence.Overall)
	assert.Equal(t, "OKELLO JAMES", merged.PersonalInfo.FullName)
	assert.Equal(t, int64(450), merged.ProcessingTimeMs)
}

func TestMergeAttempts_AllSentinelKeepsFieldSentinel(t *testing.T) {
	a := recordWith(t,
		map[FieldID]string{FieldFullName: "OKELLO JAMES", FieldVillage: "Village Not Found"},
		map[FieldID]float64{FieldFullName: 90})
	b := recordWith(t,
		map[FieldID]string{FieldIDNumber: "90123456789012", FieldVillage: "Village Not Found"},
		map[FieldID]float64{FieldIDNumber: 92})

	merged := MergeAttempts([]domain.ExtractionAttempt{
		attemptWithRecord(a, 0),
		attemptWithRecord(b, 0),
	}, StrategyFirstMatch)
	require.NotNil(t, merged)

	// Neither attempt found the village, so the first record's
	// field-specific sentinel carries over instead of the generic one.
	assert.Equal(t, "Village Not Found", merged.PersonalInfo.Address.Village)
	assert.Equal(t, "OKELLO JAMES", merged.PersonalInfo.FullName)
	assert.Equal(t, "90123456789012", merged.PersonalInfo.IDNumber)
}

func TestMergeAttempts_RecommendationsAndRawText(t *testing.T) {
	a := recordWith(t, nil, nil)
	a.Recommendations = []string{"check NIN", "verify photo"}
	a.RawExtractedText = "front text"
	b := recordWith(t, nil, nil)
	b.Recommendations = []string{"check NIN", "confirm address"}
	b.RawExtractedText = "back text"

	merged := MergeAttempts([]domain.ExtractionAttempt{
		attemptWithRecord(a, 0),
		attemptWithRecord(b, 0),
	}, StrategyFirstMatch)
	require.NotNil(t, merged)

	assert.Equal(t, []string{"check NIN", "verify photo", "confirm address"}, merged.Recommendations)
	assert.True(t, strings.Contains(merged.RawExtractedText, "front text"))
	assert.True(t, strings.Contains(merged.RawExtractedText, "back text"))
}

func TestMergeAttempts_FailedAttemptsIgnored(t *testing.T) {
	rec := recordWith(t,
		map[FieldID]string{FieldDistrict: "KAMPALA"},
		map[FieldID]float64{FieldDistrict: 88})

	merged := MergeAttempts([]domain.ExtractionAttempt{
		{Success: false, Error: "boom", ProcessingTimeMs: 500},
		attemptWithRecord(rec, 700),
	}, StrategyFirstMatch)
	require.NotNil(t, merged)

	assert.Equal(t, "KAMPALA", merged.PersonalInfo.Address.District)
	// Failed attempts contribute no processing time.
	assert.Equal(t, int64(700), merged.ProcessingTimeMs)
}
