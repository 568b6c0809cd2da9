package extractor

import (
	"strings"

	"publicpulse/internal/domain"
)

// MergeStrategy selects which attempt supplies a field's value when more
// than one attempt found it.
type MergeStrategy string

const (
	// StrategyFirstMatch keeps the value from the earliest attempt that
	// found the field. Attempt order follows image order, so front-of-card
	// values win over back-of-card values.
	StrategyFirstMatch MergeStrategy = "first_match"
	// StrategyHighestConfidence keeps the value with the highest per-field
	// confidence across attempts.
	StrategyHighestConfidence MergeStrategy = "highest_confidence"
)

// MergeAttempts combines per-image extraction attempts into a single
// record. Failed attempts (nil record) contribute nothing; if every attempt
// failed the result is nil. A single surviving record is returned as-is,
// keeping the normalizer's field sentinels and overall confidence intact.
// With multiple records, per-field confidence is the maximum seen for that
// field and the overall confidence is the mean across all schema fields,
// so unfound fields drag the overall figure down.
func MergeAttempts(attempts []domain.ExtractionAttempt, strategy MergeStrategy) *domain.ExtractedRecord {
	var records []*domain.ExtractedRecord
	var totalMs int64
	for _, a := range attempts {
		if a.Record == nil {
			continue
		}
		records = append(records, a.Record)
		totalMs += a.ProcessingTimeMs
	}
	if len(records) == 0 {
		return nil
	}
	if len(records) == 1 {
		records[0].ProcessingTimeMs = totalMs
		return records[0]
	}

	merged := &domain.ExtractedRecord{
		Confidence:       domain.Confidence{Fields: make(map[string]float64, len(recordFields))},
		ProcessingTimeMs: totalMs,
	}

	var sum float64
	for _, f := range recordFields {
		key := string(f.ID)
		// When no attempt found the field the first record's sentinel
		// survives, so field-specific sentinels are not flattened to the
		// generic one.
		bestValue := f.Get(records[0])
		if bestValue == "" {
			bestValue = domain.SentinelNotFound
		}
		bestConf := -1.0
		maxConf := 0.0
		for _, rec := range records {
			conf := rec.Confidence.Fields[key]
			if conf > maxConf {
				maxConf = conf
			}
			v := f.Get(rec)
			if domain.IsSentinel(v) {
				continue
			}
			switch strategy {
			case StrategyHighestConfidence:
				if conf > bestConf {
					bestValue, bestConf = v, conf
				}
			default:
				if bestConf < 0 {
					bestValue, bestConf = v, conf
				}
			}
		}
		f.Set(merged, bestValue)
		merged.Confidence.Fields[key] = maxConf
		sum += maxConf
	}
	merged.Confidence.Overall = sum / float64(len(recordFields))

	seen := make(map[string]struct{})
	var rawParts []string
	for _, rec := range records {
		for _, r := range rec.Recommendations {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			merged.Recommendations = append(merged.Recommendations, r)
		}
		if !domain.IsSentinel(rec.RawExtractedText) {
			rawParts = append(rawParts, rec.RawExtractedText)
		}
	}
	if len(rawParts) == 0 {
		merged.RawExtractedText = domain.SentinelNotFound
	} else {
		merged.RawExtractedText = strings.Join(rawParts, "\n\n")
	}
	return merged
}
