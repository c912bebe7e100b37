package analyzer

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/atikulmunna/tally/internal/model"
)

// Defaults for absent keys.
const (
	UnknownModel     = "unknown"
	UnknownTask      = "unknown"
	MissingTimestamp = "not provided"
)

// Analyze derives a Summary from rec. Every field falls back to its default
// independently; it never fails. Filename is left for the caller to set.
func Analyze(rec model.RawRecord) model.Summary {
	_, hasMeta := rec["metadata"]
	return model.Summary{
		Model:        textField(rec, "model", UnknownModel),
		Task:         textField(rec, "task", UnknownTask),
		OutputLength: outputLength(rec),
		HasMetadata:  hasMeta,
		Timestamp:    textField(rec, "timestamp", MissingTimestamp),
	}
}

// textField returns the value under key, or fallback when the key is absent.
// Non-string values are rendered as compact JSON (null, 42, {"a":1}).
func textField(rec model.RawRecord, key, fallback string) string {
	v, ok := rec[key]
	if !ok {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

// outputLength counts codepoints of a textual "output". Anything else is 0.
func outputLength(rec model.RawRecord) int {
	s, ok := rec["output"].(string)
	if !ok {
		return 0
	}
	return utf8.RuneCountInString(s)
}
