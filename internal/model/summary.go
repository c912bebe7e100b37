package model

import "time"

// RawRecord is one decoded input file. Any key may be absent.
type RawRecord map[string]any

// Summary is the fixed-shape record derived from a RawRecord.
type Summary struct {
	Filename     string `json:"filename"` // base name, set by the scanner
	Model        string `json:"model"`
	Task         string `json:"task"`
	OutputLength int    `json:"output_length"` // codepoints in "output"
	HasMetadata  bool   `json:"has_metadata"`
	Timestamp    string `json:"timestamp"`
}

// Report is the result of one scan run, in enumeration order.
type Report struct {
	Directory   string    `json:"directory"`
	Pattern     string    `json:"pattern"`
	GeneratedAt time.Time `json:"generated_at"`
	Results     []Summary `json:"results"`
}
