package analyzer

import (
	"testing"

	"github.com/atikulmunna/tally/internal/loader"
)

// BenchmarkDecodeAndAnalyze measures per-file cost once the bytes are in memory.
func BenchmarkDecodeAndAnalyze(b *testing.B) {
	data := []byte(`{"model":"gpt","task":"qa","output":"The quick brown fox jumps over the lazy dog.","metadata":{"run":7},"timestamp":"2026-02-17T12:00:00Z"}`)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec, err := loader.Decode(data)
		if err != nil {
			b.Fatal(err)
		}
		Analyze(rec)
	}
}
