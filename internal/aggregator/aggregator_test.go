package aggregator

import (
	"reflect"
	"testing"
	"time"

	"github.com/atikulmunna/tally/internal/model"
)

var sample = []model.Summary{
	{Filename: "a.json", Model: "gpt", Task: "qa", OutputLength: 5, HasMetadata: true},
	{Filename: "b.json", Model: "llama", Task: "qa", OutputLength: 0},
	{Filename: "c.json", Model: "gpt", Task: "summarize", OutputLength: 12},
}

func TestCompute(t *testing.T) {
	st := Compute(sample)

	if st.FilesAnalyzed != 3 {
		t.Errorf("expected 3 files, got %d", st.FilesAnalyzed)
	}
	if st.TotalChars != 17 {
		t.Errorf("expected 17 chars, got %d", st.TotalChars)
	}
	if st.WithMetadata != 1 {
		t.Errorf("expected 1 with metadata, got %d", st.WithMetadata)
	}
	if st.ModelCounts["gpt"] != 2 || st.ModelCounts["llama"] != 1 {
		t.Errorf("unexpected model counts: %v", st.ModelCounts)
	}
	if st.TaskCounts["qa"] != 2 || st.TaskCounts["summarize"] != 1 {
		t.Errorf("unexpected task counts: %v", st.TaskCounts)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 1, "a": 1, "c": 3})
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAggregatorSnapshot(t *testing.T) {
	agg := New()

	empty := agg.Snapshot()
	if empty.Scans != 0 || empty.FilesAnalyzed != 0 || empty.LastScan != "" {
		t.Errorf("expected zero snapshot, got %+v", empty)
	}

	at := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)
	agg.Record(model.Report{GeneratedAt: at, Results: sample})
	agg.Record(model.Report{GeneratedAt: at, Results: sample[:1]})

	snap := agg.Snapshot()
	if snap.Scans != 2 {
		t.Errorf("expected 2 scans, got %d", snap.Scans)
	}
	if snap.FilesAnalyzed != 1 {
		t.Errorf("expected latest report to win, got %d files", snap.FilesAnalyzed)
	}
	if snap.LastScan != "2026-02-17T12:00:00Z" {
		t.Errorf("unexpected last scan %q", snap.LastScan)
	}

	// Mutating the snapshot must not leak into the aggregator.
	snap.ModelCounts["gpt"] = 99
	if agg.Snapshot().ModelCounts["gpt"] != 1 {
		t.Error("snapshot counts should be a copy")
	}
}
