package aggregator

import (
	"sort"
	"sync"
	"time"

	"github.com/atikulmunna/tally/internal/model"
)

// Stats holds totals computed over one Report.
type Stats struct {
	FilesAnalyzed int            `json:"files_analyzed"`
	TotalChars    int            `json:"total_output_chars"`
	WithMetadata  int            `json:"with_metadata"`
	ModelCounts   map[string]int `json:"model_counts"`
	TaskCounts    map[string]int `json:"task_counts"`
}

// Compute derives Stats from a result collection.
func Compute(results []model.Summary) Stats {
	st := Stats{
		FilesAnalyzed: len(results),
		ModelCounts:   make(map[string]int),
		TaskCounts:    make(map[string]int),
	}
	for _, r := range results {
		st.TotalChars += r.OutputLength
		if r.HasMetadata {
			st.WithMetadata++
		}
		st.ModelCounts[r.Model]++
		st.TaskCounts[r.Task]++
	}
	return st
}

// SortedKeys returns the keys of counts ordered by descending count, then name.
func SortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Snapshot is the live view served by the dashboard.
type Snapshot struct {
	Uptime   string `json:"uptime"`
	Scans    int64  `json:"scans"`
	LastScan string `json:"last_scan,omitempty"`
	Stats
}

// Aggregator keeps the stats of the most recent Report.
type Aggregator struct {
	mu        sync.RWMutex
	startTime time.Time
	scans     int64
	last      time.Time
	stats     Stats
}

func New() *Aggregator {
	return &Aggregator{
		startTime: time.Now(),
		stats:     Compute(nil),
	}
}

// Record replaces the current stats with those of report.
func (a *Aggregator) Record(report model.Report) {
	st := Compute(report.Results)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.scans++
	a.last = report.GeneratedAt
	a.stats = st
}

// Snapshot returns a copy of the current metrics.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := a.stats
	st.ModelCounts = copyCounts(a.stats.ModelCounts)
	st.TaskCounts = copyCounts(a.stats.TaskCounts)

	snap := Snapshot{
		Uptime: time.Since(a.startTime).Truncate(time.Second).String(),
		Scans:  a.scans,
		Stats:  st,
	}
	if !a.last.IsZero() {
		snap.LastScan = a.last.Format(time.RFC3339)
	}
	return snap
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
