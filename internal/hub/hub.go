package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/atikulmunna/tally/internal/model"
)

const subscriberBuffer = 16

// Hub receives Reports from the scan loop, keeps the latest one, and
// broadcasts each to all subscribers.
type Hub struct {
	input       <-chan model.Report
	mu          sync.RWMutex
	latest      model.Report
	hasLatest   bool
	subscribers map[chan model.Report]struct{}
	dropped     int64
	log         *slog.Logger
}

// New creates a Hub that reads from the input channel.
func New(input <-chan model.Report, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		input:       input,
		subscribers: make(map[chan model.Report]struct{}),
		log:         logger,
	}
}

// Subscribe returns a buffered channel that will receive every new Report.
// The latest Report, if any, is delivered first.
func (h *Hub) Subscribe() <-chan model.Report {
	ch := make(chan model.Report, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hasLatest {
		ch <- h.latest
	}
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan model.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		if ch == sub {
			delete(h.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Latest returns the most recent Report and whether one has been received.
func (h *Hub) Latest() (model.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasLatest
}

// Dropped returns the total number of reports dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start begins reading from the input channel and broadcasting.
// Blocks until the context is cancelled or the input channel is closed.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(report)
		}
	}
}

// broadcast stores report as latest and sends it to all subscribers.
// If a subscriber's channel is full, the report is dropped for that subscriber.
func (h *Hub) broadcast(report model.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = report
	h.hasLatest = true
	for ch := range h.subscribers {
		select {
		case ch <- report:
		default:
			h.dropped++
			h.log.Warn("hub: dropped report for slow consumer", "total_dropped", h.dropped)
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan model.Report]struct{})
}
