package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CapturedEntry is one log record retained for the in-app log viewer.
type CapturedEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// captureBuffer is the fixed-size ring shared by a CaptureHandler and the
// derived handlers its WithAttrs/WithGroup calls return.
type captureBuffer struct {
	mu      sync.RWMutex
	entries []CapturedEntry
	head    int
	count   int
	forward func(CapturedEntry)
}

func (b *captureBuffer) store(entry CapturedEntry) {
	b.mu.Lock()
	b.entries[b.head] = entry
	b.head = (b.head + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
	forward := b.forward
	b.mu.Unlock()

	// Called outside the lock so a slow sink cannot stall logging.
	// The sink must not log, or it will feed itself.
	if forward != nil {
		forward(entry)
	}
}

// CaptureHandler wraps another slog.Handler and tees every record it
// handles into a bounded in-memory ring buffer, so the UI can show recent
// application logs without touching the log files. An optional forward
// function receives each record as it arrives for live viewer updates.
type CaptureHandler struct {
	next  slog.Handler
	buf   *captureBuffer
	attrs []slog.Attr
}

// NewCaptureHandler creates a capture handler retaining the last capacity
// records and forwarding records to next.
func NewCaptureHandler(next slog.Handler, capacity int) *CaptureHandler {
	if capacity < 1 {
		capacity = 1
	}
	return &CaptureHandler{
		next: next,
		buf:  &captureBuffer{entries: make([]CapturedEntry, capacity)},
	}
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := CapturedEntry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}

	if len(h.attrs) > 0 || r.NumAttrs() > 0 {
		entry.Attrs = make(map[string]any, len(h.attrs)+r.NumAttrs())
		for _, a := range h.attrs {
			entry.Attrs[a.Key] = a.Value.Resolve().Any()
		}
		r.Attrs(func(a slog.Attr) bool {
			entry.Attrs[a.Key] = a.Value.Resolve().Any()
			return true
		})
	}

	h.buf.store(entry)
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler. Derived handlers keep writing into the
// same ring buffer.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{next: h.next.WithAttrs(attrs), buf: h.buf, attrs: merged}
}

// WithGroup implements slog.Handler. Captured attributes are kept flat;
// grouping only applies to the wrapped handler's output.
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &CaptureHandler{next: h.next.WithGroup(name), buf: h.buf, attrs: h.attrs}
}

// Recent returns up to n captured records, oldest first. n <= 0 returns
// everything retained.
func (h *CaptureHandler) Recent(n int) []CapturedEntry {
	h.buf.mu.RLock()
	defer h.buf.mu.RUnlock()

	count := h.buf.count
	if n > 0 && n < count {
		count = n
	}

	out := make([]CapturedEntry, 0, count)
	start := h.buf.head - count
	if start < 0 {
		start += len(h.buf.entries)
	}
	for i := 0; i < count; i++ {
		out = append(out, h.buf.entries[(start+i)%len(h.buf.entries)])
	}
	return out
}

// Clear drops all retained records
func (h *CaptureHandler) Clear() {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.head = 0
	h.buf.count = 0
}

// SetForward registers a sink invoked for every captured record. Pass nil
// to detach. The sink runs on the logging goroutine and must not log.
func (h *CaptureHandler) SetForward(fn func(CapturedEntry)) {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.forward = fn
}
