package memory

import (
	"context"
	"sync"

	"autorent/internal/app/outbox"
)

// Outbox buffers event records in memory. Dev mode only; nothing drains it
// unless a worker is attached.
type Outbox struct {
	mu      sync.Mutex
	records []outbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

// Records returns a snapshot of everything recorded so far.
func (o *Outbox) Records() []outbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]outbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}
