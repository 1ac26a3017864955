package outbox

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps messages in process. It participates in
// persistence.MemoryUnitOfWork through Snapshot.
type InMemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	nextID   int64
	now      func() time.Time
}

// NewInMemoryRepository creates a new in-memory outbox repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, now: time.Now}
}

// Snapshot copies the current rows; the returned func restores them.
func (r *InMemoryRepository) Snapshot() func() {
	r.mu.Lock()
	saved := make([]Message, len(r.messages))
	for i, msg := range r.messages {
		saved[i] = *msg
	}
	nextID := r.nextID
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.messages = make([]*Message, len(saved))
		for i := range saved {
			msg := saved[i]
			r.messages[i] = &msg
		}
		r.nextID = nextID
	}
}

func (r *InMemoryRepository) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.save(msg)
	return nil
}

func (r *InMemoryRepository) save(msg *Message) {
	msg.ID = r.nextID
	r.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.now()
	}
	stored := *msg
	r.messages = append(r.messages, &stored)
}

func (r *InMemoryRepository) SaveBatch(_ context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.save(msg)
	}
	return nil
}

func (r *InMemoryRepository) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	return r.collect(limit, func(msg *Message) bool { return true }), nil
}

func (r *InMemoryRepository) GetFailed(_ context.Context, maxRetries, limit int) ([]*Message, error) {
	return r.collect(limit, func(msg *Message) bool {
		return msg.RetryCount > 0 && msg.RetryCount < maxRetries
	}), nil
}

// collect returns copies of due, pending messages that satisfy keep.
func (r *InMemoryRepository) collect(limit int, keep func(*Message) bool) []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var result []*Message
	for _, msg := range r.messages {
		if len(result) >= limit {
			break
		}
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		if keep(msg) {
			copied := *msg
			result = append(result, &copied)
		}
	}
	return result
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64) error {
	r.update(id, func(msg *Message) {
		now := r.now()
		msg.PublishedAt = &now
		msg.DeadLetteredAt = nil
	})
	return nil
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	r.update(id, func(msg *Message) {
		msg.RetryCount++
		msg.LastError = &errMsg
		msg.NextRetryAt = &nextRetryAt
	})
	return nil
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	r.update(id, func(msg *Message) {
		now := r.now()
		msg.DeadLetteredAt = &now
		msg.DeadLetterReason = &reason
	})
	return nil
}

func (r *InMemoryRepository) update(id int64, apply func(*Message)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			apply(msg)
			return
		}
	}
}

func (r *InMemoryRepository) DeleteOld(_ context.Context, olderThanDays int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().AddDate(0, 0, -olderThanDays)
	kept := r.messages[:0]
	var deleted int64
	for _, msg := range r.messages {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return deleted, nil
}

// All returns copies of every stored message in insertion order.
func (r *InMemoryRepository) All() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Message, len(r.messages))
	for i, msg := range r.messages {
		copied := *msg
		out[i] = &copied
	}
	return out
}
