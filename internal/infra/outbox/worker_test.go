package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore replays a fixed sequence of claim results and records the
// state changes the worker applies.
type scriptedStore struct {
	mu     sync.Mutex
	script []claimResult
	next   int

	claimedBy []string
	sent      []string
	failed    []string
}

type claimResult struct {
	doc *EventDocument
	err error
}

func (s *scriptedStore) Claim(_ context.Context, workerID string) (*EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimedBy = append(s.claimedBy, workerID)
	if s.next >= len(s.script) {
		return nil, nil
	}
	res := s.script[s.next]
	s.next++
	return res.doc, res.err
}

func (s *scriptedStore) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, id)
	return nil
}

func (s *scriptedStore) MarkFailed(_ context.Context, id string, _ time.Time, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, id)
	return nil
}

func (s *scriptedStore) snapshot() (claimedBy, sent, failed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.claimedBy...), append([]string(nil), s.sent...), append([]string(nil), s.failed...)
}

type capturingProducer struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	Topic   string
	Key     string
	Payload []byte
	Headers map[string]string
}

func (p *capturingProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMessage{Topic: topic, Key: key, Payload: payload, Headers: headers})
	return nil
}

func (p *capturingProducer) messages() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMessage(nil), p.published...)
}

func eventDoc(id, name string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"rental_id":"r-1"}`),
		OccurredAt: time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "r-1",
	}
}

func TestWorkerRun(t *testing.T) {
	t.Run("requires store and producer", func(t *testing.T) {
		w := &Worker{}
		assert.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
	})

	t.Run("survives a claim error and keeps publishing", func(t *testing.T) {
		store := &scriptedStore{script: []claimResult{
			{err: errors.New("connection reset")},
			{doc: eventDoc("evt-1", "rental.created")},
		}}
		producer := &capturingProducer{}
		w := &Worker{Store: store, Producer: producer, Interval: time.Millisecond}

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.Eventually(t, func() bool {
			_, sent, _ := store.snapshot()
			return len(sent) == 1
		}, 400*time.Millisecond, 5*time.Millisecond, "the pass after the storage error must still publish")
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)

		msgs := producer.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "rental.events.v1", msgs[0].Topic)
	})

	t.Run("marks failed on publish error", func(t *testing.T) {
		store := &scriptedStore{script: []claimResult{{doc: eventDoc("evt-1", "rental.created")}}}
		producer := &capturingProducer{err: errors.New("broker down")}
		w := &Worker{Store: store, Producer: producer}

		require.NoError(t, w.processOnce(context.Background()))
		_, sent, failed := store.snapshot()
		assert.Empty(t, sent)
		assert.Equal(t, []string{"evt-1"}, failed)
	})
}

func TestWorkerIdentity(t *testing.T) {
	t.Run("generated id is stable across claims", func(t *testing.T) {
		w := &Worker{}
		first := w.workerID()
		require.NotEmpty(t, first)
		assert.Equal(t, first, w.workerID())
	})

	t.Run("configured id wins", func(t *testing.T) {
		w := &Worker{ID: "worker-7"}
		assert.Equal(t, "worker-7", w.workerID())
	})

	t.Run("every claim carries the same id", func(t *testing.T) {
		store := &scriptedStore{script: []claimResult{
			{doc: eventDoc("evt-1", "rental.created")},
			{doc: eventDoc("evt-2", "rental.created")},
		}}
		w := &Worker{Store: store, Producer: &capturingProducer{}}

		require.NoError(t, w.processOnce(context.Background()))
		require.NoError(t, w.processOnce(context.Background()))

		claimedBy, _, _ := store.snapshot()
		require.Len(t, claimedBy, 2)
		assert.Equal(t, claimedBy[0], claimedBy[1])
	})
}

func TestWorkerPayload(t *testing.T) {
	w := &Worker{TopicPrefix: "dev."}

	t.Run("topic derives from the event family", func(t *testing.T) {
		assert.Equal(t, "dev.rental.events.v1", w.topicFor("rental.status_changed"))
	})

	t.Run("cloud event envelope", func(t *testing.T) {
		payload, headers, err := w.formatPayload(eventDoc("evt-1", "rental.created"))
		require.NoError(t, err)
		assert.Equal(t, "application/cloudevents+json", headers["content-type"])

		var evt map[string]any
		require.NoError(t, json.Unmarshal(payload, &evt))
		assert.Equal(t, "1.0", evt["specversion"])
		assert.Equal(t, "rental.created.v1", evt["type"])
		data, ok := evt["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "r-1", data["rental_id"])
	})
}
