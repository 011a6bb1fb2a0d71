package writequeue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pawapay/pawarisk/pkg/models"
)

func TestQueue_EnqueueDropsOldestWhenFull(t *testing.T) {
	q := New(1)
	first, _ := q.Enqueue(models.WriteBatch{ScrapeRunID: "run-1"})
	if !first {
		t.Fatal("expected first enqueue into an empty queue to be accepted")
	}

	accepted, dropped := q.Enqueue(models.WriteBatch{ScrapeRunID: "run-2"})
	if !accepted {
		t.Fatal("expected second enqueue to be accepted after dropping the oldest")
	}
	if !dropped {
		t.Error("expected the full queue to report a drop")
	}

	got := <-q.C()
	if got.ScrapeRunID != "run-2" {
		t.Errorf("expected the newer batch to survive, got %s", got.ScrapeRunID)
	}
}

type stubStore struct {
	mu      sync.Mutex
	calls   int
	failFor int
}

func (s *stubStore) CommitBatch(ctx context.Context, batch models.WriteBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failFor {
		return errors.New("transient db error")
	}
	return nil
}

type stubPublisher struct {
	mu        sync.Mutex
	published []models.ProgressEnvelope
}

func (p *stubPublisher) Publish(topic string, envelope models.ProgressEnvelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, envelope)
}

func TestHandler_CommitsAndPublishesAlertSummary(t *testing.T) {
	q := New(4)
	store := &stubStore{}
	pub := &stubPublisher{}
	h := NewHandler(q, store, pub)

	q.Enqueue(models.WriteBatch{
		ScrapeRunID: "run-1",
		Alerts:      []models.RiskAlert{{EventID: 1, Severity: models.SeverityCritical}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	go h.Run(ctx)

	deadline := time.After(400 * time.Millisecond)
	for {
		pub.mu.Lock()
		n := len(pub.published)
		pub.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected one published risk_alerts envelope, got %d", n)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHandler_PublishesOddsUpdatesPerPlatform(t *testing.T) {
	q := New(4)
	store := &stubStore{}
	pub := &stubPublisher{}
	h := NewHandler(q, store, pub)

	q.Enqueue(models.WriteBatch{
		ScrapeRunID: "run-odds",
		Writes: []models.MarketCurrentWrite{
			{EventID: 1, BookmakerSlug: models.PlatformBetPawa, Changed: true},
			{EventID: 1, BookmakerSlug: models.PlatformBetPawa, Changed: true},
			{EventID: 2, BookmakerSlug: models.PlatformBetPawa, Changed: false},
			{EventID: 3, BookmakerSlug: models.PlatformSportyBet, Changed: true},
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	go h.Run(ctx)

	deadline := time.After(400 * time.Millisecond)
	for {
		pub.mu.Lock()
		n := len(pub.published)
		pub.mu.Unlock()
		if n == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected two published odds_updates envelopes (one per platform), got %d", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	for _, env := range pub.published {
		data, ok := env.Data.(models.OddsUpdateData)
		if !ok {
			t.Fatalf("expected OddsUpdateData payload, got %T", env.Data)
		}
		if data.Source == models.PlatformBetPawa && len(data.EventIDs) != 1 {
			t.Errorf("expected betpawa envelope to dedupe to one event id, got %v", data.EventIDs)
		}
	}
}

type stubMirror struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *stubMirror) MirrorBatch(ctx context.Context, batch models.WriteBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func TestHandler_MirrorFailureInvokesMirrorErrorCallback(t *testing.T) {
	q := New(4)
	store := &stubStore{}
	mirror := &stubMirror{err: errors.New("redis down")}
	h := NewHandler(q, store, nil)

	var mirrorErrCount int
	var mu sync.Mutex
	done := make(chan struct{}, 1)
	h.WithMirror(mirror, func(batch models.WriteBatch, err error) {
		mu.Lock()
		mirrorErrCount++
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})

	q.Enqueue(models.WriteBatch{ScrapeRunID: "run-mirror"})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	go h.Run(ctx)

	select {
	case <-done:
	case <-time.After(400 * time.Millisecond):
		t.Fatal("expected onMirrorError to fire")
	}

	mu.Lock()
	defer mu.Unlock()
	if mirrorErrCount != 1 {
		t.Errorf("expected exactly one mirror error callback, got %d", mirrorErrCount)
	}
}

func TestHandler_RetriesThenDropsOnPersistentFailure(t *testing.T) {
	q := New(4)
	store := &stubStore{failFor: maxCommitRetries}
	h := NewHandler(q, store, nil)

	var dropped models.WriteBatch
	var dropErr error
	done := make(chan struct{})
	h.OnDrop(func(batch models.WriteBatch, err error) {
		dropped = batch
		dropErr = err
		close(done)
	})

	q.Enqueue(models.WriteBatch{ScrapeRunID: "run-fail"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go h.Run(ctx)

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("expected onDrop to fire after exhausting retries")
	}

	if dropped.ScrapeRunID != "run-fail" {
		t.Errorf("expected dropped batch to be the failing one, got %+v", dropped)
	}
	if dropErr == nil {
		t.Error("expected a non-nil error reported to onDrop")
	}
}
