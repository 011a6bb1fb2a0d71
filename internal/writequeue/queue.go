// Package writequeue decouples the coordinator's batch loop from
// Postgres latency: batches are handed to a bounded channel and
// committed by a separate consumer goroutine, the channel-based
// evolution of Mercury's writer.Writer buffer-and-flush shape (§4.7).
package writequeue

import (
	"context"
	"time"

	"github.com/pawapay/pawarisk/pkg/contracts"
	"github.com/pawapay/pawarisk/pkg/models"
)

const (
	defaultCapacity  = 64
	maxCommitRetries = 3
	retryBaseDelay   = 500 * time.Millisecond
)

// Queue is the bounded, non-blocking producer side. Unlike Writer's
// buffer, which blocks the caller under a mutex until the batch size is
// hit, Enqueue never blocks: a full queue drops the oldest pending
// batch to make room, since stale odds are worse to persist late than
// to lose (§4.7's "never blocks the producer" invariant).
type Queue struct {
	ch chan models.WriteBatch
}

var _ contracts.WriteEnqueuer = (*Queue)(nil)

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{ch: make(chan models.WriteBatch, capacity)}
}

// Enqueue attempts a non-blocking send. If the channel is full it drops
// the oldest queued batch and retries once; accepted is false only if
// another producer refilled the freed slot between the drop and the
// retry (never with the coordinator as the single producer).
func (q *Queue) Enqueue(batch models.WriteBatch) (accepted bool, dropped bool) {
	select {
	case q.ch <- batch:
		return true, false
	default:
	}

	select {
	case <-q.ch:
		dropped = true
	default:
	}

	select {
	case q.ch <- batch:
		return true, dropped
	default:
		return false, dropped
	}
}

// C exposes the receive side for the Handler's consume loop.
func (q *Queue) C() <-chan models.WriteBatch {
	return q.ch
}

// StreamMirror mirrors a committed batch onto an external transport
// (Redis Streams) for downstream consumers that want raw change events
// rather than the in-process Publisher bus. Best-effort: a mirror
// failure never fails the commit it followed.
type StreamMirror interface {
	MirrorBatch(ctx context.Context, batch models.WriteBatch) error
}

// Handler drains a Queue, committing each batch in its own transaction
// with retry-then-drop on transient store errors, and publishing a
// risk_alerts summary after a successful commit.
type Handler struct {
	queue     *Queue
	store     contracts.WriteBatchWriter
	publisher contracts.Publisher
	mirror    StreamMirror

	onDrop        func(batch models.WriteBatch, err error)
	onMirrorError func(batch models.WriteBatch, err error)
}

func NewHandler(queue *Queue, store contracts.WriteBatchWriter, publisher contracts.Publisher) *Handler {
	return &Handler{queue: queue, store: store, publisher: publisher}
}

// OnDrop registers a callback invoked when a batch is permanently
// dropped after exhausting retries; cmd/pawarisk wires this to log the
// dropped batch's scrape_run_id and error.
func (h *Handler) OnDrop(fn func(batch models.WriteBatch, err error)) {
	h.onDrop = fn
}

// WithMirror attaches a StreamMirror invoked after every successful
// commit. Returns the Handler for fluent construction at wiring time.
func (h *Handler) WithMirror(mirror StreamMirror, onErr func(batch models.WriteBatch, err error)) *Handler {
	h.mirror = mirror
	h.onMirrorError = onErr
	return h
}

// Run consumes batches until ctx is cancelled or the queue is closed.
func (h *Handler) Run(ctx context.Context) {
	for {
		select {
		case batch, ok := <-h.queue.C():
			if !ok {
				return
			}
			h.commitWithRetry(ctx, batch)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) commitWithRetry(ctx context.Context, batch models.WriteBatch) {
	var lastErr error
	for attempt := 1; attempt <= maxCommitRetries; attempt++ {
		lastErr = h.store.CommitBatch(ctx, batch)
		if lastErr == nil {
			h.publishOddsUpdates(batch)
			h.publishAlerts(batch)
			h.mirrorBatch(ctx, batch)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if attempt < maxCommitRetries {
			select {
			case <-time.After(retryBaseDelay * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return
			}
		}
	}

	if h.onDrop != nil {
		h.onDrop(batch, lastErr)
	}
}

// publishOddsUpdates emits one odds_updates envelope per bookmaker
// whose batch contains at least one changed market, per spec's worked
// example ({event_ids:[42], source:"betpawa"}).
func (h *Handler) publishOddsUpdates(batch models.WriteBatch) {
	if h.publisher == nil {
		return
	}

	byPlatform := make(map[models.Platform][]int64)
	seen := make(map[models.Platform]map[int64]bool)
	for _, w := range batch.Writes {
		if !w.Changed {
			continue
		}
		if seen[w.BookmakerSlug] == nil {
			seen[w.BookmakerSlug] = make(map[int64]bool)
		}
		if seen[w.BookmakerSlug][w.EventID] {
			continue
		}
		seen[w.BookmakerSlug][w.EventID] = true
		byPlatform[w.BookmakerSlug] = append(byPlatform[w.BookmakerSlug], w.EventID)
	}

	for platform, eventIDs := range byPlatform {
		h.publisher.Publish(contracts.TopicOddsUpdates, models.ProgressEnvelope{
			Type:      "odds_updates",
			Timestamp: time.Now().UTC(),
			Data:      models.OddsUpdateData{EventIDs: eventIDs, Source: platform},
		})
	}
}

func (h *Handler) mirrorBatch(ctx context.Context, batch models.WriteBatch) {
	if h.mirror == nil {
		return
	}
	if err := h.mirror.MirrorBatch(ctx, batch); err != nil && h.onMirrorError != nil {
		h.onMirrorError(batch, err)
	}
}

func (h *Handler) publishAlerts(batch models.WriteBatch) {
	if h.publisher == nil || len(batch.Alerts) == 0 {
		return
	}

	eventIDs := make([]int64, 0, len(batch.Alerts))
	severities := make([]string, 0, len(batch.Alerts))
	seen := make(map[int64]bool)
	for _, a := range batch.Alerts {
		if !seen[a.EventID] {
			seen[a.EventID] = true
			eventIDs = append(eventIDs, a.EventID)
		}
		severities = append(severities, string(a.Severity))
	}

	h.publisher.Publish(contracts.TopicRiskAlerts, models.ProgressEnvelope{
		Type:      "risk_alerts",
		Timestamp: time.Now().UTC(),
		Data: models.RiskAlertSummary{
			AlertCount: len(batch.Alerts),
			EventIDs:   eventIDs,
			Severities: severities,
		},
	})
}
