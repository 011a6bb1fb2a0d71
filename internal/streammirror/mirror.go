// Package streammirror mirrors committed write batches onto Redis
// Streams for consumers outside this process that want a raw change
// feed rather than the in-process Publisher bus. Grounded on Mercury's
// internal/writer.Writer.publishToStream/StreamMessage (per-sport
// stream key, one XAdd per changed row, pipelined per stream), adapted
// from a single "odds.raw.%s" sport-keyed stream to per-bookmaker odds
// streams plus one shared alerts stream.
package streammirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawapay/pawarisk/internal/writequeue"
	"github.com/pawapay/pawarisk/pkg/models"
)

const (
	oddsStreamKeyFormat = "pawarisk.odds.%s"
	alertsStreamKey     = "pawarisk.risk_alerts"
)

// oddsStreamMessage is the wire shape written to each bookmaker's
// stream, the generalisation of Mercury's StreamMessage to a
// canonical-market row instead of a single-outcome odds row.
type oddsStreamMessage struct {
	EventID           int64     `json:"event_id"`
	BookmakerSlug     string    `json:"bookmaker_slug"`
	CanonicalMarketID string    `json:"canonical_market_id"`
	Line              *float64  `json:"line,omitempty"`
	CapturedAt        time.Time `json:"captured_at"`
}

type alertStreamMessage struct {
	EventID           int64     `json:"event_id"`
	BookmakerSlug     string    `json:"bookmaker_slug"`
	CanonicalMarketID string    `json:"canonical_market_id"`
	AlertType         string    `json:"alert_type"`
	Severity          string    `json:"severity"`
	ChangePercent     float64   `json:"change_percent"`
	DetectedAt        time.Time `json:"detected_at"`
}

// Mirror implements writequeue.StreamMirror against a Redis client.
type Mirror struct {
	redis *redis.Client
}

var _ writequeue.StreamMirror = (*Mirror)(nil)

func New(client *redis.Client) *Mirror {
	return &Mirror{redis: client}
}

// MirrorBatch pipelines one XAdd per changed market onto its
// bookmaker's stream, and one XAdd per alert onto the shared alerts
// stream. Grouped into per-stream pipelines the same way
// publishToStream batches by sport key.
func (m *Mirror) MirrorBatch(ctx context.Context, batch models.WriteBatch) error {
	if err := m.mirrorOdds(ctx, batch.Writes, batch.CapturedAt); err != nil {
		return fmt.Errorf("mirror odds stream: %w", err)
	}
	if err := m.mirrorAlerts(ctx, batch.Alerts); err != nil {
		return fmt.Errorf("mirror alerts stream: %w", err)
	}
	return nil
}

func (m *Mirror) mirrorOdds(ctx context.Context, writes []models.MarketCurrentWrite, capturedAt time.Time) error {
	byPlatform := make(map[models.Platform][]models.MarketCurrentWrite)
	for _, w := range writes {
		if !w.Changed {
			continue
		}
		byPlatform[w.BookmakerSlug] = append(byPlatform[w.BookmakerSlug], w)
	}

	for platform, rows := range byPlatform {
		streamKey := fmt.Sprintf(oddsStreamKeyFormat, string(platform))
		pipe := m.redis.Pipeline()
		for _, w := range rows {
			msg := oddsStreamMessage{
				EventID:           w.EventID,
				BookmakerSlug:     string(w.BookmakerSlug),
				CanonicalMarketID: w.CanonicalMarketID,
				Line:              w.Line,
				CapturedAt:        capturedAt,
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal odds stream message: %w", err)
			}
			pipe.XAdd(ctx, &redis.XAddArgs{Stream: streamKey, Values: map[string]interface{}{"data": raw}})
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("xadd pipeline for %s: %w", streamKey, err)
		}
	}
	return nil
}

func (m *Mirror) mirrorAlerts(ctx context.Context, alerts []models.RiskAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	pipe := m.redis.Pipeline()
	for _, a := range alerts {
		msg := alertStreamMessage{
			EventID:           a.EventID,
			BookmakerSlug:     string(a.BookmakerSlug),
			CanonicalMarketID: a.CanonicalMarketID,
			AlertType:         string(a.AlertType),
			Severity:          string(a.Severity),
			ChangePercent:     a.ChangePercent,
			DetectedAt:        a.DetectedAt,
		}
		raw, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal alert stream message: %w", err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{Stream: alertsStreamKey, Values: map[string]interface{}{"data": raw}})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("xadd pipeline for %s: %w", alertsStreamKey, err)
	}
	return nil
}
