package contracts

import (
	"context"

	"github.com/pawapay/pawarisk/pkg/models"
)

// Store is the durable persistence seam the write handler, warmup and
// watchdog depend on. internal/store.Postgres is the only
// implementation; kept narrow so each caller only sees what it needs.
type Store interface {
	WriteBatchWriter
	WarmupReader
	RunStore
}

// WriteBatchWriter commits one coordinator batch in a single transaction.
type WriteBatchWriter interface {
	CommitBatch(ctx context.Context, batch models.WriteBatch) error
}

// WarmupReader supplies the Cache Warmup sequence (§4.10).
type WarmupReader interface {
	LoadActiveMappings(ctx context.Context) ([]models.MarketMapping, error)
	LoadRecentCurrent(ctx context.Context, kickoffNotBefore int64) ([]models.CachedSnapshot, error)
}

// RunStore persists the scrape run lifecycle and its activity log, the
// watchdog's read/write surface (§4.11).
type RunStore interface {
	CreateRun(ctx context.Context, run models.ScrapeRun) error
	UpdateRunStatus(ctx context.Context, runID string, status models.RunStatus) error
	LogPhase(ctx context.Context, entry models.ScrapePhaseLog) error
	LogError(ctx context.Context, entry models.ScrapeError) error
	FailAllRunning(ctx context.Context) (int, error)
	FindStaleRunning(ctx context.Context, staleSince int64) ([]models.ScrapeRun, error)
	LastActivity(ctx context.Context, runID string) (int64, error)
}
