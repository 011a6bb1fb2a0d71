package contracts

import "github.com/pawapay/pawarisk/pkg/models"

// Topic names for the Progress Broadcaster (§4.8).
const (
	TopicScrapeProgress = "scrape_progress"
	TopicOddsUpdates    = "odds_updates"
	TopicRiskAlerts     = "risk_alerts"
)

// Publisher is the narrow seam the coordinator and writequeue use to
// push a ProgressEnvelope onto a topic without needing the
// broadcaster's subscriber-management surface.
type Publisher interface {
	Publish(topic string, envelope models.ProgressEnvelope)
}

// WriteEnqueuer is the non-blocking seam the coordinator uses to hand a
// finished batch to the write queue without waiting on the DB.
type WriteEnqueuer interface {
	Enqueue(batch models.WriteBatch) (accepted bool, dropped bool)
}
