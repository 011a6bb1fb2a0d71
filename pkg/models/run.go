package models

import "time"

// RunStatus is the state machine of a scrape run (§4.9).
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// ScrapePhase is a coordinator phase, published on the scrape_progress topic.
type ScrapePhase string

const (
	PhaseCycleStart       ScrapePhase = "CYCLE_START"
	PhaseDiscoveryComplete ScrapePhase = "DISCOVERY_COMPLETE"
	PhaseBatchStart       ScrapePhase = "BATCH_START"
	PhaseEventScraping    ScrapePhase = "EVENT_SCRAPING"
	PhaseEventScraped     ScrapePhase = "EVENT_SCRAPED"
	PhaseBatchComplete    ScrapePhase = "BATCH_COMPLETE"
	PhaseCycleComplete    ScrapePhase = "CYCLE_COMPLETE"
	PhaseCycleFailed      ScrapePhase = "CYCLE_FAILED"
)

// ScrapeRun is the lifecycle row for one coordinator cycle.
type ScrapeRun struct {
	ID              string
	Status          RunStatus
	StartedAt       time.Time
	CompletedAt     *time.Time
	CurrentPhase    *ScrapePhase
	CurrentPlatform *Platform
}

// ScrapePhaseLog is an activity heartbeat row; the watchdog's input.
type ScrapePhaseLog struct {
	ScrapeRunID string
	Phase       ScrapePhase
	Platform    *Platform
	EnteredAt   time.Time
}

// ScrapeErrorType classifies a ScrapeError row.
type ScrapeErrorType string

const (
	ErrorTypeNetwork   ScrapeErrorType = "network"
	ErrorTypeAPI       ScrapeErrorType = "api"
	ErrorTypeParse     ScrapeErrorType = "parse"
	ErrorTypeMapping   ScrapeErrorType = "mapping"
	ErrorTypeStore     ScrapeErrorType = "store"
	ErrorTypeStale     ScrapeErrorType = "stale"
	ErrorTypeCancelled ScrapeErrorType = "cancelled"
)

// ScrapeError is one per-platform-or-batch failure record for a run.
type ScrapeError struct {
	ScrapeRunID  string
	ErrorType    ScrapeErrorType
	ErrorMessage string
	Platform     *Platform
	OccurredAt   time.Time
}

// ProgressEnvelope is the typed pub/sub message published on all topics.
type ProgressEnvelope struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ScrapeProgressData is the payload for scrape_progress messages.
type ScrapeProgressData struct {
	ScrapeRunID string      `json:"scrape_run_id"`
	Phase       ScrapePhase `json:"phase"`
	Platform    *Platform   `json:"platform,omitempty"`
	EventID     *int64      `json:"event_id,omitempty"`
	Success     *bool       `json:"success,omitempty"`
	DurationMs  *int64      `json:"duration_ms,omitempty"`
	ErrorKind   *string     `json:"error_kind,omitempty"`
	BatchIndex  *int        `json:"batch_index,omitempty"`
	BatchTotal  *int        `json:"batch_total,omitempty"`
}

// OddsUpdateData is the payload for odds_updates messages.
type OddsUpdateData struct {
	EventIDs []int64  `json:"event_ids"`
	Source   Platform `json:"source"`
}

// RiskAlertSummary is the payload for risk_alerts messages.
type RiskAlertSummary struct {
	AlertCount int      `json:"alert_count"`
	EventIDs   []int64  `json:"event_ids"`
	Severities []string `json:"severities"`
}
