package config

import (
	"context"
	"sync"
	"time"

	"github.com/pawapay/pawarisk/pkg/models"
)

// Settings is the set of operator-tunable knobs read from the
// settings table and refreshed periodically, rather than baked into
// the environment at boot (§5, §7).
type Settings struct {
	ScrapeIntervalMinutes int
	EnabledPlatforms      []models.Platform

	MaxConcurrentBetPawa   int
	MaxConcurrentSportyBet int
	MaxConcurrentBet9ja    int
	Bet9jaDelayMs          int

	BatchSize int

	RetentionDays int

	AlertThresholdT1 float64 // warning band floor, percent
	AlertThresholdT2 float64 // elevated band floor
	AlertThresholdT3 float64 // critical band floor

	ImminentWindowMinutes int

	StalenessThresholdMinutes int

	EventDeadlineSeconds int
}

// Defaults mirrors the seed row a fresh deployment starts from.
func Defaults() Settings {
	return Settings{
		ScrapeIntervalMinutes:     3,
		EnabledPlatforms:          []models.Platform{models.PlatformBetPawa, models.PlatformSportyBet, models.PlatformBet9ja},
		MaxConcurrentBetPawa:      4,
		MaxConcurrentSportyBet:    4,
		MaxConcurrentBet9ja:       2,
		Bet9jaDelayMs:             250,
		BatchSize:                 25,
		RetentionDays:             30,
		AlertThresholdT1:          5.0,
		AlertThresholdT2:          15.0,
		AlertThresholdT3:          30.0,
		ImminentWindowMinutes:     120,
		StalenessThresholdMinutes: 10,
		EventDeadlineSeconds:      30,
	}
}

// SettingsStore is the narrow persistence seam SettingsWatcher reads
// from; internal/store.Postgres implements it against the settings table.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (Settings, error)
}

// SettingsWatcher holds the live Settings value and refreshes it on a
// timer, so a change to the settings table takes effect without a
// restart. Reads are lock-protected rather than atomic.Value because
// Settings is a multi-field struct copied wholesale on each refresh.
type SettingsWatcher struct {
	mu       sync.RWMutex
	current  Settings
	store    SettingsStore
	interval time.Duration
}

// NewSettingsWatcher seeds with Defaults until the first successful load.
func NewSettingsWatcher(store SettingsStore, refreshInterval time.Duration) *SettingsWatcher {
	return &SettingsWatcher{
		current:  Defaults(),
		store:    store,
		interval: refreshInterval,
	}
}

// Current returns the most recently loaded Settings snapshot.
func (w *SettingsWatcher) Current() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Refresh loads once, synchronously, from the store. Call at startup
// before Run so components see real settings from the first cycle.
func (w *SettingsWatcher) Refresh(ctx context.Context) error {
	s, err := w.store.LoadSettings(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.current = s
	w.mu.Unlock()
	return nil
}

// Run refreshes on a ticker until ctx is cancelled. Refresh errors are
// swallowed here; the watcher keeps serving the last good value rather
// than blocking the caller on a transient DB hiccup.
func (w *SettingsWatcher) Run(ctx context.Context, onErr func(error)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}
}
