package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pawapay/pawarisk/internal/config"
	"github.com/pawapay/pawarisk/pkg/models"
)

// outcomesJSON/handicapJSON are the wire shapes stored in the
// current/history tables' jsonb columns; kept separate from
// pkg/models so a storage-format change never ripples into the
// pipeline's in-memory DTOs.
type outcomeJSON struct {
	Name     string  `json:"name"`
	Odds     float64 `json:"odds"`
	IsActive bool    `json:"is_active"`
}

type handicapJSON struct {
	Type string  `json:"type"`
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

func encodeOutcomes(outcomes []models.CachedOutcome) ([]byte, error) {
	out := make([]outcomeJSON, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeJSON{Name: o.Name, Odds: o.Odds, IsActive: o.IsActive}
	}
	return json.Marshal(out)
}

func decodeOutcomes(raw []byte) ([]models.CachedOutcome, error) {
	var out []outcomeJSON
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	outcomes := make([]models.CachedOutcome, len(out))
	for i, o := range out {
		outcomes[i] = models.CachedOutcome{Name: o.Name, Odds: o.Odds, IsActive: o.IsActive}
	}
	return outcomes, nil
}

func encodeHandicap(h *models.Handicap) ([]byte, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(handicapJSON{Type: h.Type, Home: h.Home, Away: h.Away})
}

func decodeHandicap(raw []byte) (*models.Handicap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var h handicapJSON
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	return &models.Handicap{Type: h.Type, Home: h.Home, Away: h.Away}, nil
}

func lineOrZero(l *float64) float64 {
	if l == nil {
		return 0
	}
	return *l
}

// CommitBatch persists one coordinator WriteBatch in a single
// transaction: upsert events, upsert current rows (bumping
// last_updated_at only for changed markets), append history rows for
// the changed subset, and insert alerts. Modeled on Mercury's
// WriteWithEvents: events first, then the odds UPSERT/INSERT pair,
// commit, with the batch-array UNNEST technique from updatePreviousOdds/
// insertNewOdds generalized to current's single UPSERT statement.
func (p *Postgres) CommitBatch(ctx context.Context, batch models.WriteBatch) error {
	if len(batch.Events) == 0 && len(batch.Writes) == 0 && len(batch.Alerts) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(batch.Events) > 0 {
		if err := upsertEvents(ctx, tx, batch.Events); err != nil {
			return fmt.Errorf("upsert events: %w", err)
		}
	}

	if len(batch.Writes) > 0 {
		if err := upsertCurrent(ctx, tx, batch.Writes, batch.CapturedAt); err != nil {
			return fmt.Errorf("upsert current: %w", err)
		}
		if err := insertHistory(ctx, tx, batch.Writes, batch.CapturedAt); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	if len(batch.Alerts) > 0 {
		if err := insertAlerts(ctx, tx, batch.Alerts); err != nil {
			return fmt.Errorf("insert alerts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func upsertEvents(ctx context.Context, tx *sql.Tx, events []models.Event) error {
	query := `
		INSERT INTO events (event_id, sportradar_id, home_team, away_team, kickoff_time, tournament_id, event_status)
		SELECT * FROM UNNEST(
			$1::bigint[], $2::text[], $3::text[], $4::text[], $5::timestamptz[], $6::bigint[], $7::text[]
		)
		ON CONFLICT (event_id) DO UPDATE SET
			sportradar_id = NULLIF(EXCLUDED.sportradar_id, ''),
			home_team     = EXCLUDED.home_team,
			away_team     = EXCLUDED.away_team,
			kickoff_time  = EXCLUDED.kickoff_time,
			event_status  = EXCLUDED.event_status
	`

	ids := make([]int64, len(events))
	srids := make([]string, len(events))
	home := make([]string, len(events))
	away := make([]string, len(events))
	kickoffs := make([]time.Time, len(events))
	tournaments := make([]int64, len(events))
	statuses := make([]string, len(events))

	for i, e := range events {
		ids[i] = e.ID
		srids[i] = e.SportradarID
		home[i] = e.HomeTeam
		away[i] = e.AwayTeam
		kickoffs[i] = e.KickoffTime
		tournaments[i] = e.TournamentID
		statuses[i] = string(e.Status)
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(ids), pq.Array(srids), pq.Array(home), pq.Array(away),
		pq.Array(kickoffs), pq.Array(tournaments), pq.Array(statuses),
	)
	return err
}

// upsertCurrent conflicts on (event_id, bookmaker_slug, canonical_market_id,
// COALESCE(line, 0)) per spec: last_confirmed_at always bumps,
// last_updated_at only bumps when the row's own `changed` flag was true.
func upsertCurrent(ctx context.Context, tx *sql.Tx, writes []models.MarketCurrentWrite, capturedAt time.Time) error {
	query := `
		INSERT INTO current (
			event_id, bookmaker_slug, canonical_market_id, line, handicap,
			outcomes, groups, unavailable_at, last_updated_at, last_confirmed_at
		)
		SELECT * FROM UNNEST(
			$1::bigint[], $2::text[], $3::text[], $4::double precision[], $5::text[],
			$6::text[], $7::text[], $8::timestamptz[], $9::timestamptz[], $10::timestamptz[]
		)
		ON CONFLICT (event_id, bookmaker_slug, canonical_market_id, COALESCE(line, 0))
		DO UPDATE SET
			outcomes          = EXCLUDED.outcomes,
			handicap          = EXCLUDED.handicap,
			groups            = EXCLUDED.groups,
			unavailable_at    = EXCLUDED.unavailable_at,
			last_confirmed_at = EXCLUDED.last_confirmed_at,
			last_updated_at   = CASE WHEN EXCLUDED.last_updated_at IS NOT NULL
			                         THEN EXCLUDED.last_updated_at
			                         ELSE current.last_updated_at END
	`

	n := len(writes)
	eventIDs := make([]int64, n)
	bookmakers := make([]string, n)
	marketIDs := make([]string, n)
	lines := make([]float64, n)
	handicaps := make([]*string, n)
	outcomesJSON := make([]string, n)
	groups := make([]string, n)
	unavailableAts := make([]*time.Time, n)
	lastUpdatedAts := make([]*time.Time, n)
	lastConfirmedAts := make([]time.Time, n)

	for i, w := range writes {
		eventIDs[i] = w.EventID
		bookmakers[i] = string(w.BookmakerSlug)
		marketIDs[i] = w.CanonicalMarketID
		lines[i] = lineOrZero(w.Line)

		h, err := encodeHandicap(w.Handicap)
		if err != nil {
			return fmt.Errorf("encode handicap: %w", err)
		}
		if h != nil {
			s := string(h)
			handicaps[i] = &s
		}

		o, err := encodeOutcomes(w.Outcomes)
		if err != nil {
			return fmt.Errorf("encode outcomes: %w", err)
		}
		outcomesJSON[i] = string(o)

		g, err := json.Marshal(w.Groups)
		if err != nil {
			return fmt.Errorf("encode groups: %w", err)
		}
		groups[i] = string(g)

		unavailableAts[i] = w.UnavailableAt
		lastConfirmedAts[i] = capturedAt
		if w.Changed {
			t := capturedAt
			lastUpdatedAts[i] = &t
		}
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(bookmakers), pq.Array(marketIDs), pq.Array(lines), pq.Array(handicaps),
		pq.Array(outcomesJSON), pq.Array(groups), pq.Array(unavailableAts), pq.Array(lastUpdatedAts), pq.Array(lastConfirmedAts),
	)
	return err
}

// insertHistory appends one row per changed market; unchanged markets
// only bump current.last_confirmed_at and leave no history trace.
func insertHistory(ctx context.Context, tx *sql.Tx, writes []models.MarketCurrentWrite, capturedAt time.Time) error {
	var changed []models.MarketCurrentWrite
	for _, w := range writes {
		if w.Changed {
			changed = append(changed, w)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	query := `
		INSERT INTO history (event_id, bookmaker_slug, canonical_market_id, line, handicap, outcomes, captured_at)
		SELECT * FROM UNNEST(
			$1::bigint[], $2::text[], $3::text[], $4::double precision[], $5::text[], $6::text[], $7::timestamptz[]
		)
	`

	n := len(changed)
	eventIDs := make([]int64, n)
	bookmakers := make([]string, n)
	marketIDs := make([]string, n)
	lines := make([]float64, n)
	handicaps := make([]*string, n)
	outcomesJSON := make([]string, n)
	capturedAts := make([]time.Time, n)

	for i, w := range changed {
		eventIDs[i] = w.EventID
		bookmakers[i] = string(w.BookmakerSlug)
		marketIDs[i] = w.CanonicalMarketID
		lines[i] = lineOrZero(w.Line)

		h, err := encodeHandicap(w.Handicap)
		if err != nil {
			return fmt.Errorf("encode handicap: %w", err)
		}
		if h != nil {
			s := string(h)
			handicaps[i] = &s
		}

		o, err := encodeOutcomes(w.Outcomes)
		if err != nil {
			return fmt.Errorf("encode outcomes: %w", err)
		}
		outcomesJSON[i] = string(o)
		capturedAts[i] = capturedAt
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(bookmakers), pq.Array(marketIDs), pq.Array(lines), pq.Array(handicaps),
		pq.Array(outcomesJSON), pq.Array(capturedAts),
	)
	return err
}

func insertAlerts(ctx context.Context, tx *sql.Tx, alerts []models.RiskAlert) error {
	query := `
		INSERT INTO risk_alerts (
			event_id, bookmaker_slug, canonical_market_id, line, outcome_name,
			alert_type, severity, change_percent, old_value, new_value,
			competitor_direction, detected_at, status
		)
		SELECT * FROM UNNEST(
			$1::bigint[], $2::text[], $3::text[], $4::double precision[], $5::text[],
			$6::text[], $7::text[], $8::double precision[], $9::double precision[], $10::double precision[],
			$11::text[], $12::timestamptz[], $13::text[]
		)
	`

	n := len(alerts)
	eventIDs := make([]int64, n)
	bookmakers := make([]string, n)
	marketIDs := make([]string, n)
	lines := make([]*float64, n)
	outcomeNames := make([]string, n)
	alertTypes := make([]string, n)
	severities := make([]string, n)
	changePercents := make([]float64, n)
	oldValues := make([]float64, n)
	newValues := make([]float64, n)
	competitorDirections := make([]*string, n)
	detectedAts := make([]time.Time, n)
	statuses := make([]string, n)

	for i, a := range alerts {
		eventIDs[i] = a.EventID
		bookmakers[i] = string(a.BookmakerSlug)
		marketIDs[i] = a.CanonicalMarketID
		lines[i] = a.Line
		outcomeNames[i] = a.OutcomeName
		alertTypes[i] = string(a.AlertType)
		severities[i] = string(a.Severity)
		changePercents[i] = a.ChangePercent
		oldValues[i] = a.OldValue
		newValues[i] = a.NewValue
		if a.CompetitorDirection != nil {
			d := string(*a.CompetitorDirection)
			competitorDirections[i] = &d
		}
		detectedAts[i] = a.DetectedAt
		statuses[i] = string(a.Status)
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(bookmakers), pq.Array(marketIDs), pq.Array(lines), pq.Array(outcomeNames),
		pq.Array(alertTypes), pq.Array(severities), pq.Array(changePercents), pq.Array(oldValues), pq.Array(newValues),
		pq.Array(competitorDirections), pq.Array(detectedAts), pq.Array(statuses),
	)
	return err
}

// LoadRecentCurrent feeds Cache Warmup: one CachedSnapshot per
// (event_id, bookmaker_slug) restricted to events kicking off no
// earlier than kickoffNotBefore, grouping current's market-granular
// rows back into the cache's per-snapshot shape.
func (p *Postgres) LoadRecentCurrent(ctx context.Context, kickoffNotBefore int64) ([]models.CachedSnapshot, error) {
	query := `
		SELECT c.event_id, c.bookmaker_slug, c.canonical_market_id, c.line, c.handicap,
		       c.outcomes, c.groups, c.unavailable_at, c.last_confirmed_at
		FROM current c
		JOIN events e ON e.event_id = c.event_id
		WHERE e.kickoff_time >= to_timestamp($1)
	`

	rows, err := p.db.QueryContext(ctx, query, kickoffNotBefore)
	if err != nil {
		return nil, fmt.Errorf("query current: %w", err)
	}
	defer rows.Close()

	bySnapshot := make(map[snapshotKey]*models.CachedSnapshot)
	for rows.Next() {
		var eventID int64
		var bookmaker string
		var marketID string
		var line sql.NullFloat64
		var handicapRaw, outcomesRaw, groupsRaw []byte
		var unavailableAt sql.NullTime
		var lastConfirmedAt time.Time

		if err := rows.Scan(&eventID, &bookmaker, &marketID, &line, &handicapRaw,
			&outcomesRaw, &groupsRaw, &unavailableAt, &lastConfirmedAt); err != nil {
			return nil, fmt.Errorf("scan current row: %w", err)
		}

		var groups []string
		if len(groupsRaw) > 0 {
			if err := json.Unmarshal(groupsRaw, &groups); err != nil {
				return nil, fmt.Errorf("decode groups: %w", err)
			}
		}

		outcomes, err := decodeOutcomes(outcomesRaw)
		if err != nil {
			return nil, fmt.Errorf("decode outcomes: %w", err)
		}
		handicap, err := decodeHandicap(handicapRaw)
		if err != nil {
			return nil, fmt.Errorf("decode handicap: %w", err)
		}

		key := snapshotKey{eventID: eventID, bookmaker: bookmaker}
		snap, ok := bySnapshot[key]
		if !ok {
			snap = &models.CachedSnapshot{EventID: eventID, BookmakerSlug: models.Platform(bookmaker), LastConfirmedAt: lastConfirmedAt}
			bySnapshot[key] = snap
		}
		if lastConfirmedAt.After(snap.LastConfirmedAt) {
			snap.LastConfirmedAt = lastConfirmedAt
		}

		market := models.CachedMarket{CanonicalID: marketID, Outcomes: outcomes, Handicap: handicap, MarketGroups: groups}
		if line.Valid {
			l := line.Float64
			market.Line = &l
		}
		if unavailableAt.Valid {
			t := unavailableAt.Time
			market.UnavailableAt = &t
		}
		snap.Markets = append(snap.Markets, market)
	}

	snapshots := make([]models.CachedSnapshot, 0, len(bySnapshot))
	for _, s := range bySnapshot {
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

type snapshotKey struct {
	eventID   int64
	bookmaker string
}

// LoadActiveMappings serves both contracts.MappingStore (Refresh) and
// contracts.WarmupReader: the merged catalogue's db-sourced half.
func (p *Postgres) LoadActiveMappings(ctx context.Context) ([]models.MarketMapping, error) {
	query := `
		SELECT canonical_id, name, handler, betpawa_id, sportybet_id, bet9ja_key,
		       source, is_active, priority, created_at, updated_at
		FROM user_market_mappings
		WHERE is_active = true
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.MarketMapping
	for rows.Next() {
		var m models.MarketMapping
		var handler string
		if err := rows.Scan(&m.CanonicalID, &m.Name, &handler, &m.BetPawaID, &m.SportyBetID, &m.Bet9jaKey,
			&m.Source, &m.IsActive, &m.Priority, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan mapping row: %w", err)
		}
		m.Handler = models.HandlerKind(handler)

		outcomes, err := p.loadOutcomeMappings(ctx, m.CanonicalID)
		if err != nil {
			return nil, fmt.Errorf("load outcomes for %s: %w", m.CanonicalID, err)
		}
		m.Outcomes = outcomes

		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (p *Postgres) loadOutcomeMappings(ctx context.Context, canonicalID string) ([]models.OutcomeMapping, error) {
	query := `
		SELECT canonical_outcome_id, position, betpawa_name, sportybet_desc, bet9ja_suffix
		FROM user_market_mapping_outcomes
		WHERE canonical_id = $1
		ORDER BY position ASC
	`
	rows, err := p.db.QueryContext(ctx, query, canonicalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []models.OutcomeMapping
	for rows.Next() {
		var o models.OutcomeMapping
		if err := rows.Scan(&o.CanonicalOutcomeID, &o.Position, &o.BetPawaName, &o.SportyBetDesc, &o.Bet9jaSuffix); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// RecordUnmappedMarket upserts the first-seen/occurrence-count
// accumulator keyed by (platform, raw_key).
func (p *Postgres) RecordUnmappedMarket(ctx context.Context, entry models.UnmappedMarketLogEntry) error {
	query := `
		INSERT INTO unmapped_market_log (platform, raw_key, first_seen_at, occurrence_count, status, example_raw_outcome)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (platform, raw_key) DO UPDATE SET
			occurrence_count = unmapped_market_log.occurrence_count + 1,
			example_raw_outcome = EXCLUDED.example_raw_outcome
	`
	_, err := p.db.ExecContext(ctx, query, string(entry.Platform), entry.RawKey, entry.FirstSeenAt,
		entry.OccurrenceCount, string(entry.Status), entry.ExampleRawOutcome)
	return err
}

// CreateRun, UpdateRunStatus, LogPhase, LogError, FailAllRunning,
// FindStaleRunning and LastActivity implement contracts.RunStore.

func (p *Postgres) CreateRun(ctx context.Context, run models.ScrapeRun) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO scrape_runs (run_id, status, started_at) VALUES ($1, $2, $3)`,
		run.ID, string(run.Status), run.StartedAt)
	return err
}

// UpdateRunStatus is qualified on status = 'running' when transitioning
// to failed, so the watchdog can never clobber a run that completed
// between its stale-query and this UPDATE.
func (p *Postgres) UpdateRunStatus(ctx context.Context, runID string, status models.RunStatus) error {
	var err error
	if status == models.RunFailed {
		_, err = p.db.ExecContext(ctx,
			`UPDATE scrape_runs SET status = $1, completed_at = now()
			 WHERE run_id = $2 AND status = 'running'`,
			string(status), runID)
	} else {
		_, err = p.db.ExecContext(ctx,
			`UPDATE scrape_runs SET status = $1, completed_at = now() WHERE run_id = $2`,
			string(status), runID)
	}
	return err
}

func (p *Postgres) LogPhase(ctx context.Context, entry models.ScrapePhaseLog) error {
	var platform *string
	if entry.Platform != nil {
		s := string(*entry.Platform)
		platform = &s
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO scrape_phase_log (run_id, phase, platform, entered_at) VALUES ($1, $2, $3, $4)`,
		entry.ScrapeRunID, string(entry.Phase), platform, entry.EnteredAt)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`UPDATE scrape_runs SET current_phase = $1, current_platform = $2 WHERE run_id = $3`,
		string(entry.Phase), platform, entry.ScrapeRunID)
	return err
}

func (p *Postgres) LogError(ctx context.Context, entry models.ScrapeError) error {
	var platform *string
	if entry.Platform != nil {
		s := string(*entry.Platform)
		platform = &s
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO scrape_errors (run_id, error_type, error_message, platform, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ScrapeRunID, string(entry.ErrorType), entry.ErrorMessage, platform, entry.OccurredAt)
	return err
}

// FailAllRunning unconditionally fails every RUNNING row, for process
// startup recovery where no goroutine could possibly still be
// progressing any of them.
func (p *Postgres) FailAllRunning(ctx context.Context) (int, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE scrape_runs SET status = 'failed', completed_at = now() WHERE status = 'running'`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (p *Postgres) FindStaleRunning(ctx context.Context, staleSince int64) ([]models.ScrapeRun, error) {
	query := `
		SELECT run_id, status, started_at, current_phase, current_platform
		FROM scrape_runs
		WHERE status = 'running'
		  AND COALESCE(
		        (SELECT MAX(entered_at) FROM scrape_phase_log WHERE run_id = scrape_runs.run_id),
		        started_at
		      ) < to_timestamp($1)
	`
	rows, err := p.db.QueryContext(ctx, query, staleSince)
	if err != nil {
		return nil, fmt.Errorf("query stale runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var r models.ScrapeRun
		var status string
		var phase, platform sql.NullString
		if err := rows.Scan(&r.ID, &status, &r.StartedAt, &phase, &platform); err != nil {
			return nil, fmt.Errorf("scan stale run: %w", err)
		}
		r.Status = models.RunStatus(status)
		if phase.Valid {
			p := models.ScrapePhase(phase.String)
			r.CurrentPhase = &p
		}
		if platform.Valid {
			pl := models.Platform(platform.String)
			r.CurrentPlatform = &pl
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (p *Postgres) LastActivity(ctx context.Context, runID string) (int64, error) {
	var ts time.Time
	err := p.db.QueryRowContext(ctx,
		`SELECT COALESCE(
		    (SELECT MAX(entered_at) FROM scrape_phase_log WHERE run_id = $1),
		    (SELECT started_at FROM scrape_runs WHERE run_id = $1)
		  )`, runID).Scan(&ts)
	if err != nil {
		return 0, err
	}
	return ts.Unix(), nil
}

// LoadSettings implements config.SettingsStore against the single-row
// settings table.
func (p *Postgres) LoadSettings(ctx context.Context) (config.Settings, error) {
	var s config.Settings
	var enabledPlatforms pq.StringArray

	row := p.db.QueryRowContext(ctx, `
		SELECT scrape_interval_minutes, enabled_platforms,
		       max_concurrent_betpawa, max_concurrent_sportybet, max_concurrent_bet9ja, bet9ja_delay_ms,
		       batch_size, retention_days,
		       alert_threshold_t1, alert_threshold_t2, alert_threshold_t3,
		       imminent_window_minutes, staleness_threshold_minutes, event_deadline_seconds
		FROM settings WHERE id = 1
	`)
	if err := row.Scan(
		&s.ScrapeIntervalMinutes, &enabledPlatforms,
		&s.MaxConcurrentBetPawa, &s.MaxConcurrentSportyBet, &s.MaxConcurrentBet9ja, &s.Bet9jaDelayMs,
		&s.BatchSize, &s.RetentionDays,
		&s.AlertThresholdT1, &s.AlertThresholdT2, &s.AlertThresholdT3,
		&s.ImminentWindowMinutes, &s.StalenessThresholdMinutes, &s.EventDeadlineSeconds,
	); err != nil {
		return config.Settings{}, fmt.Errorf("load settings row: %w", err)
	}

	s.EnabledPlatforms = make([]models.Platform, len(enabledPlatforms))
	for i, p := range enabledPlatforms {
		s.EnabledPlatforms[i] = models.Platform(p)
	}
	return s, nil
}
