// Package store is the Postgres implementation of the persistence
// seams the rest of the pipeline depends on (contracts.Store,
// contracts.MappingStore, config.SettingsStore). Grounded on Mercury's
// cmd/mercury/main.go sql.Open("postgres", ...)+Ping startup sequence
// and jbrackens-AttaboyGO/internal/infra/postgres.go's pool-tuning/
// HealthCheck shape, adapted from pgx to database/sql+lib/pq since
// that is the driver the teacher already wires.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

// Open connects to Postgres and verifies reachability before returning.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// HealthCheck pings the pool with a short deadline, for an admin
// liveness endpoint.
func HealthCheck(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// Postgres implements contracts.Store, contracts.MappingStore and
// config.SettingsStore against a shared *sql.DB.
type Postgres struct {
	db *sql.DB
}

func New(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}
