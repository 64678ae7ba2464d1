package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the sink uses. pgxmock satisfies it,
// which keeps the postgres sink testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	company_id  TEXT PRIMARY KEY,
	url         TEXT NOT NULL DEFAULT '',
	score       INTEGER NOT NULL DEFAULT 0,
	disposition TEXT NOT NULL,
	query_used  TEXT NOT NULL DEFAULT '',
	components  JSONB NOT NULL DEFAULT '{}',
	similarity  REAL NOT NULL DEFAULT 0,
	state       TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_decisions_disposition ON decisions(disposition);
`

const postgresUpsert = `
INSERT INTO decisions (company_id, url, score, disposition, query_used, components, similarity, state, error, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (company_id) DO UPDATE SET
	url = EXCLUDED.url,
	score = EXCLUDED.score,
	disposition = EXCLUDED.disposition,
	query_used = EXCLUDED.query_used,
	components = EXCLUDED.components,
	similarity = EXCLUDED.similarity,
	state = EXCLUDED.state,
	error = EXCLUDED.error,
	updated_at = now()`

// PostgresSink persists decisions through a pgx connection pool.
type PostgresSink struct {
	pool    Pool
	closeFn func()
}

// NewPostgresSink wraps an existing pool. Used directly by tests.
func NewPostgresSink(pool Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// OpenPostgres connects to postgres and ensures the schema exists.
func OpenPostgres(ctx context.Context, connString string) (*PostgresSink, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse postgres config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}

	sink := &PostgresSink{pool: pool, closeFn: pool.Close}
	if err := sink.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "store: migrate")
}

// Save upserts one decision keyed by company id.
func (s *PostgresSink) Save(ctx context.Context, d model.Decision) error {
	components, err := json.Marshal(d.Components)
	if err != nil {
		return eris.Wrap(err, "store: marshal components")
	}

	_, err = s.pool.Exec(ctx, postgresUpsert,
		d.CompanyID, d.URL, d.Score, string(d.Disposition), d.QueryUsed,
		components, d.Similarity, string(d.State), d.Error,
	)
	if err != nil {
		return eris.Wrapf(err, "store: upsert decision %s", d.CompanyID)
	}
	return nil
}

// Get returns the stored decision for one company, or nil if absent.
func (s *PostgresSink) Get(ctx context.Context, companyID string) (*model.Decision, error) {
	var d model.Decision
	var disposition, state string
	var components []byte

	err := s.pool.QueryRow(ctx,
		`SELECT company_id, url, score, disposition, query_used, components, similarity, state, error
		 FROM decisions WHERE company_id = $1`,
		companyID,
	).Scan(&d.CompanyID, &d.URL, &d.Score, &disposition, &d.QueryUsed,
		&components, &d.Similarity, &state, &d.Error)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: get decision %s", companyID)
	}

	d.Disposition = model.Disposition(disposition)
	d.State = model.CompanyState(state)
	if len(components) > 0 {
		if err := json.Unmarshal(components, &d.Components); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal components")
		}
	}
	return &d, nil
}

// Close releases the pool.
func (s *PostgresSink) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
