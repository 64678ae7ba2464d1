package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS decisions (
	company_id  TEXT PRIMARY KEY,
	url         TEXT NOT NULL DEFAULT '',
	score       INTEGER NOT NULL DEFAULT 0,
	disposition TEXT NOT NULL,
	query_used  TEXT NOT NULL DEFAULT '',
	components  TEXT NOT NULL DEFAULT '{}',
	similarity  REAL NOT NULL DEFAULT 0,
	state       TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`

const sqliteUpsert = `
INSERT INTO decisions (company_id, url, score, disposition, query_used, components, similarity, state, error, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
ON CONFLICT(company_id) DO UPDATE SET
	url = excluded.url,
	score = excluded.score,
	disposition = excluded.disposition,
	query_used = excluded.query_used,
	components = excluded.components,
	similarity = excluded.similarity,
	state = excluded.state,
	error = excluded.error,
	updated_at = excluded.updated_at;
`

// SQLiteSink persists decisions to an embedded sqlite database.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the sqlite database at path and
// ensures the schema exists. WAL mode keeps concurrent company pipelines
// from serializing on writes.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "store: apply %s", pragma)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "store: create schema")
	}

	return &SQLiteSink{db: db}, nil
}

// Save upserts one decision keyed by company id.
func (s *SQLiteSink) Save(ctx context.Context, d model.Decision) error {
	components, err := json.Marshal(d.Components)
	if err != nil {
		return eris.Wrap(err, "store: marshal components")
	}

	_, err = s.db.ExecContext(ctx, sqliteUpsert,
		d.CompanyID, d.URL, d.Score, string(d.Disposition), d.QueryUsed,
		string(components), d.Similarity, string(d.State), d.Error,
	)
	if err != nil {
		return eris.Wrap(err, "store: upsert decision")
	}
	return nil
}

// Get returns the stored decision for one company, or nil if absent.
func (s *SQLiteSink) Get(ctx context.Context, companyID string) (*model.Decision, error) {
	var d model.Decision
	var disposition, state, components string

	err := s.db.QueryRowContext(ctx,
		`SELECT company_id, url, score, disposition, query_used, components, similarity, state, error
		 FROM decisions WHERE company_id = ?`,
		companyID,
	).Scan(&d.CompanyID, &d.URL, &d.Score, &disposition, &d.QueryUsed,
		&components, &d.Similarity, &state, &d.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: get decision %s", companyID)
	}

	d.Disposition = model.Disposition(disposition)
	d.State = model.CompanyState(state)
	if components != "" {
		if err := json.Unmarshal([]byte(components), &d.Components); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal components")
		}
	}
	return &d, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
