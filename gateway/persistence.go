package gateway

import (
	"database/sql"
	"fmt"

	"github.com/tolelom/casinochain/codec"
	"github.com/tolelom/casinochain/core"
)

// SummaryStore persists the most recent block summaries to SQLite, per
// spec.md §6's Persistence layout: summaries(height PRIMARY KEY,
// summary_bytes BLOB) under journal_mode=WAL, bounded to maxSummaries rows.
type SummaryStore struct {
	db *sql.DB
}

const maxSummaries = 256

// OpenSummaryStore runs the schema migration against db (expected to have
// been opened with a mattn/go-sqlite3 DSN carrying _journal_mode=WAL) and
// returns a ready SummaryStore.
func OpenSummaryStore(db *sql.DB) (*SummaryStore, error) {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS summaries (
		height       INTEGER PRIMARY KEY,
		summary_bytes BLOB NOT NULL
	);`); err != nil {
		return nil, fmt.Errorf("create summaries table: %w", err)
	}
	return &SummaryStore{db: db}, nil
}

// Save upserts s under its Progress.Height and prunes everything older than
// the last maxSummaries heights, keeping the table bounded as spec.md §6
// requires.
func (st *SummaryStore) Save(s core.Summary) error {
	tx, err := st.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	encoded := codec.EncodeSummary(s)
	if _, err := tx.Exec(
		`INSERT INTO summaries (height, summary_bytes) VALUES (?, ?)
		 ON CONFLICT(height) DO UPDATE SET summary_bytes = excluded.summary_bytes`,
		s.Progress.Height, encoded,
	); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM summaries WHERE height <= (SELECT MAX(height) FROM summaries) - ?`,
		maxSummaries,
	); err != nil {
		return fmt.Errorf("prune summaries: %w", err)
	}
	return tx.Commit()
}

// Latest returns the highest-height persisted summary, or ok=false if none
// has ever been saved.
func (st *SummaryStore) Latest() (core.Summary, bool, error) {
	row := st.db.QueryRow(`SELECT summary_bytes FROM summaries ORDER BY height DESC LIMIT 1`)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return core.Summary{}, false, nil
		}
		return core.Summary{}, false, err
	}
	s, err := codec.DecodeSummary(blob)
	if err != nil {
		return core.Summary{}, false, fmt.Errorf("decode stored summary: %w", err)
	}
	return s, true, nil
}

// ByHeight returns the summary persisted for height, or ok=false if absent.
func (st *SummaryStore) ByHeight(height int64) (core.Summary, bool, error) {
	row := st.db.QueryRow(`SELECT summary_bytes FROM summaries WHERE height = ?`, height)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return core.Summary{}, false, nil
		}
		return core.Summary{}, false, err
	}
	s, err := codec.DecodeSummary(blob)
	if err != nil {
		return core.Summary{}, false, fmt.Errorf("decode stored summary: %w", err)
	}
	return s, true, nil
}
