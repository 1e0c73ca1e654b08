// Package history records completed generation runs in SQLite so agents
// can review what was produced for a property and when.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propwrite/propwrite/internal/core"
)

// Entry is one recorded generation run.
type Entry struct {
	ID              string       `json:"id"`
	CreatedAt       time.Time    `json:"created_at"`
	Address         string       `json:"address"`
	Channel         core.Channel `json:"channel"`
	Tone            core.Tone    `json:"tone"`
	BrandID         string       `json:"brand_id,omitempty"`
	VariantCount    int          `json:"variant_count"`
	WordCounts      []int        `json:"word_counts"`
	ComplianceScore float64      `json:"compliance_score"`
	Compliant       bool         `json:"compliant"`
}

// Store reads and writes generation history.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the history table. Run once at startup.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generation_runs (
			id               TEXT PRIMARY KEY,
			created_at       TIMESTAMP NOT NULL,
			address          TEXT NOT NULL,
			channel          TEXT NOT NULL,
			tone             TEXT NOT NULL,
			brand_id         TEXT NOT NULL DEFAULT '',
			variant_count    INTEGER NOT NULL,
			word_counts      TEXT NOT NULL DEFAULT '[]',
			compliance_score REAL NOT NULL DEFAULT 0,
			compliant        INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created
			ON generation_runs (created_at DESC);
	`)
	return err
}

// Record inserts one run. A missing id or timestamp is filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	wordCounts, err := json.Marshal(e.WordCounts)
	if err != nil {
		return fmt.Errorf("encoding word counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generation_runs (
			id, created_at, address, channel, tone, brand_id,
			variant_count, word_counts, compliance_score, compliant
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt, e.Address, string(e.Channel), string(e.Tone), e.BrandID,
		e.VariantCount, string(wordCounts), e.ComplianceScore, boolInt(e.Compliant),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", e.ID, err)
	}
	return nil
}

// ListOptions control pagination of List.
type ListOptions struct {
	Limit  int
	Offset int
}

// List returns runs newest first, plus the total row count for paging.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, int, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generation_runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, address, channel, tone, brand_id,
		       variant_count, word_counts, compliance_score, compliant
		FROM generation_runs
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			channel    string
			tone       string
			wordCounts string
			compliant  int
		)
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Address, &channel, &tone, &e.BrandID,
			&e.VariantCount, &wordCounts, &e.ComplianceScore, &compliant); err != nil {
			return nil, 0, fmt.Errorf("scanning run: %w", err)
		}
		e.Channel = core.Channel(channel)
		e.Tone = core.Tone(tone)
		e.Compliant = compliant != 0
		if err := json.Unmarshal([]byte(wordCounts), &e.WordCounts); err != nil {
			e.WordCounts = nil
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
