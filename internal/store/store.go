// Package store persists aggregated neighborhood days in SQLite for the
// query API. Writes are upserts keyed on the natural key, so replaying a
// conversion over the same period is idempotent.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS neighborhood_days (
	neighborhood_id  TEXT    NOT NULL,
	date             TEXT    NOT NULL,
	rainfall_mm      REAL    NOT NULL,
	tide_m           REAL    NOT NULL,
	vulnerability    REAL    NOT NULL,
	occurrence_count INTEGER NOT NULL,
	risk_score       REAL    NOT NULL,
	updated_at_ms    INTEGER NOT NULL,
	PRIMARY KEY (neighborhood_id, date)
);
CREATE INDEX IF NOT EXISTS idx_neighborhood_days_date ON neighborhood_days (date);
`

const dateLayout = "2006-01-02"

// Store is a SQLite-backed results store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// UpsertDays writes rows in one transaction, replacing existing rows with
// the same (neighborhood_id, date).
func (s *Store) UpsertDays(ctx context.Context, days []domain.NeighborhoodDay) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO neighborhood_days
			(neighborhood_id, date, rainfall_mm, tide_m, vulnerability, occurrence_count, risk_score, updated_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (neighborhood_id, date) DO UPDATE SET
			rainfall_mm = excluded.rainfall_mm,
			tide_m = excluded.tide_m,
			vulnerability = excluded.vulnerability,
			occurrence_count = excluded.occurrence_count,
			risk_score = excluded.risk_score,
			updated_at_ms = excluded.updated_at_ms`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := domain.Now().UTC().UnixMilli()
	for i := range days {
		d := &days[i]
		if _, err := stmt.ExecContext(ctx,
			d.NeighborhoodID, d.Date.Format(dateLayout),
			d.RainfallMM, d.TideM, d.Vulnerability, d.Occurrences, d.RiskScore, now,
		); err != nil {
			return fmt.Errorf("upsert %s %s: %w", d.NeighborhoodID, d.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// ListFilter narrows ListDays. Zero values mean no constraint.
type ListFilter struct {
	NeighborhoodID string
	From, To       time.Time
	Limit          int
}

// ListDays returns rows matching the filter, ordered by (neighborhood_id,
// date) ascending.
func (s *Store) ListDays(ctx context.Context, filter ListFilter) ([]domain.NeighborhoodDay, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT neighborhood_id, date, rainfall_mm, tide_m, vulnerability, occurrence_count, risk_score
		FROM neighborhood_days WHERE 1=1`)
	var args []any
	if filter.NeighborhoodID != "" {
		query.WriteString(" AND neighborhood_id = ?")
		args = append(args, filter.NeighborhoodID)
	}
	if !filter.From.IsZero() {
		query.WriteString(" AND date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if !filter.To.IsZero() {
		query.WriteString(" AND date <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}
	query.WriteString(" ORDER BY neighborhood_id, date")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var out []domain.NeighborhoodDay
	for rows.Next() {
		var d domain.NeighborhoodDay
		var date string
		if err := rows.Scan(&d.NeighborhoodID, &date, &d.RainfallMM, &d.TideM,
			&d.Vulnerability, &d.Occurrences, &d.RiskScore); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		if d.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RankingEntry summarizes one neighborhood's risk over the stored period.
type RankingEntry struct {
	NeighborhoodID string  `json:"neighborhood_id"`
	AvgRiskScore   float64 `json:"avg_risk_score"`
	MaxRiskScore   float64 `json:"max_risk_score"`
	Occurrences    int     `json:"occurrences"`
	Days           int     `json:"days"`
}

// Ranking returns neighborhoods ordered by average risk score descending.
func (s *Store) Ranking(ctx context.Context) ([]RankingEntry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT neighborhood_id, AVG(risk_score), MAX(risk_score), SUM(occurrence_count), COUNT(*)
		FROM neighborhood_days
		GROUP BY neighborhood_id
		ORDER BY AVG(risk_score) DESC, neighborhood_id`)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	defer rows.Close()

	var out []RankingEntry
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(&e.NeighborhoodID, &e.AvgRiskScore, &e.MaxRiskScore, &e.Occurrences, &e.Days); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
