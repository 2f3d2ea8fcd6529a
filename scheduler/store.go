package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/devskill-org/stargazing/forecast"
	"github.com/devskill-org/stargazing/logger"
	"github.com/devskill-org/stargazing/scoring"
)

// Schema creates the table scored forecasts are persisted to
const Schema = `
CREATE TABLE IF NOT EXISTS observing_scores (
	source         TEXT             NOT NULL,
	slot_time      TIMESTAMPTZ      NOT NULL,
	run_id         UUID             NOT NULL,
	cloud_cover    SMALLINT         NOT NULL,
	high_cloud     SMALLINT         NOT NULL,
	mid_cloud      SMALLINT         NOT NULL,
	low_cloud      SMALLINT         NOT NULL,
	astro_cloud    SMALLINT         NOT NULL,
	seeing         SMALLINT         NOT NULL,
	transparency   SMALLINT         NOT NULL,
	score          SMALLINT         NOT NULL,
	cloud_label    TEXT             NOT NULL,
	temperature    DOUBLE PRECISION,
	wind_speed     DOUBLE PRECISION,
	wind_direction DOUBLE PRECISION,
	created_at     TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (source, slot_time)
)`

// Store persists scored forecasts in PostgreSQL
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger.OrNop(log)}
}

// OpenStore connects to PostgreSQL and verifies the connection
func OpenStore(ctx context.Context, connString string, log *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", logger.MaskConnString(connString), err)
	}
	return NewStore(db, log), nil
}

// Migrate creates the schema if needed
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScores replaces the stored forecast of source from the first record onward.
// Records must be sorted by time.
func (s *Store) SaveScores(ctx context.Context, runID uuid.UUID, source forecast.Source, records []scoring.ObservingScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A newer run may have dropped slots the previous one still had
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM observing_scores WHERE source = $1 AND slot_time >= $2`,
		string(source), records[0].Time,
	); err != nil {
		return fmt.Errorf("failed to delete existing scores: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observing_scores (
			source,
			slot_time,
			run_id,
			cloud_cover,
			high_cloud,
			mid_cloud,
			low_cloud,
			astro_cloud,
			seeing,
			transparency,
			score,
			cloud_label,
			temperature,
			wind_speed,
			wind_direction
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (source, slot_time) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			cloud_cover = EXCLUDED.cloud_cover,
			high_cloud = EXCLUDED.high_cloud,
			mid_cloud = EXCLUDED.mid_cloud,
			low_cloud = EXCLUDED.low_cloud,
			astro_cloud = EXCLUDED.astro_cloud,
			seeing = EXCLUDED.seeing,
			transparency = EXCLUDED.transparency,
			score = EXCLUDED.score,
			cloud_label = EXCLUDED.cloud_label,
			temperature = EXCLUDED.temperature,
			wind_speed = EXCLUDED.wind_speed,
			wind_direction = EXCLUDED.wind_direction
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			string(source),
			r.Time.UTC(),
			runID,
			r.CloudCover,
			r.HighCloud,
			r.MidCloud,
			r.LowCloud,
			r.AstroCloud,
			r.Seeing,
			r.Transparency,
			r.Score,
			string(r.CloudLabel),
			nullFloat(r.Temperature),
			nullFloat(r.WindSpeed),
			nullFloat(r.WindDirection),
		)
		if err != nil {
			return fmt.Errorf("failed to insert score for %s: %w", r.Time.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infow("saved scores", "source", source, "run_id", runID, "count", len(records))
	return nil
}

// LoadScores loads the stored records of source with slot_time >= from, ordered by time.
// Score and cloud label are recomputed from the stored ordinals.
func (s *Store) LoadScores(ctx context.Context, source forecast.Source, from time.Time) ([]scoring.ObservingScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			slot_time,
			cloud_cover,
			high_cloud,
			mid_cloud,
			low_cloud,
			astro_cloud,
			seeing,
			transparency,
			temperature,
			wind_speed,
			wind_direction
		FROM observing_scores
		WHERE source = $1 AND slot_time >= $2
		ORDER BY slot_time ASC
	`, string(source), from)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var records []scoring.ObservingScoreRecord
	for rows.Next() {
		var r forecast.NormalizedConditionRecord
		var temperature, windSpeed, windDirection sql.NullFloat64

		if err := rows.Scan(
			&r.Time,
			&r.CloudCover,
			&r.HighCloud,
			&r.MidCloud,
			&r.LowCloud,
			&r.AstroCloud,
			&r.Seeing,
			&r.Transparency,
			&temperature,
			&windSpeed,
			&windDirection,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}

		r.Source = source
		r.Temperature = floatPtr(temperature)
		r.WindSpeed = floatPtr(windSpeed)
		r.WindDirection = floatPtr(windDirection)

		// Stored score columns are for reporting; the served score always follows the current formula
		records = append(records, scoring.Score(r))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}
	return records, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return forecast.Float64Ptr(n.Float64)
}
