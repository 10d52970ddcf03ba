package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"driftwatch/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/driftwatch?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS anomalies (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			stream_id TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			window_size INTEGER NOT NULL,
			seq BIGINT NOT NULL,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_ts ON anomalies(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_stream ON anomalies(stream_id)`,
		`CREATE TABLE IF NOT EXISTS window_stats (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			stream_id TEXT NOT NULL,
			capacity INTEGER NOT NULL,
			len INTEGER NOT NULL,
			mean DOUBLE PRECISION NOT NULL,
			std_dev DOUBLE PRECISION NOT NULL,
			samples BIGINT NOT NULL,
			anomalies BIGINT NOT NULL,
			rejected BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_window_stats_stream ON window_stats(stream_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) SaveAnomaly(ctx context.Context, a model.Anomaly) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO anomalies (ts, stream_id, value, score, threshold, window_size, seq, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.Timestamp.UTC(),
		a.StreamID,
		a.Value,
		a.Score,
		a.Threshold,
		a.WindowSize,
		a.Seq,
		a.Source,
	)
	return err
}

func (s *postgresStore) SaveStats(ctx context.Context, ws model.WindowStats) error {
	if s.db == nil || ws.StreamID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO window_stats (ts, stream_id, capacity, len, mean, std_dev, samples, anomalies, rejected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		nowUTC(),
		ws.StreamID,
		ws.Capacity,
		ws.Len,
		ws.Mean,
		ws.StdDev,
		ws.Samples,
		ws.Anomalies,
		ws.Rejected,
	)
	return err
}
