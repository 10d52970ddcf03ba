package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"driftwatch/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:driftwatch.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS anomalies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			stream_id TEXT NOT NULL,
			value REAL NOT NULL,
			score REAL NOT NULL,
			threshold REAL NOT NULL,
			window_size INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_ts ON anomalies(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_stream ON anomalies(stream_id)`,
		`CREATE TABLE IF NOT EXISTS window_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			stream_id TEXT NOT NULL,
			capacity INTEGER NOT NULL,
			len INTEGER NOT NULL,
			mean REAL NOT NULL,
			std_dev REAL NOT NULL,
			samples INTEGER NOT NULL,
			anomalies INTEGER NOT NULL,
			rejected INTEGER NOT NULL
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

func (s *sqliteStore) SaveAnomaly(ctx context.Context, a model.Anomaly) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO anomalies (ts, stream_id, value, score, threshold, window_size, seq, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
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

func (s *sqliteStore) SaveStats(ctx context.Context, ws model.WindowStats) error {
	if s.db == nil || ws.StreamID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO window_stats (ts, stream_id, capacity, len, mean, std_dev, samples, anomalies, rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
