package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// Store provides database operations for analytics.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure analytics db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			kind TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id);
		CREATE INDEX IF NOT EXISTS idx_events_endpoint ON events(endpoint);
		CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
		CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	if version < currentSchemaVersion {
		version = currentSchemaVersion
	}

	return s.SetSetting("schema_version", strconv.Itoa(version))
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// RecordEvent stores a tracked event.
func (s *Store) RecordEvent(ctx context.Context, e *Event) error {
	if e == nil {
		return errors.New("event cannot be nil")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (session_id, endpoint, kind, timestamp) VALUES (?, ?, ?, ?)`,
		e.SessionID, e.Endpoint, string(e.Kind), e.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// Summary aggregates all recorded events. Visits are the hits on
// visitEndpoint; the four aggregates run concurrently.
func (s *Store) Summary(ctx context.Context, visitEndpoint string) (*Summary, error) {
	sum := &Summary{EndpointStats: map[string]int64{}}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM events WHERE endpoint = ?`, visitEndpoint).Scan(&sum.TotalVisits)
		if err != nil {
			return fmt.Errorf("count total visits: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(DISTINCT session_id) FROM events`).Scan(&sum.UniqueUsers)
		if err != nil {
			return fmt.Errorf("count unique users: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM events WHERE kind = ?`, string(KindAPICall)).Scan(&sum.APIHits)
		if err != nil {
			return fmt.Errorf("count api hits: %w", err)
		}
		return nil
	})

	stats := make(map[string]int64)
	g.Go(func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT endpoint, COUNT(*) FROM events GROUP BY endpoint`)
		if err != nil {
			return fmt.Errorf("endpoint stats: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var endpoint string
			var count int64
			if err := rows.Scan(&endpoint, &count); err != nil {
				return fmt.Errorf("scan endpoint stats: %w", err)
			}
			stats[endpoint] = count
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sum.EndpointStats = stats
	sum.LastUpdated = time.Now().UTC()
	return sum, nil
}

// CleanupOldEvents removes events older than the retention period.
func (s *Store) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup events: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// StartCleanupScheduler runs periodic cleanup of old events. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logger echo.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.CleanupOldEvents(context.Background(), retentionDays)
				if err != nil {
					logger.Errorf("analytics cleanup: %v", err)
					continue
				}
				if n > 0 {
					logger.Infof("analytics cleanup removed %d events", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
