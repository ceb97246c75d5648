package analytics

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// Store persists visits in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
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

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
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

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);

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
	return s.SetSetting("schema_version", strconv.Itoa(currentSchemaVersion))
}

// GetSetting returns the value stored under key, or "" when unset.
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

// Salt returns the persistent IP-hash salt, generating it on first use.
func (s *Store) Salt() (string, error) {
	salt, err := s.GetSetting("ip_salt")
	if err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	if salt != "" {
		return salt, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(b)
	if err := s.SetSetting("ip_salt", salt); err != nil {
		return "", fmt.Errorf("store salt: %w", err)
	}
	return salt, nil
}

// SaveVisit stores a human page view.
func (s *Store) SaveVisit(ctx context.Context, v *Visit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO visits
		(visitor_id, session_id, ip_hash, browser, os, device, path, referrer, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device, v.Path, v.Referrer, dbTime(v.Timestamp))
	return err
}

// SaveBotVisit stores a crawler page view.
func (s *Store) SaveBotVisit(ctx context.Context, bv *BotVisit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_visits
		(bot_name, ip_hash, user_agent, path, timestamp) VALUES (?, ?, ?, ?, ?)`,
		bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, dbTime(bv.Timestamp))
	return err
}

const topLimit = 10

// timeLayout is SQLite's own datetime text form. Timestamps are bound as
// strings in this layout so range comparisons are lexical and strftime can
// read them.
const timeLayout = "2006-01-02 15:04:05"

func dbTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// GetStats aggregates visits in [from, to). The queries run in parallel and
// the first failure cancels the rest.
func (s *Store) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	stats := &Stats{
		From:       from.UTC(),
		To:         to.UTC(),
		TopPages:   []PageStat{},
		Referrers:  []DimensionStat{},
		Browsers:   []DimensionStat{},
		Devices:    []DimensionStat{},
		DailyViews: []DailyView{},
	}

	start, end := dbTime(from), dbTime(to)

	// each goroutine writes a distinct field of stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.count(ctx, &stats.TotalViews, "count views",
			`SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp < ?`, start, end)
	})
	g.Go(func() error {
		return s.count(ctx, &stats.UniqueVisitors, "count unique visitors",
			`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ? AND timestamp < ?`, start, end)
	})
	g.Go(func() error {
		return s.count(ctx, &stats.BotVisits, "count bot visits",
			`SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`, start, end)
	})
	g.Go(func() error {
		dims, err := s.dimension(ctx, "path", start, end)
		if err != nil {
			return fmt.Errorf("top pages: %w", err)
		}
		pages := make([]PageStat, len(dims))
		for i, d := range dims {
			pages[i] = PageStat{Path: d.Name, Views: d.Count}
		}
		stats.TopPages = pages
		return nil
	})
	g.Go(func() (err error) {
		stats.Referrers, err = s.dimension(ctx, "referrer", start, end)
		if err != nil {
			return fmt.Errorf("referrer stats: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		stats.Browsers, err = s.dimension(ctx, "browser", start, end)
		if err != nil {
			return fmt.Errorf("browser stats: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		stats.Devices, err = s.dimension(ctx, "device", start, end)
		if err != nil {
			return fmt.Errorf("device stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT strftime('%Y-%m-%d', timestamp) AS day, COUNT(*)
			FROM visits WHERE timestamp >= ? AND timestamp < ?
			GROUP BY day ORDER BY day`, start, end)
		if err != nil {
			return fmt.Errorf("daily views: %w", err)
		}
		defer rows.Close()
		var days []DailyView
		for rows.Next() {
			var d DailyView
			if err := rows.Scan(&d.Date, &d.Views); err != nil {
				return fmt.Errorf("daily views: %w", err)
			}
			days = append(days, d)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("daily views: %w", err)
		}
		if days != nil {
			stats.DailyViews = days
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) count(ctx context.Context, dst *int, what, query string, args ...any) error {
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(dst); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// dimension groups visits by column. column is always a literal from GetStats.
func (s *Store) dimension(ctx context.Context, column, start, end string) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) AS n FROM visits
		WHERE timestamp >= ? AND timestamp < ? AND `+column+` != ''
		GROUP BY `+column+` ORDER BY n DESC, `+column+` LIMIT ?`, start, end, topLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CleanupOldVisits deletes visits and bot visits older than retentionDays.
// It returns the number of rows removed.
func (s *Store) CleanupOldVisits(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := dbTime(time.Now().AddDate(0, 0, -retentionDays))
	var total int64
	for _, table := range []string{"visits", "bot_visits"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE timestamp < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// StartCleanupScheduler runs CleanupOldVisits immediately and then every
// interval until the returned stop function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logger *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	cleanup := func() {
		n, err := s.CleanupOldVisits(ctx, retentionDays)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("analytics cleanup failed", zap.Error(err))
			}
			return
		}
		if n > 0 {
			logger.Info("analytics cleanup", zap.Int64("removed", n), zap.Int("retention_days", retentionDays))
		}
	}

	go func() {
		defer close(done)
		cleanup()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanup()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
