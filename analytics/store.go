// Package analytics records page views in a standalone SQLite database.
// It is deliberately separate from the content store: content lives in
// flat JSON documents, analytics is append-heavy telemetry that would
// thrash a rewrite-the-whole-file store.
package analytics

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for analytics.
type Store struct {
	db *sql.DB
}

// Visit is one recorded page view.
type Visit struct {
	Path      string
	IPHash    string
	Referrer  string
	Timestamp time.Time
}

// PageStat aggregates views for one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// DailyStat aggregates views for one day.
type DailyStat struct {
	Day   string `json:"day"`
	Views int    `json:"views"`
}

// Stats is the aggregate view over a period.
type Stats struct {
	TotalViews     int        `json:"totalViews"`
	UniqueVisitors int        `json:"uniqueVisitors"`
	TopPages       []PageStat `json:"topPages"`
	DailyViews     []DailyStat `json:"dailyViews"`
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
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
			path TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			referrer TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);
	`)
	return err
}

// SaveVisit records one page view.
func (s *Store) SaveVisit(v *Visit) error {
	_, err := s.db.Exec(
		`INSERT INTO visits (path, ip_hash, referrer, timestamp) VALUES (?, ?, ?, ?)`,
		v.Path, v.IPHash, v.Referrer, v.Timestamp.UTC().Format(time.RFC3339),
	)
	return err
}

// GetStats aggregates views between from and to.
func (s *Store) GetStats(from, to time.Time, topN int) (*Stats, error) {
	stats := &Stats{}
	fromStr := from.UTC().Format(time.RFC3339)
	toStr := to.UTC().Format(time.RFC3339)

	row := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT ip_hash) FROM visits WHERE timestamp >= ? AND timestamp < ?`,
		fromStr, toStr,
	)
	if err := row.Scan(&stats.TotalViews, &stats.UniqueVisitors); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT path, COUNT(*) AS views FROM visits
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY path ORDER BY views DESC LIMIT ?`,
		fromStr, toStr, topN,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, err
		}
		stats.TopPages = append(stats.TopPages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := s.db.Query(
		`SELECT substr(timestamp, 1, 10) AS day, COUNT(*) FROM visits
		 WHERE timestamp >= ? AND timestamp < ?
		 GROUP BY day ORDER BY day`,
		fromStr, toStr,
	)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var d DailyStat
		if err := dayRows.Scan(&d.Day, &d.Views); err != nil {
			return nil, err
		}
		stats.DailyViews = append(stats.DailyViews, d)
	}
	return stats, dayRows.Err()
}

// CleanupOldVisits deletes visits older than retentionDays.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff)
	return err
}

// StartCleanupScheduler runs CleanupOldVisits every interval until the
// returned stop function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				_ = s.CleanupOldVisits(retentionDays)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
