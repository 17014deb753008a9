package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store is the single shared handle to the embedded database.
// All components go through it; the notifier publishes a table-changed
// event after every committed write so live queries can re-snapshot.
type Store struct {
	db       *sqlx.DB
	notifier *Notifier

	// fresh is true when Open created the database file rather than
	// reopening an existing one. Seeding is gated on this, never on a
	// row-count check, so reopening can never re-seed.
	fresh bool
}

// Open opens (or creates) the SQLite database at the given path.
// Use ":memory:" for an in-memory store in tests.
func Open(path string) (*Store, error) {
	fresh := path == ":memory:"
	if !fresh {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fresh = true
		}
	}

	// busy_timeout covers concurrent access from the tracker loop and
	// request handlers sharing the one connection pool.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids
	// SQLITE_BUSY churn between the tracker loop and handlers.
	db.SetMaxOpenConns(1)

	log.Printf("📦 Database opened at %s (new: %v)", path, fresh)
	return &Store{db: db, notifier: NewNotifier(), fresh: fresh}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsFresh reports whether Open created the store rather than reopening it.
func (s *Store) IsFresh() bool {
	return s.fresh
}

// Notifier exposes the change-event source, used by the WebSocket layer.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// Migrate creates the schema. Every statement is idempotent.
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			access_code TEXT NOT NULL,
			user_type TEXT NOT NULL CHECK(user_type IN ('DRIVER', 'SUPERVISOR', 'MANAGER')),
			name TEXT,
			last_login BIGINT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS trips (
			id TEXT PRIMARY KEY,
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			cargo_type TEXT NOT NULL,
			cargo_weight REAL NOT NULL CHECK(cargo_weight >= 0),
			driver_name TEXT NOT NULL,
			vehicle_number TEXT NOT NULL,
			departure_time BIGINT NOT NULL,
			arrival_time BIGINT,
			status TEXT NOT NULL CHECK(status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
			driver_id TEXT NOT NULL,
			supervisor_id TEXT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			qr_code TEXT,
			notes TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS location_tracking (
			id TEXT PRIMARY KEY,
			trip_id TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			accuracy REAL NOT NULL,
			speed REAL,
			bearing REAL,
			timestamp BIGINT NOT NULL,
			address TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		// An access code resolves to at most one active user.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_access_code_active
			ON users(access_code) WHERE is_active = 1`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_trips_qr_code
			ON trips(qr_code) WHERE qr_code IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_driver_id ON trips(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_created_at ON trips(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_location_tracking_trip_id ON location_tracking(trip_id)`,
		`CREATE INDEX IF NOT EXISTS idx_location_tracking_timestamp ON location_tracking(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
