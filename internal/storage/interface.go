/*
Package storage keeps local search and tool-usage history in SQLite.

The history feeds the popular-tools list and the stats command. Query text is
never stored, only its SHA256 hash. If the database cannot be opened the
storage disables itself and every operation becomes a no-op.

The default database lives at ~/.toolora-search/history.db and uses
modernc.org/sqlite (a pure Go, CGo-free implementation).
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// RecordUsage records a tool impression or selection.
	RecordUsage(event UsageEvent) error

	// GetUsageHistory retrieves usage history for a tool since a given time.
	GetUsageHistory(toolID string, since time.Time) ([]UsageEvent, error)

	// RecordSearch records a search query for analytics.
	RecordSearch(search SearchRecord) error

	// ToolUsageCounts returns the most selected tools since a given time.
	ToolUsageCounts(since time.Time, limit int) ([]ToolCount, error)

	// SearchStats summarizes searches since a given time.
	SearchStats(since time.Time) (SearchSummary, error)

	// Cleanup removes old records based on retention policy.
	Cleanup(retention time.Duration) error

	// Clear removes all recorded history.
	Clear() error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
	logger   *zap.Logger
}

// DefaultDBPath returns ~/.toolora-search/history.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".toolora-search", "history.db"), nil
}

// NewStorage creates a SQLite storage at dbPath, or at DefaultDBPath when
// dbPath is empty. A leading "~/" is expanded to the home directory.
//
// If the path cannot be resolved, the storage is disabled but operations
// will not fail.
func NewStorage(dbPath string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("storage")

	resolved, err := resolvePath(dbPath)
	if err != nil {
		logger.Warn("storage disabled", zap.Error(err))
		return &SQLiteStorage{enabled: false, logger: logger}
	}

	return &SQLiteStorage{
		dbPath:  resolved,
		enabled: true,
		logger:  logger,
	}
}

func resolvePath(dbPath string) (string, error) {
	if dbPath == "" {
		return DefaultDBPath()
	}
	if strings.HasPrefix(dbPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, dbPath[2:]), nil
	}
	return dbPath, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.db != nil
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		fail := func(err error) {
			initErr = err
			s.enabled = false
			s.log().Warn("storage disabled", zap.String("path", s.dbPath), zap.Error(err))
		}

		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			fail(fmt.Errorf("failed to create db directory: %w", err))
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			fail(fmt.Errorf("failed to open database: %w", err))
			return
		}
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			fail(fmt.Errorf("failed to ping database: %w", err))
			db.Close()
			s.db = nil
			return
		}

		if err := s.runMigrations(); err != nil {
			fail(fmt.Errorf("failed to run migrations: %w", err))
			db.Close()
			s.db = nil
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

func (s *SQLiteStorage) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// ready reports whether queries can run. Callers must hold s.mu.
func (s *SQLiteStorage) ready() bool {
	return s.enabled && s.db != nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
