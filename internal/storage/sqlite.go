package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			s.log().Info("running migration", zap.Int("version", m.version), zap.String("name", m.name))
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(m migration) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name)
	return err
}

// migration001InitialSchema creates the history tables.
func (s *SQLiteStorage) migration001InitialSchema() error {
	statements := []struct {
		what string
		sql  string
	}{
		{"tool_usage table", `
			CREATE TABLE IF NOT EXISTS tool_usage (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				tool_id TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				context_hash TEXT NOT NULL,
				timestamp TEXT NOT NULL,
				selected INTEGER NOT NULL
			)`},
		{"tool_usage tool index", `
			CREATE INDEX IF NOT EXISTS idx_tool_usage_tool
			ON tool_usage(tool_id)`},
		{"tool_usage timestamp index", `
			CREATE INDEX IF NOT EXISTS idx_tool_usage_timestamp
			ON tool_usage(timestamp DESC)`},
		{"search_history table", `
			CREATE TABLE IF NOT EXISTS search_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				search_id TEXT NOT NULL UNIQUE,
				query_hash TEXT NOT NULL,
				timestamp TEXT NOT NULL,
				results_count INTEGER NOT NULL,
				engine TEXT NOT NULL DEFAULT ''
			)`},
		{"search_history timestamp index", `
			CREATE INDEX IF NOT EXISTS idx_search_history_timestamp
			ON search_history(timestamp DESC)`},
	}

	for _, st := range statements {
		if _, err := s.db.Exec(st.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", st.what, err)
		}
	}

	return nil
}
