package store

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of all migrations
// New migrations should be appended to the end with incrementing version numbers
var migrations = []Migration{
	{
		Version:     1,
		Description: "Match history and player stats",
		SQL: `
		CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			rounds INTEGER NOT NULL,
			player_count INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			sale_count INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS match_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL REFERENCES matches(id),
			seat INTEGER NOT NULL,
			name TEXT NOT NULL,
			final_cash INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(match_id, seat)
		);

		CREATE TABLE IF NOT EXISTS player_stats (
			name TEXT PRIMARY KEY,
			matches_played INTEGER NOT NULL DEFAULT 0,
			matches_won INTEGER NOT NULL DEFAULT 0,
			total_cash INTEGER NOT NULL DEFAULT 0,
			best_cash INTEGER NOT NULL DEFAULT 0,
			worst_cash INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_matches_ended ON matches(ended_at);
		CREATE INDEX IF NOT EXISTS idx_match_results_match ON match_results(match_id);
		CREATE INDEX IF NOT EXISTS idx_match_results_name ON match_results(name);
		`,
	},
	{
		Version:     2,
		Description: "Sale log and round values",
		SQL: `
		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			match_id TEXT NOT NULL REFERENCES matches(id),
			seq INTEGER NOT NULL,
			round INTEGER NOT NULL,
			seller INTEGER NOT NULL,
			buyer INTEGER NOT NULL,
			items TEXT NOT NULL,
			mechanism TEXT NOT NULL,
			amount INTEGER NOT NULL,
			UNIQUE(match_id, seq)
		);

		CREATE TABLE IF NOT EXISTS round_values (
			match_id TEXT NOT NULL REFERENCES matches(id),
			round INTEGER NOT NULL,
			category TEXT NOT NULL,
			sold INTEGER NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY(match_id, round, category)
		);

		CREATE INDEX IF NOT EXISTS idx_sales_match ON sales(match_id);
		`,
	},
	{
		Version:     3,
		Description: "Final snapshot blob",
		SQL: `
		ALTER TABLE matches ADD COLUMN snapshot BLOB;
		`,
	},
}

// initMigrationsTable creates the migrations tracking table
func (s *Store) initMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// getCurrentVersion returns the highest applied migration version
func (s *Store) getCurrentVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// Migrate runs all pending migrations
func (s *Store) Migrate() error {
	if err := s.initMigrationsTable(); err != nil {
		return fmt.Errorf("failed to init migrations table: %w", err)
	}

	currentVersion, err := s.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
	}

	return nil
}

// applyMigration runs a single migration in a transaction
func (s *Store) applyMigration(m Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// MigrationStatus returns applied and pending migrations
func (s *Store) MigrationStatus() (applied []int, pending []int, err error) {
	if err := s.initMigrationsTable(); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	appliedSet := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, nil, err
		}
		applied = append(applied, v)
		appliedSet[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for _, m := range migrations {
		if !appliedSet[m.Version] {
			pending = append(pending, m.Version)
		}
	}

	return applied, pending, nil
}

// GetDB returns the underlying database connection for advanced operations
func (s *Store) GetDB() *sql.DB {
	return s.db
}
