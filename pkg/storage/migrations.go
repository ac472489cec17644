package storage

import (
	"fmt"
)

var sqliteMigrations = []string{
	// Migration 1: projects, expenses, milestones
	`CREATE TABLE IF NOT EXISTS projects (
		id                  TEXT PRIMARY KEY,
		owner_id            TEXT NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		project_value       TEXT NOT NULL,
		overhead_percentage TEXT NOT NULL DEFAULT '0',
		currency            TEXT NOT NULL DEFAULT 'USD',
		status              TEXT NOT NULL DEFAULT 'ACTIVE'
			CHECK(status IN ('DRAFT', 'ACTIVE', 'COMPLETED', 'ARCHIVED')),
		deadline            INTEGER NOT NULL,
		created_at          INTEGER NOT NULL,
		updated_at          INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);

	CREATE TABLE IF NOT EXISTS expenses (
		id                 TEXT PRIMARY KEY,
		project_id         TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		category           TEXT NOT NULL CHECK(category IN ('MATERIALS', 'MANPOWER', 'TOOLS', 'OTHER')),
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		estimated_cost     TEXT NOT NULL,
		actual_cost        TEXT,
		is_recurring       INTEGER NOT NULL DEFAULT 0,
		recurring_interval TEXT NOT NULL DEFAULT '',
		date_incurred      INTEGER,
		created_at         INTEGER NOT NULL,
		updated_at         INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_project ON expenses(project_id);

	CREATE TABLE IF NOT EXISTS milestones (
		id                    TEXT PRIMARY KEY,
		project_id            TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name                  TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		target_date           INTEGER NOT NULL,
		completion_percentage INTEGER NOT NULL DEFAULT 0,
		status                TEXT NOT NULL DEFAULT 'PENDING'
			CHECK(status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED', 'DELAYED')),
		created_at            INTEGER NOT NULL,
		updated_at            INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id);`,

	// Migration 2: notifications
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		type       TEXT NOT NULL,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'UNREAD' CHECK(status IN ('UNREAD', 'READ', 'ARCHIVED')),
		metadata   TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL,
		read_at    INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_dedup ON notifications(user_id, type, status, created_at);
	CREATE INDEX IF NOT EXISTS idx_notifications_inbox ON notifications(user_id, created_at);`,
}

var postgresMigrations = []string{
	// Migration 1: projects, expenses, milestones
	`CREATE TABLE IF NOT EXISTS projects (
		id                  TEXT PRIMARY KEY,
		owner_id            TEXT NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		project_value       NUMERIC(14, 2) NOT NULL,
		overhead_percentage NUMERIC(5, 2) NOT NULL DEFAULT 0,
		currency            TEXT NOT NULL DEFAULT 'USD',
		status              TEXT NOT NULL DEFAULT 'ACTIVE'
			CHECK(status IN ('DRAFT', 'ACTIVE', 'COMPLETED', 'ARCHIVED')),
		deadline            BIGINT NOT NULL,
		created_at          BIGINT NOT NULL,
		updated_at          BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);

	CREATE TABLE IF NOT EXISTS expenses (
		id                 TEXT PRIMARY KEY,
		project_id         TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		category           TEXT NOT NULL CHECK(category IN ('MATERIALS', 'MANPOWER', 'TOOLS', 'OTHER')),
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		estimated_cost     NUMERIC(14, 2) NOT NULL,
		actual_cost        NUMERIC(14, 2),
		is_recurring       BOOLEAN NOT NULL DEFAULT FALSE,
		recurring_interval TEXT NOT NULL DEFAULT '',
		date_incurred      BIGINT,
		created_at         BIGINT NOT NULL,
		updated_at         BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_project ON expenses(project_id);

	CREATE TABLE IF NOT EXISTS milestones (
		id                    TEXT PRIMARY KEY,
		project_id            TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name                  TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		target_date           BIGINT NOT NULL,
		completion_percentage INTEGER NOT NULL DEFAULT 0,
		status                TEXT NOT NULL DEFAULT 'PENDING'
			CHECK(status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED', 'DELAYED')),
		created_at            BIGINT NOT NULL,
		updated_at            BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id);`,

	// Migration 2: notifications
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		type       TEXT NOT NULL,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'UNREAD' CHECK(status IN ('UNREAD', 'READ', 'ARCHIVED')),
		metadata   JSONB NOT NULL DEFAULT '{}',
		created_at BIGINT NOT NULL,
		read_at    BIGINT
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_dedup ON notifications(user_id, type, status, created_at);
	CREATE INDEX IF NOT EXISTS idx_notifications_inbox ON notifications(user_id, created_at);`,
}

// runMigrations applies pending schema migrations.
func (s *Store) runMigrations() error {
	// Ensure migration tracking table exists
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at BIGINT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	migrations := s.dialect.migrations
	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(s.rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"), i+1, toMillis(s.now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
