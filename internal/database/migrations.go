package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes that the model tags do not describe
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task list default ordering and analytics windows
		{"tasks", "idx_tasks_workspace_created", "workspace_id, created_at"},
		{"tasks", "idx_tasks_workspace_project", "workspace_id, project_id"},
		{"tasks", "idx_tasks_workspace_assignee", "workspace_id, assignee_id"},

		// Member listing
		{"members", "idx_members_workspace_created", "workspace_id, created_at"},

		// Project listing
		{"projects", "idx_projects_workspace_created", "workspace_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", slog.String("index", idx.name), slog.String("table", idx.table), slog.String("columns", idx.columns))
	}

	return nil
}
