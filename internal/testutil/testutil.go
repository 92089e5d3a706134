// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestDB opens a migrated in-memory SQLite database. The pool is limited
// to one connection so every query sees the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        database.NowUTC,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db, DiscardLogger()))
	return db
}

// CreateUser inserts a user with the given email.
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email, PasswordHash: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateWorkspace inserts a workspace owned by owner, who becomes its ADMIN.
func CreateWorkspace(t *testing.T, db *gorm.DB, owner *models.User, name, inviteCode string) (*models.Workspace, *models.Member) {
	t.Helper()

	workspace := &models.Workspace{Name: name, OwnerID: owner.ID, InviteCode: inviteCode}
	require.NoError(t, db.Omit("Members", "Projects", "Tasks").Create(workspace).Error)

	admin := AddMember(t, db, workspace, owner, models.RoleAdmin)
	return workspace, admin
}

// AddMember inserts a membership.
func AddMember(t *testing.T, db *gorm.DB, workspace *models.Workspace, user *models.User, role models.MemberRole) *models.Member {
	t.Helper()

	member := &models.Member{WorkspaceID: workspace.ID, UserID: user.ID, Role: role}
	require.NoError(t, db.Omit("Workspace", "User").Create(member).Error)
	return member
}

// CreateProject inserts a project.
func CreateProject(t *testing.T, db *gorm.DB, workspace *models.Workspace, name string) *models.Project {
	t.Helper()

	project := &models.Project{WorkspaceID: workspace.ID, Name: name}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task at an explicit lane position.
func CreateTask(t *testing.T, db *gorm.DB, project *models.Project, name string, status models.TaskStatus, position int64) *models.Task {
	t.Helper()

	task := &models.Task{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Name:        name,
		Status:      status,
		Position:    position,
	}
	require.NoError(t, db.Omit("Project", "Assignee").Create(task).Error)
	return task
}

// LanePositions returns task name to position for one lane.
func LanePositions(t *testing.T, db *gorm.DB, workspaceID string, status models.TaskStatus) map[string]int64 {
	t.Helper()

	var tasks []models.Task
	require.NoError(t, db.Where("workspace_id = ? AND status = ?", workspaceID, status).Find(&tasks).Error)

	positions := make(map[string]int64, len(tasks))
	for _, task := range tasks {
		positions[task.Name] = task.Position
	}
	return positions
}
