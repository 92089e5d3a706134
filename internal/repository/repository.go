package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// Create creates a new workspace
	Create(ctx context.Context, workspace *models.Workspace) error

	// FindByID finds a workspace by ID
	FindByID(ctx context.Context, id string) (*models.Workspace, error)

	// InviteCodeExists reports whether any workspace uses code
	InviteCodeExists(ctx context.Context, code string) (bool, error)

	// ListForUser lists the workspaces a user belongs to, newest first
	ListForUser(ctx context.Context, userID string) ([]models.Workspace, error)

	// Update updates the given columns of a workspace
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete deletes a workspace and everything it owns
	Delete(ctx context.Context, id string) error
}

// MemberRepository defines the interface for membership data access
type MemberRepository interface {
	// Create creates a new membership
	Create(ctx context.Context, member *models.Member) error

	// FindByUser finds the membership of a user in a workspace
	FindByUser(ctx context.Context, workspaceID, userID string) (*models.Member, error)

	// FindByID finds a membership by ID within a workspace
	FindByID(ctx context.Context, workspaceID, id string) (*models.Member, error)

	// List lists the members of a workspace, oldest first, with users preloaded
	List(ctx context.Context, workspaceID string, params utils.PaginationParams) ([]models.Member, int64, error)

	// ListByUser lists every membership of a user
	ListByUser(ctx context.Context, userID string) ([]models.Member, error)

	// CountAdmins counts the ADMIN members of a workspace
	CountAdmins(ctx context.Context, workspaceID string) (int64, error)

	// UpdateRole changes the role of a membership
	UpdateRole(ctx context.Context, workspaceID, id string, role models.MemberRole) error

	// Delete deletes a membership
	Delete(ctx context.Context, workspaceID, id string) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID within a workspace
	FindByID(ctx context.Context, workspaceID, id string) (*models.Project, error)

	// List lists the projects of a workspace, newest first
	List(ctx context.Context, workspaceID string) ([]models.Project, error)

	// Update updates the given columns of a project
	Update(ctx context.Context, workspaceID, id string, fields map[string]any) error

	// Delete deletes a project and its tasks
	Delete(ctx context.Context, workspaceID, id string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID within a workspace, with project and assignee preloaded
	FindByID(ctx context.Context, workspaceID, id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListBoard retrieves every task of a workspace ordered by lane and position
	ListBoard(ctx context.Context, workspaceID string, projectID *string) ([]models.Task, error)

	// FindLanes retrieves the tasks in the given lanes ordered by position
	FindLanes(ctx context.Context, workspaceID string, statuses ...models.TaskStatus) ([]models.Task, error)

	// ListByIDs retrieves the tasks with the given IDs within a workspace
	ListByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.Task, error)

	// Update updates the given columns of a task
	Update(ctx context.Context, workspaceID, id string, fields map[string]any) error

	// ApplyPositions writes lane and position for every update
	ApplyPositions(ctx context.Context, workspaceID string, updates []PositionUpdate) error

	// ClearAssignee unassigns every task assigned to a member
	ClearAssignee(ctx context.Context, workspaceID, memberID string) error

	// Delete deletes a task
	Delete(ctx context.Context, workspaceID, id string) error

	// Count counts tasks matching filter
	Count(ctx context.Context, filter TaskCountFilter) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceID string
	ProjectID   *string
	AssigneeID  *string
	Status      *models.TaskStatus
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Search      string
	Pagination  utils.PaginationParams
}

// TaskCountFilter holds the conditions used by analytics counts
type TaskCountFilter struct {
	WorkspaceID   string
	ProjectID     *string
	AssigneeID    *string
	Status        *models.TaskStatus
	ExcludeStatus *models.TaskStatus
	CreatedFrom   time.Time
	CreatedTo     time.Time
	DueBefore     *time.Time
}

// PositionUpdate places one task at a lane position
type PositionUpdate struct {
	TaskID   string
	Status   models.TaskStatus
	Position int64
}
