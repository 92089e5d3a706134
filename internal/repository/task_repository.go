package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID within a workspace
func (r *GormTaskRepository) FindByID(ctx context.Context, workspaceID, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Assignee.User").
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.workspace_id = ?", filter.WorkspaceID)

	// Apply filters
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(tasks.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id ASC")
	if err := listQuery.
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Project").
		Preload("Assignee.User").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListBoard retrieves every task of a workspace ordered by position
func (r *GormTaskRepository) ListBoard(ctx context.Context, workspaceID string, projectID *string) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Scopes(database.InWorkspace(workspaceID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var tasks []models.Task
	if err := query.
		Preload("Project").
		Preload("Assignee.User").
		Order("position ASC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindLanes retrieves the tasks in the given lanes ordered by position
func (r *GormTaskRepository) FindLanes(ctx context.Context, workspaceID string, statuses ...models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	if len(statuses) == 0 {
		return tasks, nil
	}
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND status IN ?", workspaceID, statuses).
		Order("position ASC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByIDs retrieves the tasks with the given IDs within a workspace
func (r *GormTaskRepository) ListByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.Task, error) {
	var tasks []models.Task
	if len(ids) == 0 {
		return tasks, nil
	}
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id IN ?", workspaceID, ids).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates the given columns of a task
func (r *GormTaskRepository) Update(ctx context.Context, workspaceID, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Updates(fields).Error
}

// ApplyPositions writes lane and position for every update. Callers run it
// inside Store.Transaction so a failure leaves every lane untouched.
func (r *GormTaskRepository) ApplyPositions(ctx context.Context, workspaceID string, updates []PositionUpdate) error {
	db := r.db.WithContext(ctx)
	for _, u := range updates {
		result := db.Model(&models.Task{}).
			Where("id = ? AND workspace_id = ?", u.TaskID, workspaceID).
			Updates(map[string]any{
				"status":   u.Status,
				"position": u.Position,
			})
		if result.Error != nil {
			return fmt.Errorf("update position of task %s: %w", u.TaskID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("update position of task %s: %w", u.TaskID, gorm.ErrRecordNotFound)
		}
	}
	return nil
}

// ClearAssignee unassigns every task assigned to a member
func (r *GormTaskRepository) ClearAssignee(ctx context.Context, workspaceID, memberID string) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("workspace_id = ? AND assignee_id = ?", workspaceID, memberID).
		Update("assignee_id", nil).Error
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, workspaceID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count counts tasks matching filter
func (r *GormTaskRepository) Count(ctx context.Context, filter TaskCountFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("workspace_id = ?", filter.WorkspaceID).
		Where("created_at >= ? AND created_at < ?", filter.CreatedFrom, filter.CreatedTo)

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ExcludeStatus != nil {
		query = query.Where("status <> ?", *filter.ExcludeStatus)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date IS NOT NULL AND due_date < ?", *filter.DueBefore)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
