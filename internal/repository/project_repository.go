package repository

import (
	"context"

	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by ID within a workspace
func (r *GormProjectRepository) FindByID(ctx context.Context, workspaceID, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List lists the projects of a workspace
func (r *GormProjectRepository) List(ctx context.Context, workspaceID string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Scopes(database.InWorkspace(workspaceID)).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates the given columns of a project
func (r *GormProjectRepository) Update(ctx context.Context, workspaceID, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Updates(fields).Error
}

// Delete deletes a project and its tasks in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, workspaceID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND workspace_id = ?", id, workspaceID).
			Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND workspace_id = ?", id, workspaceID).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
