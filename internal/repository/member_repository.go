package repository

import (
	"context"

	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create creates a new membership
func (r *GormMemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Omit("Workspace", "User").Create(member).Error
}

// FindByUser finds the membership of a user in a workspace
func (r *GormMemberRepository) FindByUser(ctx context.Context, workspaceID, userID string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByID finds a membership by ID within a workspace
func (r *GormMemberRepository) FindByID(ctx context.Context, workspaceID, id string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// List lists the members of a workspace
func (r *GormMemberRepository) List(ctx context.Context, workspaceID string, params utils.PaginationParams) ([]models.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{}).Scopes(database.InWorkspace(workspaceID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Member
	if err := query.Preload("User").
		Order("created_at ASC").
		Order("id ASC").
		Scopes(database.Paginate(params)).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// ListByUser lists every membership of a user
func (r *GormMemberRepository) ListByUser(ctx context.Context, userID string) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountAdmins counts the ADMIN members of a workspace
func (r *GormMemberRepository) CountAdmins(ctx context.Context, workspaceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("workspace_id = ? AND role = ?", workspaceID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// UpdateRole changes the role of a membership
func (r *GormMemberRepository) UpdateRole(ctx context.Context, workspaceID, id string, role models.MemberRole) error {
	return r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Update("role", role).Error
}

// Delete deletes a membership
func (r *GormMemberRepository) Delete(ctx context.Context, workspaceID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Delete(&models.Member{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
