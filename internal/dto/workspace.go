package dto

import (
	"time"

	"github.com/yukikurage/workboard-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkspaceDTO represents a workspace in API responses. InviteCode is only
// set for ADMIN callers.
type WorkspaceDTO struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	OwnerID    string            `json:"ownerId"`
	ImageURL   *string           `json:"imageUrl"`
	InviteCode string            `json:"inviteCode,omitempty"`
	Role       models.MemberRole `json:"role,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// MemberDTO represents a membership together with its user
type MemberDTO struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspaceId"`
	UserID      string            `json:"userId"`
	Role        models.MemberRole `json:"role"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToWorkspaceDTO converts a Workspace model seen by a caller with role
func ToWorkspaceDTO(workspace models.Workspace, role models.MemberRole) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:        workspace.ID,
		Name:      workspace.Name,
		OwnerID:   workspace.OwnerID,
		ImageURL:  workspace.ImageURL,
		Role:      role,
		CreatedAt: workspace.CreatedAt,
		UpdatedAt: workspace.UpdatedAt,
	}
	if role == models.RoleAdmin {
		dto.InviteCode = workspace.InviteCode
	}
	return dto
}

// ToMemberDTO converts a Member model. The user is included if preloaded.
func ToMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{
		ID:          member.ID,
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        member.Role,
		Name:        member.User.Name,
		Email:       member.User.Email,
		CreatedAt:   member.CreatedAt,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		WorkspaceID: project.WorkspaceID,
		Name:        project.Name,
		ImageURL:    project.ImageURL,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
