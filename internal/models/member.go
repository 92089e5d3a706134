package models

import "time"

type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// IsValid reports whether r is one of the known roles.
func (r MemberRole) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member is a user's role-bearing association with one workspace.
// The (workspace_id, user_id) pair is unique.
type Member struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkspaceID string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_members_workspace_user,priority:1" json:"workspace_id"`
	UserID      string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_members_workspace_user,priority:2;index" json:"user_id"`
	Role        MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt   time.Time  `json:"created_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
