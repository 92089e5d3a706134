package models

import (
	"time"
)

type Workspace struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID    string    `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	ImageURL   *string   `gorm:"type:text" json:"image_url"`
	InviteCode string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Members  []Member  `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Projects []Project `gorm:"foreignKey:WorkspaceID" json:"projects,omitempty"`
	Tasks    []Task    `gorm:"foreignKey:WorkspaceID" json:"tasks,omitempty"`
}
