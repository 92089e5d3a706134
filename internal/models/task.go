package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "BACKLOG"
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists the board lanes in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

// IsValid reports whether s names one of the five lanes.
func (s TaskStatus) IsValid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkspaceID string     `gorm:"type:varchar(36);not null;index:idx_tasks_lane,priority:1" json:"workspace_id"`
	ProjectID   string     `gorm:"type:varchar(36);not null;index" json:"project_id"`
	AssigneeID  *string    `gorm:"type:varchar(36);index" json:"assignee_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'TODO';index:idx_tasks_lane,priority:2" json:"status"`
	Position    int64      `gorm:"not null;index:idx_tasks_lane,priority:3" json:"position"`
	DueDate     *time.Time `gorm:"index" json:"due_date"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Project  Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignee *Member `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
