package dto

import (
	"time"

	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspaceId"`
	ProjectID   string            `json:"projectId"`
	AssigneeID  *string           `json:"assigneeId"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Position    int64             `json:"position"`
	DueDate     *time.Time        `json:"dueDate"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Project     *ProjectDTO       `json:"project,omitempty"`
	Assignee    *MemberDTO        `json:"assignee,omitempty"`
}

// LaneDTO is one board column
type LaneDTO struct {
	Status models.TaskStatus `json:"status"`
	Tasks  []TaskDTO         `json:"tasks"`
}

// GeneratedTaskDTO is an AI task draft
type GeneratedTaskDTO struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		WorkspaceID: task.WorkspaceID,
		ProjectID:   task.ProjectID,
		AssigneeID:  task.AssigneeID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		Position:    task.Position,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include project if preloaded
	if task.Project.ID != "" {
		project := ToProjectDTO(task.Project)
		dto.Project = &project
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != "" {
		assignee := ToMemberDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToLaneDTOs converts board lanes
func ToLaneDTOs(lanes []services.Lane) []LaneDTO {
	dtos := make([]LaneDTO, len(lanes))
	for i, lane := range lanes {
		dtos[i] = LaneDTO{Status: lane.Status, Tasks: ToTaskDTOs(lane.Tasks)}
	}
	return dtos
}

// ToGeneratedTaskDTO converts an AI task draft
func ToGeneratedTaskDTO(task services.GeneratedTask) GeneratedTaskDTO {
	return GeneratedTaskDTO{
		Name:        task.Name,
		Description: task.Description,
		DueDate:     task.DueDate,
	}
}
