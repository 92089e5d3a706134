package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/board"
	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = apierrors.New(apierrors.ErrNotFound, "Task not found")
	ErrInvalidStatus          = apierrors.New(apierrors.ErrValidation, "Invalid task status")
	ErrUnknownProject         = apierrors.New(apierrors.ErrValidation, "Project does not belong to this workspace")
	ErrUnknownAssignee        = apierrors.New(apierrors.ErrValidation, "Assignee is not a member of this workspace")
	ErrAIServiceNotConfigured = apierrors.New(apierrors.ErrServiceNotConfigured, "AI service is not configured")
	ErrAINoTasksGenerated     = apierrors.New(apierrors.ErrValidation, "AI did not generate any tasks")
	ErrAINoValidTasks         = apierrors.New(apierrors.ErrValidation, "No valid tasks could be created from AI output")
	ErrGenerateTextRequired   = apierrors.New(apierrors.ErrValidation, "Text is required")
	ErrAIUnavailable          = apierrors.New(apierrors.ErrServiceNotConfigured, "AI service is unavailable")
)

// TaskService handles task business logic
type TaskService struct {
	store     *repository.Store
	aiService *AIService
	log       *slog.Logger
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(store *repository.Store, aiService *AIService, log *slog.Logger) *TaskService {
	return &TaskService{
		store:     store,
		aiService: aiService,
		log:       log,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID  *string
	AssigneeID *string
	Status     *models.TaskStatus
	DueDate    *time.Time
	Search     string
	Pagination utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name        string
	ProjectID   string
	AssigneeID  *string
	Description *string
	Status      models.TaskStatus
	DueDate     *time.Time
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged and the Clear flags reset optional fields.
type UpdateTaskInput struct {
	Name             *string
	Description      *string
	ClearDescription bool
	DueDate          *time.Time
	ClearDueDate     bool
	AssigneeID       *string
	ClearAssignee    bool
	ProjectID        *string
	Status           *models.TaskStatus
}

// MoveTaskInput places a task between two neighbours of a lane
type MoveTaskInput struct {
	Status models.TaskStatus
	PrevID string
	NextID string
}

// Lane is one board column.
type Lane struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

// List returns the tasks of the caller's workspace matching input
func (s *TaskService) List(ctx context.Context, ac *access.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}

	filter := repository.TaskFilter{
		WorkspaceID: ac.WorkspaceID,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
		Status:      input.Status,
		Search:      input.Search,
		Pagination:  input.Pagination,
	}
	if input.DueDate != nil {
		d := input.DueDate.UTC()
		startOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.store.Tasks.List(ctx, filter)
	if err != nil {
		return nil, 0, apierrors.StoreFailure("list tasks", err)
	}
	return tasks, total, nil
}

// Board returns all five lanes in display order, each sorted by position
func (s *TaskService) Board(ctx context.Context, ac *access.Context, projectID *string) ([]Lane, error) {
	tasks, err := s.store.Tasks.ListBoard(ctx, ac.WorkspaceID, projectID)
	if err != nil {
		return nil, apierrors.StoreFailure("load board", err)
	}

	byStatus := make(map[models.TaskStatus][]models.Task, len(models.TaskStatuses))
	for _, task := range tasks {
		byStatus[task.Status] = append(byStatus[task.Status], task)
	}

	lanes := make([]Lane, 0, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		laneTasks := byStatus[status]
		if laneTasks == nil {
			laneTasks = []models.Task{}
		}
		lanes = append(lanes, Lane{Status: status, Tasks: laneTasks})
	}
	return lanes, nil
}

// Create creates a task at the tail of its lane
func (s *TaskService) Create(ctx context.Context, ac *access.Context, input CreateTaskInput) (*models.Task, error) {
	name, err := normalizeName(input.Name, "Task name")
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		WorkspaceID: ac.WorkspaceID,
		Name:        name,
		Description: trimOptional(input.Description),
		Status:      status,
		DueDate:     input.DueDate,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureProject(ctx, tx, ac.WorkspaceID, input.ProjectID); err != nil {
			return err
		}
		task.ProjectID = input.ProjectID

		assigneeID := ac.Member.ID
		if input.AssigneeID != nil && *input.AssigneeID != "" {
			assigneeID = *input.AssigneeID
		}
		if err := ensureAssignee(ctx, tx, ac.WorkspaceID, assigneeID); err != nil {
			return err
		}
		task.AssigneeID = &assigneeID

		plan, err := s.planTail(ctx, tx, ac.WorkspaceID, status, task.ID)
		if err != nil {
			return err
		}
		task.Position = plan.Position

		if err := tx.Tasks.ApplyPositions(ctx, ac.WorkspaceID, otherUpdates(plan, task.ID, status)); err != nil {
			return apierrors.StoreFailure("renumber lane", err)
		}
		if err := tx.Tasks.Create(ctx, task); err != nil {
			return apierrors.StoreFailure("create task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, ac, task.ID)
}

// Get returns a task of the caller's workspace
func (s *TaskService) Get(ctx context.Context, ac *access.Context, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, ac.WorkspaceID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.StoreFailure("find task", err)
	}
	return task, nil
}

// Update changes task fields. A status change puts the task at the tail of
// its new lane.
func (s *TaskService) Update(ctx context.Context, ac *access.Context, taskID string, input UpdateTaskInput) (*models.Task, error) {
	fields := map[string]any{}
	if input.Name != nil {
		name, err := normalizeName(*input.Name, "Task name")
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if input.ClearDescription {
		fields["description"] = nil
	} else if input.Description != nil {
		fields["description"] = trimOptional(input.Description)
	}
	if input.ClearDueDate {
		fields["due_date"] = nil
	} else if input.DueDate != nil {
		fields["due_date"] = *input.DueDate
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.FindByID(ctx, ac.WorkspaceID, taskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return apierrors.StoreFailure("find task", err)
		}

		if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
			if err := ensureProject(ctx, tx, ac.WorkspaceID, *input.ProjectID); err != nil {
				return err
			}
			fields["project_id"] = *input.ProjectID
		}

		if input.ClearAssignee {
			fields["assignee_id"] = nil
		} else if input.AssigneeID != nil {
			if err := ensureAssignee(ctx, tx, ac.WorkspaceID, *input.AssigneeID); err != nil {
				return err
			}
			fields["assignee_id"] = *input.AssigneeID
		}

		if input.Status != nil && *input.Status != task.Status {
			plan, err := s.planTail(ctx, tx, ac.WorkspaceID, *input.Status, task.ID)
			if err != nil {
				return err
			}
			if err := tx.Tasks.ApplyPositions(ctx, ac.WorkspaceID, positionUpdates(plan, *input.Status)); err != nil {
				return apierrors.StoreFailure("move task", err)
			}
		}

		if len(fields) == 0 {
			return nil
		}
		if err := tx.Tasks.Update(ctx, ac.WorkspaceID, taskID, fields); err != nil {
			return apierrors.StoreFailure("update task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, ac, taskID)
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, ac *access.Context, taskID string) error {
	if err := s.store.Tasks.Delete(ctx, ac.WorkspaceID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return apierrors.StoreFailure("delete task", err)
	}
	return nil
}

// Move places a task between prevID and nextID of the target lane. Only the
// target lane is read, so a lane change leaves the source lane's gaps alone.
func (s *TaskService) Move(ctx context.Context, ac *access.Context, taskID string, input MoveTaskInput) (*models.Task, error) {
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Tasks.FindByID(ctx, ac.WorkspaceID, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return apierrors.StoreFailure("find task", err)
		}

		lane, err := tx.Tasks.FindLanes(ctx, ac.WorkspaceID, input.Status)
		if err != nil {
			return apierrors.StoreFailure("load lane", err)
		}

		plan, err := board.PlanMove(board.SlotsOf(lane), taskID, input.PrevID, input.NextID)
		if err != nil {
			return err
		}
		if plan.Renumbered {
			s.log.InfoContext(ctx, "lane renumbered",
				slog.String("workspace_id", ac.WorkspaceID),
				slog.String("status", string(input.Status)),
				slog.Int("tasks", len(plan.Updates)),
			)
		}

		if err := tx.Tasks.ApplyPositions(ctx, ac.WorkspaceID, positionUpdates(plan, input.Status)); err != nil {
			return apierrors.StoreFailure("move task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, ac, taskID)
}

// BulkUpdate writes a batch of final lane positions atomically. Nothing is
// written when any move is rejected.
func (s *TaskService) BulkUpdate(ctx context.Context, ac *access.Context, moves []board.Move) ([]models.Task, error) {
	if err := board.CheckBatchSize(len(moves)); err != nil {
		return nil, err
	}

	ids := board.TaskIDs(moves)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		tasks, err := tx.Tasks.ListByIDs(ctx, ac.WorkspaceID, ids)
		if err != nil {
			return apierrors.StoreFailure("load tasks", err)
		}
		found := make(map[string]models.Task, len(tasks))
		for _, task := range tasks {
			found[task.ID] = task
		}

		occupants, err := tx.Tasks.FindLanes(ctx, ac.WorkspaceID, board.AffectedStatuses(moves)...)
		if err != nil {
			return apierrors.StoreFailure("load lanes", err)
		}

		if err := board.ValidateBatch(ac.WorkspaceID, moves, found, occupants); err != nil {
			return err
		}

		updates := make([]repository.PositionUpdate, 0, len(moves))
		for _, move := range moves {
			updates = append(updates, repository.PositionUpdate{
				TaskID:   move.TaskID,
				Status:   move.Status,
				Position: move.Position,
			})
		}
		if err := tx.Tasks.ApplyPositions(ctx, ac.WorkspaceID, updates); err != nil {
			return apierrors.StoreFailure("apply batch", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks.ListByIDs(ctx, ac.WorkspaceID, ids)
	if err != nil {
		return nil, apierrors.StoreFailure("load tasks", err)
	}
	return tasks, nil
}

// GenerateTasks uses AI to draft tasks from text. Drafts are not persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrGenerateTextRequired
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		s.log.ErrorContext(ctx, "task generation failed", slog.Any("error", err))
		return nil, ErrAIUnavailable
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Name = strings.TrimSpace(aiTask.Name)
		if aiTask.Name == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// planTail computes the tail position of a lane for taskID
func (s *TaskService) planTail(ctx context.Context, tx *repository.Store, workspaceID string, status models.TaskStatus, taskID string) (board.Plan, error) {
	lane, err := tx.Tasks.FindLanes(ctx, workspaceID, status)
	if err != nil {
		return board.Plan{}, apierrors.StoreFailure("load lane", err)
	}
	plan, err := board.Tail(board.SlotsOf(lane), taskID)
	if err != nil {
		return board.Plan{}, err
	}
	if plan.Renumbered {
		s.log.InfoContext(ctx, "lane renumbered",
			slog.String("workspace_id", workspaceID),
			slog.String("status", string(status)),
			slog.Int("tasks", len(plan.Updates)),
		)
	}
	return plan, nil
}

func positionUpdates(plan board.Plan, status models.TaskStatus) []repository.PositionUpdate {
	updates := make([]repository.PositionUpdate, 0, len(plan.Updates))
	for _, slot := range plan.Updates {
		updates = append(updates, repository.PositionUpdate{
			TaskID:   slot.TaskID,
			Status:   status,
			Position: slot.Position,
		})
	}
	return updates
}

// otherUpdates drops the slot of a task that does not exist yet
func otherUpdates(plan board.Plan, taskID string, status models.TaskStatus) []repository.PositionUpdate {
	updates := positionUpdates(plan, status)
	kept := updates[:0]
	for _, u := range updates {
		if u.TaskID != taskID {
			kept = append(kept, u)
		}
	}
	return kept
}

func ensureProject(ctx context.Context, tx *repository.Store, workspaceID, projectID string) error {
	if projectID == "" {
		return ErrUnknownProject
	}
	if _, err := tx.Projects.FindByID(ctx, workspaceID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownProject
		}
		return apierrors.StoreFailure("find project", err)
	}
	return nil
}

func ensureAssignee(ctx context.Context, tx *repository.Store, workspaceID, memberID string) error {
	if _, err := tx.Members.FindByID(ctx, workspaceID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownAssignee
		}
		return apierrors.StoreFailure("find assignee", err)
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
