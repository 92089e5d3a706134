package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/board"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// ListTasks returns the workspace's tasks, newest first.
// Filters: projectId, assigneeId, status, dueDate, search.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		Search:     strings.TrimSpace(c.Query("search")),
		Pagination: utils.GetPaginationParams(c),
	}
	if projectID := c.Query("projectId"); projectID != "" {
		input.ProjectID = &projectID
	}
	if assigneeID := c.Query("assigneeId"); assigneeID != "" {
		input.AssigneeID = &assigneeID
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if dueDate := c.Query("dueDate"); dueDate != "" {
		d, err := parseDate(dueDate)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		input.DueDate = &d
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), ac, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.NewList(tasks, total, dto.ToTaskDTO))
}

// Board returns the five lanes, each ordered by position
func (h *TaskHandler) Board(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	var projectID *string
	if id := c.Query("projectId"); id != "" {
		projectID = &id
	}

	lanes, err := h.taskService.Board(c.Request.Context(), ac, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToLaneDTOs(lanes))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), ac, c.Param("taskId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task at the tail of its lane
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Name        string            `json:"name"`
		ProjectID   string            `json:"projectId"`
		AssigneeID  *string           `json:"assigneeId"`
		Description *string           `json:"description"`
		Status      models.TaskStatus `json:"status"`
		DueDate     *string           `json:"dueDate"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		Name:        req.Name,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		input.DueDate = &d
	}

	task, err := h.taskService.Create(c.Request.Context(), ac, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates the fields present in the body. A null description,
// dueDate or assigneeId clears the field.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := updateTaskInput(rawReq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), ac, c.Param("taskId"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskDTO(*task))
}

func updateTaskInput(rawReq map[string]any) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	name, _, err := stringField(rawReq, "name")
	if err != nil {
		return input, err
	}
	input.Name = name

	input.Description, input.ClearDescription, err = stringField(rawReq, "description")
	if err != nil {
		return input, err
	}

	input.AssigneeID, input.ClearAssignee, err = stringField(rawReq, "assigneeId")
	if err != nil {
		return input, err
	}

	projectID, _, err := stringField(rawReq, "projectId")
	if err != nil {
		return input, err
	}
	input.ProjectID = projectID

	status, _, err := stringField(rawReq, "status")
	if err != nil {
		return input, err
	}
	if status != nil {
		s := models.TaskStatus(*status)
		input.Status = &s
	}

	dueDate, clearDueDate, err := stringField(rawReq, "dueDate")
	if err != nil {
		return input, err
	}
	input.ClearDueDate = clearDueDate
	if dueDate != nil {
		d, err := parseDate(*dueDate)
		if err != nil {
			return input, err
		}
		input.DueDate = &d
	}

	return input, nil
}

// stringField reads an optional string. null reports cleared.
func stringField(raw map[string]any, key string) (*string, bool, error) {
	value, ok := raw[key]
	if !ok {
		return nil, false, nil
	}
	if value == nil {
		return nil, true, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, false, apierrors.Newf(apierrors.ErrValidation, "%s must be a string", key)
	}
	return &s, false, nil
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	taskID := c.Param("taskId")
	if err := h.taskService.Delete(c.Request.Context(), ac, taskID); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": taskID})
}

// MoveTask places a task between two neighbours of a lane
func (h *TaskHandler) MoveTask(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
		PrevID string            `json:"prevId"`
		NextID string            `json:"nextId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Move(c.Request.Context(), ac, c.Param("taskId"), services.MoveTaskInput{
		Status: req.Status,
		PrevID: req.PrevID,
		NextID: req.NextID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// BulkUpdateTasks writes final lane positions for a batch of tasks
func (h *TaskHandler) BulkUpdateTasks(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	type taskPosition struct {
		ID       string            `json:"id"`
		Status   models.TaskStatus `json:"status"`
		Position int64             `json:"position"`
	}
	var req struct {
		Tasks []taskPosition `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	moves := make([]board.Move, len(req.Tasks))
	for i, t := range req.Tasks {
		moves[i] = board.Move{TaskID: t.ID, Status: t.Status, Position: t.Position}
	}

	tasks, err := h.taskService.BulkUpdate(c.Request.Context(), ac, moves)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.NewList(tasks, int64(len(tasks)), dto.ToTaskDTO))
}

// GenerateTasks drafts tasks from free text using AI. Drafts are not saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	if _, ok := accessOf(c, h.log); !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.NewList(drafts, int64(len(drafts)), dto.ToGeneratedTaskDTO))
}
