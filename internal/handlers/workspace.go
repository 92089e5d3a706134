package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/dto"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/services"
)

// WorkspaceHandler serves workspace endpoints.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	log              *slog.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService, log *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		log:              log,
	}
}

// ListWorkspaces returns the workspaces the caller is a member of
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.workspaceService.ListForUser(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.NewList(memberships, int64(len(memberships)), func(m services.WorkspaceMembership) dto.WorkspaceDTO {
		return dto.ToWorkspaceDTO(m.Workspace, m.Role)
	}))
}

// CreateWorkspace creates a workspace with the caller as its first ADMIN
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	form, err := bindImageForm(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer form.Close()

	input := services.CreateWorkspaceInput{Image: form.Image, ImageURL: form.ImageURL}
	if form.Name != nil {
		input.Name = *form.Name
	}

	workspace, member, err := h.workspaceService.Create(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToWorkspaceDTO(*workspace, member.Role))
}

// GetWorkspace returns a workspace. The invite code is only shown to ADMINs.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(c.Request.Context(), ac)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToWorkspaceDTO(*workspace, ac.Member.Role))
}

// UpdateWorkspace changes the name or image of a workspace
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	form, err := bindImageForm(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer form.Close()

	workspace, err := h.workspaceService.Update(c.Request.Context(), ac, services.UpdateWorkspaceInput{
		Name:     form.Name,
		Image:    form.Image,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToWorkspaceDTO(*workspace, ac.Member.Role))
}

// DeleteWorkspace removes a workspace with everything in it
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), ac); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": ac.WorkspaceID})
}

// ResetInviteCode replaces the invite code. The old code stops working.
func (h *WorkspaceHandler) ResetInviteCode(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.ResetInviteCode(c.Request.Context(), ac)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToWorkspaceDTO(*workspace, ac.Member.Role))
}

// JoinWorkspace adds the caller as MEMBER when the invite code matches
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invite code is required")
		return
	}

	workspace, member, err := h.workspaceService.Join(c.Request.Context(), user, c.Param("workspaceId"), req.Code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToWorkspaceDTO(*workspace, member.Role))
}
