package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/dto"
	"github.com/yukikurage/workboard-api/internal/services"
)

// ProjectHandler serves project endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
	log            *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, log *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		log:            log,
	}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), ac)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.NewList(projects, int64(len(projects)), dto.ToProjectDTO))
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
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

	input := services.CreateProjectInput{Image: form.Image, ImageURL: form.ImageURL}
	if form.Name != nil {
		input.Name = *form.Name
	}

	project, err := h.projectService.Create(c.Request.Context(), ac, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), ac, c.Param("projectId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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

	project, err := h.projectService.Update(c.Request.Context(), ac, c.Param("projectId"), services.UpdateProjectInput{
		Name:     form.Name,
		Image:    form.Image,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ac, ok := accessOf(c, h.log)
	if !ok {
		return
	}

	projectID := c.Param("projectId")
	if err := h.projectService.Delete(c.Request.Context(), ac, projectID); err != nil {
		respondError(c, h.log, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": projectID})
}
