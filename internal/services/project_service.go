package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yukikurage/workboard-api/internal/access"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/storage"
	"gorm.io/gorm"
)

var ErrProjectNotFound = apierrors.New(apierrors.ErrNotFound, "Project not found")

// ProjectService provides business logic for projects.
type ProjectService struct {
	store  *repository.Store
	images storage.ImageStore
	log    *slog.Logger
}

// NewProjectService creates a new ProjectService. images may be nil.
func NewProjectService(store *repository.Store, images storage.ImageStore, log *slog.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		images: images,
		log:    log,
	}
}

// List returns the projects of the caller's workspace, newest first.
func (s *ProjectService) List(ctx context.Context, ac *access.Context) ([]models.Project, error) {
	projects, err := s.store.Projects.List(ctx, ac.WorkspaceID)
	if err != nil {
		return nil, apierrors.StoreFailure("list projects", err)
	}
	return projects, nil
}

// CreateProjectInput represents parameters to create a project.
type CreateProjectInput struct {
	Name     string
	Image    *ImageUpload
	ImageURL *string
}

// Create creates a project in the caller's workspace.
func (s *ProjectService) Create(ctx context.Context, ac *access.Context, input CreateProjectInput) (*models.Project, error) {
	name, err := normalizeName(input.Name, "Project name")
	if err != nil {
		return nil, err
	}
	imageURL, err := resolveImage(ctx, s.images, input.Image, input.ImageURL)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		WorkspaceID: ac.WorkspaceID,
		Name:        name,
		ImageURL:    imageURL,
	}
	if err := s.store.Projects.Create(ctx, project); err != nil {
		return nil, apierrors.StoreFailure("create project", err)
	}
	return project, nil
}

// Get returns a project of the caller's workspace.
func (s *ProjectService) Get(ctx context.Context, ac *access.Context, projectID string) (*models.Project, error) {
	project, err := s.store.Projects.FindByID(ctx, ac.WorkspaceID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.StoreFailure("find project", err)
	}
	return project, nil
}

// UpdateProjectInput represents parameters to update a project. Nil fields
// are left unchanged.
type UpdateProjectInput struct {
	Name     *string
	Image    *ImageUpload
	ImageURL *string
}

// Update changes the name or image of a project.
func (s *ProjectService) Update(ctx context.Context, ac *access.Context, projectID string, input UpdateProjectInput) (*models.Project, error) {
	if _, err := s.Get(ctx, ac, projectID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		name, err := normalizeName(*input.Name, "Project name")
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if input.Image != nil || input.ImageURL != nil {
		imageURL, err := resolveImage(ctx, s.images, input.Image, input.ImageURL)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = imageURL
	}

	if len(fields) > 0 {
		if err := s.store.Projects.Update(ctx, ac.WorkspaceID, projectID, fields); err != nil {
			return nil, apierrors.StoreFailure("update project", err)
		}
	}
	return s.Get(ctx, ac, projectID)
}

// Delete removes a project and its tasks.
func (s *ProjectService) Delete(ctx context.Context, ac *access.Context, projectID string) error {
	if err := s.store.Projects.Delete(ctx, ac.WorkspaceID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return apierrors.StoreFailure("delete project", err)
	}

	s.log.InfoContext(ctx, "project deleted",
		slog.String("workspace_id", ac.WorkspaceID),
		slog.String("project_id", projectID),
	)
	return nil
}
