package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/testutil"
)

func TestProjectService_CRUD(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "Owner", "owner@example.com")
	workspace, admin := testutil.CreateWorkspace(t, env.db, owner, "Acme", "ABC123")
	images := &recordingImages{}
	svc := NewProjectService(env.store, images, testutil.DiscardLogger())
	ctx := context.Background()
	ac := accessFor(owner, admin)

	project, err := svc.Create(ctx, ac, CreateProjectInput{
		Name:  "  Launch  ",
		Image: &ImageUpload{Name: "logo.png", Reader: strings.NewReader("png-bytes"), Size: 9, ContentType: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Launch", project.Name)
	require.NotNil(t, project.ImageURL)
	assert.Len(t, images.uploads, 1)

	renamed := "Relaunch"
	updated, err := svc.Update(ctx, ac, project.ID, UpdateProjectInput{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", updated.Name)
	assert.NotNil(t, updated.ImageURL)

	projects, err := svc.List(ctx, ac)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	testutil.CreateTask(t, env.db, project, "Task", models.TaskStatusTodo, 1000)
	require.NoError(t, svc.Delete(ctx, ac, project.ID))

	_, err = svc.Get(ctx, ac, project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Empty(t, testutil.LanePositions(t, env.db, workspace.ID, models.TaskStatusTodo))

	require.ErrorIs(t, svc.Delete(ctx, ac, project.ID), ErrProjectNotFound)
}

func TestProjectService_ScopedToWorkspace(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "Owner", "owner@example.com")
	_, admin := testutil.CreateWorkspace(t, env.db, owner, "Acme", "ABC123")
	other, _ := testutil.CreateWorkspace(t, env.db, owner, "Other", "OTHER1")
	foreign := testutil.CreateProject(t, env.db, other, "Foreign")
	svc := NewProjectService(env.store, nil, testutil.DiscardLogger())
	ac := accessFor(owner, admin)

	_, err := svc.Get(context.Background(), ac, foreign.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	name := "Stolen"
	_, err = svc.Update(context.Background(), ac, foreign.ID, UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.Create(context.Background(), ac, CreateProjectInput{Name: "   "})
	require.ErrorIs(t, err, apierrors.ErrValidation)

	url := "https://cdn.example.com/p.png"
	_, err = svc.Create(context.Background(), ac, CreateProjectInput{
		Name:  "With image",
		Image: &ImageUpload{Name: "p.png", Reader: strings.NewReader("x"), Size: 1, ContentType: "image/png"},
	})
	require.ErrorIs(t, err, ErrImagesDisabled)

	project, err := svc.Create(context.Background(), ac, CreateProjectInput{Name: "Linked", ImageURL: &url})
	require.NoError(t, err)
	require.NotNil(t, project.ImageURL)
	assert.Equal(t, url, *project.ImageURL)
}
