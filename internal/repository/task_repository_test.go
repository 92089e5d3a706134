package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/testutil"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTaskRepository_FindLanesOrdersByPosition(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	workspace, _ := testutil.CreateWorkspace(t, db, owner, "Acme", "ABC123")
	project := testutil.CreateProject(t, db, workspace, "Launch")

	testutil.CreateTask(t, db, project, "third", models.TaskStatusTodo, 3000)
	testutil.CreateTask(t, db, project, "first", models.TaskStatusTodo, 1000)
	testutil.CreateTask(t, db, project, "second", models.TaskStatusTodo, 2000)
	testutil.CreateTask(t, db, project, "done", models.TaskStatusDone, 1000)

	repo := repository.NewTaskRepository(db)
	tasks, err := repo.FindLanes(context.Background(), workspace.ID, models.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.Equal(t, "first", tasks[0].Name)
	require.Equal(t, "second", tasks[1].Name)
	require.Equal(t, "third", tasks[2].Name)

	none, err := repo.FindLanes(context.Background(), workspace.ID)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	workspace, admin := testutil.CreateWorkspace(t, db, owner, "Acme", "ABC123")
	launch := testutil.CreateProject(t, db, workspace, "Launch")
	docs := testutil.CreateProject(t, db, workspace, "Docs")

	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	write := testutil.CreateTask(t, db, docs, "Write guide", models.TaskStatusTodo, 1000)
	require.NoError(t, db.Model(write).Updates(map[string]any{"assignee_id": admin.ID, "due_date": due}).Error)
	testutil.CreateTask(t, db, launch, "Ship release", models.TaskStatusDone, 1000)
	testutil.CreateTask(t, db, launch, "Write changelog", models.TaskStatusTodo, 2000)

	// Another workspace never leaks into results
	other, _ := testutil.CreateWorkspace(t, db, owner, "Other", "ZZZ999")
	testutil.CreateTask(t, db, testutil.CreateProject(t, db, other, "Elsewhere"), "Write elsewhere", models.TaskStatusTodo, 1000)

	repo := repository.NewTaskRepository(db)
	ctx := context.Background()
	page := utils.NewPaginationParams(1, 20)

	tasks, total, err := repo.List(ctx, repository.TaskFilter{WorkspaceID: workspace.ID, Pagination: page})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, tasks, 3)

	tasks, total, err = repo.List(ctx, repository.TaskFilter{WorkspaceID: workspace.ID, Search: "write", Pagination: page})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, tasks, 2)

	tasks, _, err = repo.List(ctx, repository.TaskFilter{WorkspaceID: workspace.ID, AssigneeID: &admin.ID, Pagination: page})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, write.ID, tasks[0].ID)
	require.NotNil(t, tasks[0].Assignee)
	require.Equal(t, "Owner", tasks[0].Assignee.User.Name)

	from := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	tasks, _, err = repo.List(ctx, repository.TaskFilter{WorkspaceID: workspace.ID, DueDateFrom: &from, DueDateTo: &to, Pagination: page})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	status := models.TaskStatusDone
	tasks, _, err = repo.List(ctx, repository.TaskFilter{WorkspaceID: workspace.ID, ProjectID: &launch.ID, Status: &status, Pagination: page})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Ship release", tasks[0].Name)

	tasks, total, err = repo.List(ctx, repository.TaskFilter{WorkspaceID: workspace.ID, Pagination: utils.NewPaginationParams(2, 2)})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, tasks, 1)
}

func TestTaskRepository_ApplyPositionsInTransaction(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	workspace, _ := testutil.CreateWorkspace(t, db, owner, "Acme", "ABC123")
	project := testutil.CreateProject(t, db, workspace, "Launch")
	a := testutil.CreateTask(t, db, project, "A", models.TaskStatusTodo, 1000)
	b := testutil.CreateTask(t, db, project, "B", models.TaskStatusTodo, 2000)

	store := repository.NewStore(db)
	err := store.Transaction(context.Background(), func(tx *repository.Store) error {
		return tx.Tasks.ApplyPositions(context.Background(), workspace.ID, []repository.PositionUpdate{
			{TaskID: a.ID, Status: models.TaskStatusDone, Position: 1000},
			{TaskID: b.ID, Status: models.TaskStatusTodo, Position: 1500},
		})
	})
	require.NoError(t, err)

	require.Equal(t, map[string]int64{"A": 1000}, testutil.LanePositions(t, db, workspace.ID, models.TaskStatusDone))
	require.Equal(t, map[string]int64{"B": 1500}, testutil.LanePositions(t, db, workspace.ID, models.TaskStatusTodo))
}

func TestTaskRepository_ApplyPositionsUnknownTaskRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	workspace, _ := testutil.CreateWorkspace(t, db, owner, "Acme", "ABC123")
	project := testutil.CreateProject(t, db, workspace, "Launch")
	a := testutil.CreateTask(t, db, project, "A", models.TaskStatusTodo, 1000)

	store := repository.NewStore(db)
	err := store.Transaction(context.Background(), func(tx *repository.Store) error {
		return tx.Tasks.ApplyPositions(context.Background(), workspace.ID, []repository.PositionUpdate{
			{TaskID: a.ID, Status: models.TaskStatusTodo, Position: 5000},
			{TaskID: "missing", Status: models.TaskStatusTodo, Position: 6000},
		})
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.Equal(t, map[string]int64{"A": 1000}, testutil.LanePositions(t, db, workspace.ID, models.TaskStatusTodo))
}

func TestTaskRepository_ApplyPositionsRollsBackOnStoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	store := repository.NewStore(db)
	err = store.Transaction(context.Background(), func(tx *repository.Store) error {
		return tx.Tasks.ApplyPositions(context.Background(), "ws-1", []repository.PositionUpdate{
			{TaskID: "task-1", Status: models.TaskStatusTodo, Position: 1000},
			{TaskID: "task-2", Status: models.TaskStatusTodo, Position: 2000},
			{TaskID: "task-3", Status: models.TaskStatusTodo, Position: 3000},
		})
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "task-2")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ClearAssigneeAndCount(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	workspace, admin := testutil.CreateWorkspace(t, db, owner, "Acme", "ABC123")
	project := testutil.CreateProject(t, db, workspace, "Launch")

	a := testutil.CreateTask(t, db, project, "A", models.TaskStatusTodo, 1000)
	b := testutil.CreateTask(t, db, project, "B", models.TaskStatusDone, 1000)
	require.NoError(t, db.Model(&models.Task{}).Where("id IN ?", []string{a.ID, b.ID}).Update("assignee_id", admin.ID).Error)

	repo := repository.NewTaskRepository(db)
	ctx := context.Background()
	window := repository.TaskCountFilter{
		WorkspaceID: workspace.ID,
		CreatedFrom: time.Now().UTC().Add(-time.Hour),
		CreatedTo:   time.Now().UTC().Add(time.Hour),
	}

	assigned := window
	assigned.AssigneeID = &admin.ID
	count, err := repo.Count(ctx, assigned)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	done := models.TaskStatusDone
	incomplete := window
	incomplete.ExcludeStatus = &done
	count, err = repo.Count(ctx, incomplete)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, repo.ClearAssignee(ctx, workspace.ID, admin.ID))
	count, err = repo.Count(ctx, assigned)
	require.NoError(t, err)
	require.Zero(t, count)
}
