package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/config"
	"github.com/yukikurage/workboard-api/internal/dto"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/session"
	"github.com/yukikurage/workboard-api/internal/testutil"
	"gorm.io/gorm"
)

type routerTestEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupRouterTestEnv(t *testing.T) routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	cfg := &config.Config{
		GinMode:       gin.TestMode,
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	}
	r := New(Dependencies{
		Config:   cfg,
		Log:      testutil.DiscardLogger(),
		Store:    repository.NewStore(db),
		Sessions: session.NewRedisStoreWithClient(client, time.Hour),
	})

	return routerTestEnv{router: r, db: db}
}

func (env routerTestEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

// signUp registers a user and returns a session token.
func (env routerTestEnv) signUp(t *testing.T, name, email string) string {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func (env routerTestEnv) createWorkspace(t *testing.T, token, name string) dto.WorkspaceDTO {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/workspaces", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var workspace dto.WorkspaceDTO
	decodeData(t, w, &workspace)
	return workspace
}

func (env routerTestEnv) createTask(t *testing.T, token, workspaceID string, body map[string]any) dto.TaskDTO {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/workspaces/"+workspaceID+"/tasks", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	decodeData(t, w, &task)
	return task
}

func TestRouter_Health(t *testing.T) {
	env := setupRouterTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AuthFlow(t *testing.T) {
	env := setupRouterTestEnv(t)
	token := env.signUp(t, "Alice", "alice@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Other", "email": "ALICE@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.UserDTO
	decodeData(t, w, &me)
	assert.Equal(t, "alice@example.com", me.Email)

	w = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CookieSession(t *testing.T) {
	env := setupRouterTestEnv(t)
	env.signUp(t, "Alice", "alice@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NonMembersSeeNotFound(t *testing.T) {
	env := setupRouterTestEnv(t)
	owner := env.signUp(t, "Owner", "owner@example.com")
	outsider := env.signUp(t, "Outsider", "outsider@example.com")
	workspace := env.createWorkspace(t, owner, "Acme")
	base := "/api/workspaces/" + workspace.ID

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, base},
		{http.MethodPatch, base},
		{http.MethodDelete, base},
		{http.MethodPost, base + "/reset-invite-code"},
		{http.MethodGet, base + "/analytics"},
		{http.MethodGet, base + "/members"},
		{http.MethodDelete, base + "/members/some-member"},
		{http.MethodPatch, base + "/members/some-member"},
		{http.MethodGet, base + "/projects"},
		{http.MethodPost, base + "/projects"},
		{http.MethodGet, base + "/projects/some-project"},
		{http.MethodGet, base + "/tasks"},
		{http.MethodPost, base + "/tasks"},
		{http.MethodGet, base + "/tasks/board"},
		{http.MethodPost, base + "/tasks/bulk-update"},
		{http.MethodGet, base + "/tasks/some-task"},
		{http.MethodPost, base + "/tasks/some-task/move"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := env.do(t, route.method, route.path, outsider, map[string]any{})
			require.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "Workspace not found")

			w = env.do(t, route.method, route.path, "", map[string]any{})
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// An unknown workspace looks exactly the same
	w := env.do(t, http.MethodGet, "/api/workspaces/does-not-exist", owner, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Workspace not found")
}

func TestRouter_MemberPermissions(t *testing.T) {
	env := setupRouterTestEnv(t)
	owner := env.signUp(t, "Owner", "owner@example.com")
	bob := env.signUp(t, "Bob", "bob@example.com")
	workspace := env.createWorkspace(t, owner, "Acme")
	require.NotEmpty(t, workspace.InviteCode)
	base := "/api/workspaces/" + workspace.ID

	w := env.do(t, http.MethodPost, base+"/join", bob, map[string]string{"code": workspace.InviteCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, base, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var seen dto.WorkspaceDTO
	decodeData(t, w, &seen)
	assert.Empty(t, seen.InviteCode)
	assert.Equal(t, models.RoleMember, seen.Role)

	w = env.do(t, http.MethodGet, base+"/members", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members dto.ListDTO[dto.MemberDTO]
	decodeData(t, w, &members)
	require.EqualValues(t, 2, members.Total)
	ownerMemberID := members.Documents[0].ID

	adminOnly := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPatch, base, map[string]string{"name": "Renamed"}},
		{http.MethodDelete, base, nil},
		{http.MethodPost, base + "/reset-invite-code", nil},
		{http.MethodPatch, base + "/members/" + ownerMemberID, map[string]string{"role": "MEMBER"}},
	}
	for _, route := range adminOnly {
		w := env.do(t, route.method, route.path, bob, route.body)
		require.Equal(t, http.StatusForbidden, w.Code, route.method+" "+route.path)
	}

	// MEMBERs can work on projects and tasks
	w = env.do(t, http.MethodPost, base+"/projects", bob, map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project dto.ProjectDTO
	decodeData(t, w, &project)

	task := env.createTask(t, bob, workspace.ID, map[string]any{
		"name": "Write docs", "projectId": project.ID, "dueDate": "2026-05-01",
	})
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "Bob", task.Assignee.Name)

	w = env.do(t, http.MethodPatch, base+"/tasks/"+task.ID, bob, map[string]any{
		"name": "Write more docs", "dueDate": nil, "status": "IN_REVIEW",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	decodeData(t, w, &updated)
	assert.Equal(t, "Write more docs", updated.Name)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, models.TaskStatusInReview, updated.Status)

	w = env.do(t, http.MethodPatch, base+"/projects/"+project.ID, bob, map[string]string{"name": "Relaunch"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, base+"/tasks/"+task.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, base+"/tasks/"+task.ID, bob, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, base+"/projects/"+project.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_LastAdminCannotLeave(t *testing.T) {
	env := setupRouterTestEnv(t)
	owner := env.signUp(t, "Owner", "owner@example.com")
	workspace := env.createWorkspace(t, owner, "Acme")
	base := "/api/workspaces/" + workspace.ID

	w := env.do(t, http.MethodGet, base+"/members", owner, nil)
	var members dto.ListDTO[dto.MemberDTO]
	decodeData(t, w, &members)
	require.Len(t, members.Documents, 1)

	w = env.do(t, http.MethodDelete, base+"/members/"+members.Documents[0].ID, owner, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, base+"/members/"+members.Documents[0].ID, owner, map[string]string{"role": "MEMBER"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_InviteCodeReset(t *testing.T) {
	env := setupRouterTestEnv(t)
	owner := env.signUp(t, "Owner", "owner@example.com")
	carol := env.signUp(t, "Carol", "carol@example.com")
	workspace := env.createWorkspace(t, owner, "Acme")
	base := "/api/workspaces/" + workspace.ID

	w := env.do(t, http.MethodPost, base+"/reset-invite-code", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first dto.WorkspaceDTO
	decodeData(t, w, &first)

	w = env.do(t, http.MethodPost, base+"/reset-invite-code", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second dto.WorkspaceDTO
	decodeData(t, w, &second)

	require.NotEqual(t, workspace.InviteCode, first.InviteCode)
	require.NotEqual(t, first.InviteCode, second.InviteCode)

	w = env.do(t, http.MethodPost, base+"/join", carol, map[string]string{"code": first.InviteCode})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/join", carol, map[string]string{"code": second.InviteCode})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/join", carol, map[string]string{"code": second.InviteCode})
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/workspaces", carol, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine dto.ListDTO[dto.WorkspaceDTO]
	decodeData(t, w, &mine)
	require.Len(t, mine.Documents, 1)
	assert.Equal(t, workspace.ID, mine.Documents[0].ID)
}

func TestRouter_BoardMoves(t *testing.T) {
	env := setupRouterTestEnv(t)
	owner := env.signUp(t, "Owner", "owner@example.com")
	workspace := env.createWorkspace(t, owner, "Acme")
	base := "/api/workspaces/" + workspace.ID

	w := env.do(t, http.MethodPost, base+"/projects", owner, map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project dto.ProjectDTO
	decodeData(t, w, &project)

	a := env.createTask(t, owner, workspace.ID, map[string]any{"name": "A", "projectId": project.ID})
	b := env.createTask(t, owner, workspace.ID, map[string]any{"name": "B", "projectId": project.ID})
	c := env.createTask(t, owner, workspace.ID, map[string]any{"name": "C", "projectId": project.ID, "status": "BACKLOG"})
	require.EqualValues(t, 1000, a.Position)
	require.EqualValues(t, 2000, b.Position)
	require.EqualValues(t, 1000, c.Position)

	w = env.do(t, http.MethodPost, base+"/tasks/"+c.ID+"/move", owner, map[string]string{
		"status": "TODO", "prevId": a.ID, "nextId": b.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var moved dto.TaskDTO
	decodeData(t, w, &moved)
	assert.EqualValues(t, 1500, moved.Position)

	w = env.do(t, http.MethodPost, base+"/tasks/"+a.ID+"/move", owner, map[string]string{"status": "BACKLOG"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &moved)
	assert.EqualValues(t, 1000, moved.Position)

	// Colliding with C, which is not part of the batch
	w = env.do(t, http.MethodPost, base+"/tasks/bulk-update", owner, map[string]any{
		"tasks": []map[string]any{
			{"id": a.ID, "status": "TODO", "position": 500},
			{"id": b.ID, "status": "TODO", "position": 1500},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, base+"/tasks/bulk-update", owner, map[string]any{
		"tasks": []map[string]any{
			{"id": a.ID, "status": "TODO", "position": 500},
			{"id": b.ID, "status": "DONE", "position": 1000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, base+"/tasks/board", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lanes []dto.LaneDTO
	decodeData(t, w, &lanes)
	require.Len(t, lanes, 5)

	names := func(lane dto.LaneDTO) []string {
		out := []string{}
		for _, task := range lane.Tasks {
			out = append(out, task.Name)
		}
		return out
	}
	assert.Equal(t, models.TaskStatusBacklog, lanes[0].Status)
	assert.Empty(t, lanes[0].Tasks)
	assert.Equal(t, []string{"A", "C"}, names(lanes[1]))
	assert.Equal(t, []string{"B"}, names(lanes[4]))

	w = env.do(t, http.MethodGet, base+"/tasks?status=TODO", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ListDTO[dto.TaskDTO]
	decodeData(t, w, &list)
	assert.EqualValues(t, 2, list.Total)
}

func TestRouter_GenerateWithoutAI(t *testing.T) {
	env := setupRouterTestEnv(t)
	owner := env.signUp(t, "Owner", "owner@example.com")
	workspace := env.createWorkspace(t, owner, "Acme")

	w := env.do(t, http.MethodPost, "/api/workspaces/"+workspace.ID+"/tasks/generate", owner, map[string]string{"text": "write docs"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
