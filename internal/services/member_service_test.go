package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workboard-api/internal/access"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/testutil"
	"github.com/yukikurage/workboard-api/internal/utils"
)

type memberFixture struct {
	env       serviceTestEnv
	svc       *MemberService
	workspace *models.Workspace
	owner     *models.User
	admin     *models.Member
	bob       *models.User
	bobMember *models.Member
}

func setupMemberFixture(t *testing.T) memberFixture {
	t.Helper()

	env := setupServiceTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "Owner", "owner@example.com")
	workspace, admin := testutil.CreateWorkspace(t, env.db, owner, "Acme", "ABC123")
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	bobMember := testutil.AddMember(t, env.db, workspace, bob, models.RoleMember)

	resolver := access.NewResolver(repository.NewMemberRepository(env.db))
	return memberFixture{
		env:       env,
		svc:       NewMemberService(env.store, resolver, testutil.DiscardLogger()),
		workspace: workspace,
		owner:     owner,
		admin:     admin,
		bob:       bob,
		bobMember: bobMember,
	}
}

func TestMemberService_List(t *testing.T) {
	f := setupMemberFixture(t)

	members, total, err := f.svc.List(context.Background(), accessFor(f.owner, f.admin), utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, members, 2)
	require.Equal(t, "Owner", members[0].User.Name)
}

func TestMemberService_LastAdminCannotBeRemovedOrDemoted(t *testing.T) {
	f := setupMemberFixture(t)
	ctx := context.Background()
	ac := accessFor(f.owner, f.admin)

	err := f.svc.Remove(ctx, ac, f.admin.ID)
	require.ErrorIs(t, err, ErrLastAdmin)
	require.ErrorIs(t, err, apierrors.ErrConflict)

	_, err = f.svc.UpdateRole(ctx, ac, f.admin.ID, models.RoleMember)
	require.ErrorIs(t, err, ErrLastAdmin)

	// With a second admin both become possible
	promoted, err := f.svc.UpdateRole(ctx, ac, f.bobMember.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, promoted.Role)

	demoted, err := f.svc.UpdateRole(ctx, ac, f.admin.ID, models.RoleMember)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, demoted.Role)

	admins, err := f.env.store.Members.CountAdmins(ctx, f.workspace.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, admins)
}

func TestMemberService_UpdateRoleRequiresAdmin(t *testing.T) {
	f := setupMemberFixture(t)

	_, err := f.svc.UpdateRole(context.Background(), accessFor(f.bob, f.bobMember), f.admin.ID, models.RoleMember)
	require.ErrorIs(t, err, access.ErrAdminRequired)

	_, err = f.svc.UpdateRole(context.Background(), accessFor(f.owner, f.admin), f.bobMember.ID, "OWNER")
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.UpdateRole(context.Background(), accessFor(f.owner, f.admin), "missing", models.RoleAdmin)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberService_RemovePermissions(t *testing.T) {
	f := setupMemberFixture(t)
	ctx := context.Background()
	carol := testutil.CreateUser(t, f.env.db, "Carol", "carol@example.com")
	carolMember := testutil.AddMember(t, f.env.db, f.workspace, carol, models.RoleMember)

	// A MEMBER cannot remove someone else
	err := f.svc.Remove(ctx, accessFor(f.bob, f.bobMember), carolMember.ID)
	require.ErrorIs(t, err, access.ErrAdminRequired)

	// but may leave
	require.NoError(t, f.svc.Remove(ctx, accessFor(f.bob, f.bobMember), f.bobMember.ID))

	// An ADMIN may remove anyone
	require.NoError(t, f.svc.Remove(ctx, accessFor(f.owner, f.admin), carolMember.ID))

	err = f.svc.Remove(ctx, accessFor(f.owner, f.admin), carolMember.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)

	members, total, err := f.svc.List(ctx, accessFor(f.owner, f.admin), utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, f.admin.ID, members[0].ID)
}

func TestMemberService_RemoveUnassignsTasks(t *testing.T) {
	f := setupMemberFixture(t)
	project := testutil.CreateProject(t, f.env.db, f.workspace, "Launch")
	task := testutil.CreateTask(t, f.env.db, project, "Ship", models.TaskStatusTodo, 1000)
	require.NoError(t, f.env.db.Model(task).Update("assignee_id", f.bobMember.ID).Error)

	require.NoError(t, f.svc.Remove(context.Background(), accessFor(f.owner, f.admin), f.bobMember.ID))

	var reloaded models.Task
	require.NoError(t, f.env.db.First(&reloaded, "id = ?", task.ID).Error)
	require.Nil(t, reloaded.AssigneeID)
}

func TestMemberService_RemovedActorIsRejected(t *testing.T) {
	f := setupMemberFixture(t)
	ac := accessFor(f.bob, f.bobMember)

	require.NoError(t, f.env.db.Delete(&models.Member{}, "id = ?", f.bobMember.ID).Error)

	err := f.svc.Remove(context.Background(), ac, f.bobMember.ID)
	require.ErrorIs(t, err, access.ErrNotMember)
}
