package access_test

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

// tokenIdentity maps tokens straight to users.
type tokenIdentity map[string]*models.User

func (m tokenIdentity) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if user, ok := m[token]; ok {
		return user, nil
	}
	return nil, apierrors.New(apierrors.ErrUnauthenticated, "session expired")
}

func TestGate_Authorize(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateUser(t, db, "Admin", "admin@example.com")
	member := testutil.CreateUser(t, db, "Member", "member@example.com")
	outsider := testutil.CreateUser(t, db, "Outsider", "outsider@example.com")

	workspace, _ := testutil.CreateWorkspace(t, db, admin, "Acme", "ABC123")
	testutil.AddMember(t, db, workspace, member, models.RoleMember)

	identity := tokenIdentity{"admin": admin, "member": member, "outsider": outsider}
	gate := access.NewGate(identity, access.NewResolver(repository.NewMemberRepository(db)))
	ctx := context.Background()

	tests := []struct {
		name        string
		token       string
		workspaceID string
		requirement access.Requirement
		wantErr     error
		wantKind    error
	}{
		{name: "admin on admin route", token: "admin", workspaceID: workspace.ID, requirement: access.AdminOnly},
		{name: "member on member route", token: "member", workspaceID: workspace.ID, requirement: access.AnyMember},
		{name: "member on admin route", token: "member", workspaceID: workspace.ID, requirement: access.AdminOnly, wantErr: access.ErrAdminRequired, wantKind: apierrors.ErrForbidden},
		{name: "outsider", token: "outsider", workspaceID: workspace.ID, requirement: access.AnyMember, wantErr: access.ErrNotMember, wantKind: apierrors.ErrForbidden},
		{name: "unknown workspace", token: "admin", workspaceID: "does-not-exist", requirement: access.AnyMember, wantErr: access.ErrNotMember, wantKind: apierrors.ErrForbidden},
		{name: "no token", token: "", workspaceID: workspace.ID, requirement: access.AnyMember, wantErr: access.ErrUnauthenticated, wantKind: apierrors.ErrUnauthenticated},
		{name: "expired token", token: "stale", workspaceID: workspace.ID, requirement: access.AnyMember, wantErr: access.ErrUnauthenticated, wantKind: apierrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.Authorize(ctx, tt.token, tt.workspaceID, tt.requirement)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, tt.wantKind)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, workspace.ID, got.WorkspaceID)
			require.Equal(t, identity[tt.token].ID, got.User.ID)
			require.Equal(t, tt.requirement == access.AdminOnly, got.IsAdmin())
		})
	}
}

func TestResolver_ListMembersOf(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateUser(t, db, "Admin", "admin@example.com")
	workspace, adminMember := testutil.CreateWorkspace(t, db, admin, "Acme", "ABC123")
	testutil.AddMember(t, db, workspace, testutil.CreateUser(t, db, "Member", "member@example.com"), models.RoleMember)

	resolver := access.NewResolver(repository.NewMemberRepository(db))
	members, total, err := resolver.ListMembersOf(context.Background(), workspace.ID, utils.NewPaginationParams(1, 1))
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, members, 1)
	require.Equal(t, adminMember.ID, members[0].ID)
	require.True(t, access.IsAdmin(&members[0]))
	require.False(t, access.IsAdmin(nil))
}
