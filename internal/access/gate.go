package access

import (
	"context"
	"errors"

	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
)

// Requirement is what a route demands of the caller's membership.
type Requirement int

const (
	// AnyMember admits every member of the workspace.
	AnyMember Requirement = iota
	// AdminOnly admits ADMIN members only.
	AdminOnly
)

func (r Requirement) String() string {
	switch r {
	case AdminOnly:
		return "admin"
	default:
		return "member"
	}
}

var (
	// ErrNotMember is returned when the caller has no membership in the
	// workspace, or the workspace does not exist.
	ErrNotMember = apierrors.New(apierrors.ErrForbidden, "Workspace not found")
	// ErrAdminRequired is returned when a MEMBER calls an ADMIN route.
	ErrAdminRequired = apierrors.New(apierrors.ErrForbidden, "Only workspace admins can perform this action")
	// ErrUnauthenticated is returned for missing, expired or revoked sessions.
	ErrUnauthenticated = apierrors.New(apierrors.ErrUnauthenticated, "Authentication required")
)

// IdentityProvider resolves a session token to its user.
type IdentityProvider interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Context is an authorized caller inside one workspace.
type Context struct {
	User        *models.User
	Member      *models.Member
	WorkspaceID string
}

// IsAdmin reports whether the caller is an ADMIN of the workspace.
func (c *Context) IsAdmin() bool {
	return IsAdmin(c.Member)
}

// Gate authorizes requests against workspace memberships.
type Gate struct {
	identity IdentityProvider
	resolver *Resolver
}

// NewGate creates a Gate
func NewGate(identity IdentityProvider, resolver *Resolver) *Gate {
	return &Gate{identity: identity, resolver: resolver}
}

// Authenticate resolves token to a user.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	user, err := g.identity.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, apierrors.ErrUnauthenticated) || errors.Is(err, apierrors.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Authorize resolves token and checks that its user may act in workspaceID.
func (g *Gate) Authorize(ctx context.Context, token, workspaceID string, requirement Requirement) (*Context, error) {
	user, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	return g.AuthorizeUser(ctx, user, workspaceID, requirement)
}

// AuthorizeUser checks an already authenticated user's membership.
func (g *Gate) AuthorizeUser(ctx context.Context, user *models.User, workspaceID string, requirement Requirement) (*Context, error) {
	if workspaceID == "" {
		return nil, ErrNotMember
	}

	member, err := g.resolver.Resolve(ctx, user.ID, workspaceID)
	if errors.Is(err, ErrMembershipNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}

	if requirement == AdminOnly && member.Role != models.RoleAdmin {
		return nil, ErrAdminRequired
	}

	return &Context{User: user, Member: member, WorkspaceID: workspaceID}, nil
}
