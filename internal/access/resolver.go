// Package access decides who may see and change workspace-scoped data.
package access

import (
	"context"
	"errors"

	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

// ErrMembershipNotFound is returned when a user has no membership row.
var ErrMembershipNotFound = apierrors.New(apierrors.ErrNotFound, "Membership not found")

// Resolver looks up memberships.
type Resolver struct {
	members repository.MemberRepository
}

// NewResolver creates a Resolver over members
func NewResolver(members repository.MemberRepository) *Resolver {
	return &Resolver{members: members}
}

// Resolve returns the membership of userID in workspaceID.
func (r *Resolver) Resolve(ctx context.Context, userID, workspaceID string) (*models.Member, error) {
	member, err := r.members.FindByUser(ctx, workspaceID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, apierrors.StoreFailure("resolve membership", err)
	}
	return member, nil
}

// ListMembersOf returns one page of the workspace's members, oldest first.
func (r *Resolver) ListMembersOf(ctx context.Context, workspaceID string, params utils.PaginationParams) ([]models.Member, int64, error) {
	members, total, err := r.members.List(ctx, workspaceID, params)
	if err != nil {
		return nil, 0, apierrors.StoreFailure("list members", err)
	}
	return members, total, nil
}

// IsAdmin reports whether member holds the ADMIN role.
func IsAdmin(member *models.Member) bool {
	return member != nil && member.Role == models.RoleAdmin
}
