package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yukikurage/workboard-api/internal/access"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound = apierrors.New(apierrors.ErrNotFound, "Member not found")
	ErrLastAdmin      = apierrors.New(apierrors.ErrConflict, "A workspace must keep at least one admin")
	ErrInvalidRole    = apierrors.New(apierrors.ErrValidation, "Role must be ADMIN or MEMBER")
)

// MemberService provides business logic for workspace memberships.
type MemberService struct {
	store    *repository.Store
	resolver *access.Resolver
	log      *slog.Logger
}

// NewMemberService creates a new MemberService.
func NewMemberService(store *repository.Store, resolver *access.Resolver, log *slog.Logger) *MemberService {
	return &MemberService{
		store:    store,
		resolver: resolver,
		log:      log,
	}
}

// List returns one page of the workspace's members.
func (s *MemberService) List(ctx context.Context, ac *access.Context, params utils.PaginationParams) ([]models.Member, int64, error) {
	return s.resolver.ListMembersOf(ctx, ac.WorkspaceID, params)
}

// UpdateRole changes the role of a member. Demoting the last ADMIN fails.
func (s *MemberService) UpdateRole(ctx context.Context, ac *access.Context, memberID string, role models.MemberRole) (*models.Member, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	var target *models.Member
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := requireAdmin(ctx, tx, ac); err != nil {
			return err
		}

		var err error
		target, err = findMember(ctx, tx, ac.WorkspaceID, memberID)
		if err != nil {
			return err
		}
		if target.Role == role {
			return nil
		}

		if target.Role == models.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, tx, ac.WorkspaceID); err != nil {
				return err
			}
		}

		if err := tx.Members.UpdateRole(ctx, ac.WorkspaceID, memberID, role); err != nil {
			return apierrors.StoreFailure("update member role", err)
		}
		target.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "member role changed",
		slog.String("workspace_id", ac.WorkspaceID),
		slog.String("member_id", memberID),
		slog.String("role", string(role)),
	)
	return target, nil
}

// Remove deletes a membership. ADMINs may remove anyone and every member may
// remove itself. Tasks assigned to the removed member become unassigned.
func (s *MemberService) Remove(ctx context.Context, ac *access.Context, memberID string) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		actor, err := currentMember(ctx, tx, ac)
		if err != nil {
			return err
		}

		target, err := findMember(ctx, tx, ac.WorkspaceID, memberID)
		if err != nil {
			return err
		}

		if target.ID != actor.ID && actor.Role != models.RoleAdmin {
			return access.ErrAdminRequired
		}

		if target.Role == models.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, tx, ac.WorkspaceID); err != nil {
				return err
			}
		}

		if err := tx.Tasks.ClearAssignee(ctx, ac.WorkspaceID, target.ID); err != nil {
			return apierrors.StoreFailure("unassign tasks", err)
		}
		if err := tx.Members.Delete(ctx, ac.WorkspaceID, target.ID); err != nil {
			return apierrors.StoreFailure("remove member", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "member removed",
		slog.String("workspace_id", ac.WorkspaceID),
		slog.String("member_id", memberID),
	)
	return nil
}

func findMember(ctx context.Context, tx *repository.Store, workspaceID, memberID string) (*models.Member, error) {
	member, err := tx.Members.FindByID(ctx, workspaceID, memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, apierrors.StoreFailure("find member", err)
	}
	return member, nil
}

// ensureAnotherAdmin fails when the workspace has a single ADMIN left.
func ensureAnotherAdmin(ctx context.Context, tx *repository.Store, workspaceID string) error {
	admins, err := tx.Members.CountAdmins(ctx, workspaceID)
	if err != nil {
		return apierrors.StoreFailure("count admins", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
