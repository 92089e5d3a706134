package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/storage"
	"github.com/yukikurage/workboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound          = apierrors.New(apierrors.ErrNotFound, "Workspace not found")
	ErrInvalidInviteCode          = apierrors.New(apierrors.ErrValidation, "Invalid invite code")
	ErrAlreadyMember              = apierrors.New(apierrors.ErrConflict, "You are already a member of this workspace")
	ErrInviteCodeGenerationFailed = apierrors.New(apierrors.ErrValidation, "Could not generate a unique invite code")
)

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	store  *repository.Store
	images storage.ImageStore
	log    *slog.Logger
}

// NewWorkspaceService creates a new WorkspaceService. images may be nil.
func NewWorkspaceService(store *repository.Store, images storage.ImageStore, log *slog.Logger) *WorkspaceService {
	return &WorkspaceService{
		store:  store,
		images: images,
		log:    log,
	}
}

// WorkspaceMembership is a workspace together with the caller's role in it.
type WorkspaceMembership struct {
	Workspace models.Workspace
	Role      models.MemberRole
}

// ListForUser returns the workspaces user belongs to, newest first.
func (s *WorkspaceService) ListForUser(ctx context.Context, user *models.User) ([]WorkspaceMembership, error) {
	workspaces, err := s.store.Workspaces.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, apierrors.StoreFailure("list workspaces", err)
	}
	memberships, err := s.store.Members.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apierrors.StoreFailure("list memberships", err)
	}

	roles := make(map[string]models.MemberRole, len(memberships))
	for _, m := range memberships {
		roles[m.WorkspaceID] = m.Role
	}

	result := make([]WorkspaceMembership, 0, len(workspaces))
	for _, w := range workspaces {
		result = append(result, WorkspaceMembership{Workspace: w, Role: roles[w.ID]})
	}
	return result, nil
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name     string
	Image    *ImageUpload
	ImageURL *string
}

// Create creates a workspace and makes user its first ADMIN.
func (s *WorkspaceService) Create(ctx context.Context, user *models.User, input CreateWorkspaceInput) (*models.Workspace, *models.Member, error) {
	name, err := normalizeName(input.Name, "Workspace name")
	if err != nil {
		return nil, nil, err
	}

	imageURL, err := resolveImage(ctx, s.images, input.Image, input.ImageURL)
	if err != nil {
		return nil, nil, err
	}

	var workspace *models.Workspace
	var member *models.Member
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		inviteCode, err := uniqueInviteCode(ctx, tx.Workspaces)
		if err != nil {
			return err
		}

		workspace = &models.Workspace{
			Name:       name,
			OwnerID:    user.ID,
			ImageURL:   imageURL,
			InviteCode: inviteCode,
		}
		if err := tx.Workspaces.Create(ctx, workspace); err != nil {
			return apierrors.StoreFailure("create workspace", err)
		}

		member = &models.Member{
			WorkspaceID: workspace.ID,
			UserID:      user.ID,
			Role:        models.RoleAdmin,
		}
		if err := tx.Members.Create(ctx, member); err != nil {
			return apierrors.StoreFailure("add workspace admin", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "workspace created",
		slog.String("workspace_id", workspace.ID),
		slog.String("user_id", user.ID),
	)
	return workspace, member, nil
}

// Get returns the workspace of an authorized caller.
func (s *WorkspaceService) Get(ctx context.Context, ac *access.Context) (*models.Workspace, error) {
	workspace, err := s.store.Workspaces.FindByID(ctx, ac.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, apierrors.StoreFailure("find workspace", err)
	}
	return workspace, nil
}

// UpdateWorkspaceInput represents parameters to update a workspace. Nil
// fields are left unchanged.
type UpdateWorkspaceInput struct {
	Name     *string
	Image    *ImageUpload
	ImageURL *string
}

// Update changes the name or image of a workspace.
func (s *WorkspaceService) Update(ctx context.Context, ac *access.Context, input UpdateWorkspaceInput) (*models.Workspace, error) {
	fields := map[string]any{}
	if input.Name != nil {
		name, err := normalizeName(*input.Name, "Workspace name")
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

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := requireAdmin(ctx, tx, ac); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Workspaces.Update(ctx, ac.WorkspaceID, fields); err != nil {
			return apierrors.StoreFailure("update workspace", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ac)
}

// Delete removes the workspace with its members, projects and tasks.
func (s *WorkspaceService) Delete(ctx context.Context, ac *access.Context) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := requireAdmin(ctx, tx, ac); err != nil {
			return err
		}
		if err := tx.Workspaces.Delete(ctx, ac.WorkspaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkspaceNotFound
			}
			return apierrors.StoreFailure("delete workspace", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "workspace deleted",
		slog.String("workspace_id", ac.WorkspaceID),
		slog.String("user_id", ac.User.ID),
	)
	return nil
}

// ResetInviteCode replaces the invite code. The previous code stops working
// as soon as the transaction commits.
func (s *WorkspaceService) ResetInviteCode(ctx context.Context, ac *access.Context) (*models.Workspace, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := requireAdmin(ctx, tx, ac); err != nil {
			return err
		}

		inviteCode, err := uniqueInviteCode(ctx, tx.Workspaces)
		if err != nil {
			return err
		}
		if err := tx.Workspaces.Update(ctx, ac.WorkspaceID, map[string]any{"invite_code": inviteCode}); err != nil {
			return apierrors.StoreFailure("reset invite code", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "invite code reset", slog.String("workspace_id", ac.WorkspaceID))
	return s.Get(ctx, ac)
}

// Join adds user to the workspace as a MEMBER when code matches its current
// invite code. Unknown workspaces are reported as an invalid code.
func (s *WorkspaceService) Join(ctx context.Context, user *models.User, workspaceID, code string) (*models.Workspace, *models.Member, error) {
	var workspace *models.Workspace
	var member *models.Member

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		workspace, err = tx.Workspaces.FindByID(ctx, workspaceID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidInviteCode
		}
		if err != nil {
			return apierrors.StoreFailure("find workspace", err)
		}

		if code == "" || subtle.ConstantTimeCompare([]byte(code), []byte(workspace.InviteCode)) != 1 {
			return ErrInvalidInviteCode
		}

		if _, err := tx.Members.FindByUser(ctx, workspaceID, user.ID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.StoreFailure("find membership", err)
		}

		member = &models.Member{
			WorkspaceID: workspaceID,
			UserID:      user.ID,
			Role:        models.RoleMember,
		}
		if err := tx.Members.Create(ctx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return apierrors.StoreFailure("join workspace", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "member joined",
		slog.String("workspace_id", workspaceID),
		slog.String("user_id", user.ID),
	)
	return workspace, member, nil
}

// uniqueInviteCode draws codes until one is unused.
func uniqueInviteCode(ctx context.Context, workspaces repository.WorkspaceRepository) (string, error) {
	for attempt := 0; attempt < constants.InviteCodeAttempts; attempt++ {
		code, err := utils.GenerateInviteCode(constants.InviteCodeLength)
		if err != nil {
			return "", apierrors.StoreFailure("generate invite code", err)
		}

		exists, err := workspaces.InviteCodeExists(ctx, code)
		if err != nil {
			return "", apierrors.StoreFailure("check invite code", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrInviteCodeGenerationFailed
}

// requireAdmin re-reads the caller's membership inside tx so that a role
// change committed after authorization is honoured.
func requireAdmin(ctx context.Context, tx *repository.Store, ac *access.Context) (*models.Member, error) {
	member, err := currentMember(ctx, tx, ac)
	if err != nil {
		return nil, err
	}
	if member.Role != models.RoleAdmin {
		return nil, access.ErrAdminRequired
	}
	return member, nil
}

// currentMember re-reads the caller's membership inside tx.
func currentMember(ctx context.Context, tx *repository.Store, ac *access.Context) (*models.Member, error) {
	member, err := tx.Members.FindByUser(ctx, ac.WorkspaceID, ac.User.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, access.ErrNotMember
	}
	if err != nil {
		return nil, apierrors.StoreFailure("find membership", err)
	}
	return member, nil
}
