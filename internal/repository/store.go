package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	db *gorm.DB

	Users      UserRepository
	Workspaces WorkspaceRepository
	Members    MemberRepository
	Projects   ProjectRepository
	Tasks      TaskRepository
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Workspaces: NewWorkspaceRepository(db),
		Members:    NewMemberRepository(db),
		Projects:   NewProjectRepository(db),
		Tasks:      NewTaskRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single database transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}
