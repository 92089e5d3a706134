package services

import (
	"testing"

	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/models"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/testutil"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db    *gorm.DB
	store *repository.Store
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	return serviceTestEnv{db: db, store: repository.NewStore(db)}
}

func accessFor(user *models.User, member *models.Member) *access.Context {
	return &access.Context{User: user, Member: member, WorkspaceID: member.WorkspaceID}
}
