package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/workboard-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A zero limit returns every row.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// InWorkspace restricts a query to rows of one workspace
func InWorkspace(workspaceID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workspace_id = ?", workspaceID)
	}
}
