package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID        = "user_id"
	ContextKeyUser          = "user"
	ContextKeyAccess        = "workspace_access"
	SessionCookieName       = "workboard_session"
	SessionKeyToken         = "session_token"
	AuthorizationBearerType = "Bearer"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength  = 8
	DefaultSessionTTL  = 7 * 24 * time.Hour
	SessionTokenLength = 32
)

// Workspaces and projects
const (
	MaxNameLength      = 128
	InviteCodeLength   = 6
	InviteCodeAttempts = 5
	MaxImageSize       = 1 << 20
)

// Tasks
const (
	MaxBatchMoveSize    = 500
	MaxAIGeneratedTasks = 20
)
