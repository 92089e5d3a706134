package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/constants"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/models"
)

// TokenFromRequest returns the session token of the request. A bearer token
// wins over the cookie session.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, constants.AuthorizationBearerType) {
			return strings.TrimSpace(token)
		}
	}

	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return ""
	}
	token, _ := sessions.Default(c).Get(constants.SessionKeyToken).(string)
	return token
}

// RequireAuth rejects requests without a valid session
func RequireAuth(gate *access.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := gate.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// RequireWorkspaceAccess authorizes the caller against the :workspaceId route
// parameter. Must run after RequireAuth.
func RequireWorkspaceAccess(gate *access.Gate, requirement access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, access.ErrUnauthenticated)
			return
		}

		ac, err := gate.AuthorizeUser(c.Request.Context(), user, c.Param("workspaceId"), requirement)
		if err != nil {
			// Non-members get the same answer as for a missing workspace
			if errors.Is(err, access.ErrNotMember) {
				_ = c.Error(err)
				apierrors.NotFound(c, "Workspace not found")
				c.Abort()
				return
			}
			abort(c, err)
			return
		}

		c.Set(constants.ContextKeyAccess, ac)
		c.Next()
	}
}

// CurrentUser retrieves the authenticated user from context
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// AccessContext retrieves the workspace authorization from context
func AccessContext(c *gin.Context) (*access.Context, bool) {
	value, exists := c.Get(constants.ContextKeyAccess)
	if !exists {
		return nil, false
	}
	ac, ok := value.(*access.Context)
	return ac, ok && ac != nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.Respond(c, err)
	c.Abort()
}

// NoRoute answers unknown routes with the standard error body.
func NoRoute(c *gin.Context) {
	apierrors.RespondWithError(c, http.StatusNotFound, apierrors.NewAPIError(apierrors.ErrCodeNotFound, "Route not found"))
}
