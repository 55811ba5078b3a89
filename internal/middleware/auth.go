// Package middleware authenticates requests and enforces roles.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/controller"
	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/service"
)

const currentUserKey = "currentUser"

type AuthMiddleware struct {
	auth service.AuthService
}

func NewAuthMiddleware(auth service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth resolves the bearer token and stores the user on the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			controller.Fail(ctx, apperr.NotAuthenticated("Utilisateur non authentifié"))
			return
		}
		user, err := m.auth.Authenticate(ctx.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Msg("RequireAuth: token rejected")
			controller.Fail(ctx, err)
			return
		}
		ctx.Set(currentUserKey, user)
		ctx.Next()
	}
}

// RequireAdmin lets staff and super admins through. It must run after
// RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := CurrentUser(ctx)
		if user == nil || !user.IsAdmin() {
			controller.Fail(ctx, apperr.Forbidden("Accès refusé"))
			return
		}
		ctx.Next()
	}
}

func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := CurrentUser(ctx)
		if user == nil || !user.IsSuperAdmin {
			controller.Fail(ctx, apperr.Forbidden("Accès refusé. Seuls les super administrateurs peuvent gérer le staff."))
			return
		}
		ctx.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(ctx *gin.Context) *model.User {
	v, ok := ctx.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// SetCurrentUser stores user as the authenticated user of the request.
func SetCurrentUser(ctx *gin.Context, user *model.User) {
	ctx.Set(currentUserKey, user)
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
