package v1

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/emergency_dispatch_system/internal/apperr"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/sirupsen/logrus"
)

const actorKey = "actor"

// AuthMiddleware - middleware для аутентификации по bearer-токену.
// Для websocket токен также принимается в параметре ?token=.
func AuthMiddleware(authService service.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			log.WithField("path", c.FullPath()).Warn("Bearer token missing from request")
			abortWithError(c, apperr.ErrUnauthorized)
			return
		}

		actor, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).WithField("path", c.FullPath()).Warn("Authentication failed")
			abortWithError(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom текущий пользователь, установленный AuthMiddleware
func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
