package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kaustubh0601/Task-Management/internal/auth"
	"github.com/kaustubh0601/Task-Management/internal/constants"
	apierrors "github.com/kaustubh0601/Task-Management/internal/errors"
	"github.com/kaustubh0601/Task-Management/internal/models"
	"github.com/kaustubh0601/Task-Management/internal/repository"
)

// RequireAuth resolves the bearer token into an actor. The user record is
// reloaded on every request: a token carries only the subject, so role changes
// and deactivation take effect immediately instead of living on in old tokens.
func RequireAuth(jwtSecret string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			apierrors.Unauthorized(c, "Authorization header format must be Bearer {token}")
			c.Abort()
			return
		}

		userID, err := auth.ParseToken(parts[1], jwtSecret)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Unauthorized(c, "Invalid or expired token")
			} else {
				log.Printf("auth middleware: %v", err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}
		if !user.IsActive {
			apierrors.Unauthorized(c, "Account is deactivated")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, user)
		c.Next()
	}
}

// RequireAdmin gates the user-management routes. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			apierrors.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor retrieves the authenticated user from the context.
func GetActor(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil, false
	}
	actor, ok := value.(*models.User)
	return actor, ok
}
