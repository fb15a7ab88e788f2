package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/response"
	"github.com/guptas/lms-backend/internal/service"
)

// RequireRole admits the request only when the authenticated identity's
// role is in the allowed set.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}

// RequireVerifiedTeacher gates teacher-dashboard routes on the persisted
// is_verified flag. Token claims are minted before verification and are
// not invalidated when it changes, so this gate re-reads the user row
// instead of trusting the token. Admins pass through.
func RequireVerifiedTeacher(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if claims.Role == model.RoleAdmin {
			c.Next()
			return
		}
		if claims.Role != model.RoleTeacher {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		user, err := userService.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if !user.IsVerified {
			response.AbortFail(c, http.StatusForbidden, response.ErrTeacherNotVerified)
			return
		}

		c.Next()
	}
}
