package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/model"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/pkg/jwtutil"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/response"
)

const (
	ContextIdentityKey = "identity"
	ContextUserKey     = "current_user"
	ContextUserIDKey   = "user_id"
)

// AuthIdentity verifies the bearer token issued by the identity provider
// and stores the verified claims. There is no anonymous fallback: every
// route behind this middleware requires a valid token.
func AuthIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseIdentityToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, claims)
		c.Next()
	}
}

// LoadUser resolves the verified identity to its user row. Routes other
// than the initial sync require the row to exist already.
func LoadUser(users *app.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetIdentity(c)
		if !ok {
			response.Error(c, 401, response.CodeUnauthorized, "invalid token payload")
			c.Abort()
			return
		}

		user, err := users.GetByToken(claims.TokenIdentifier())
		if err != nil {
			if errors.Is(err, app.ErrUserNotFound) {
				response.Error(c, 401, response.CodeUnauthorized, "account not registered")
				c.Abort()
				return
			}
			response.Error(c, 500, response.CodeInternalServer, "load user failed")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (*jwtutil.IdentityClaims, bool) {
	v, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwtutil.IdentityClaims)
	return claims, ok
}

func GetUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	return userID, ok
}
