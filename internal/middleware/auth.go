package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/campushub/campushub/internal/auth"
	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthenticatedUser is the classification result stored in the gin context.
// It carries only what the token proves; role checks go back to the store.
type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type Guard struct {
	tokens *auth.TokenManager
	db     *gorm.DB
}

func NewGuard(tokens *auth.TokenManager, db *gorm.DB) *Guard {
	return &Guard{tokens: tokens, db: db}
}

// RequireAuth classifies the bearer credential. Missing credential is 401,
// a malformed or expired one is 400. No database access here.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Access denied"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid token"})
			return
		}

		claims, err := g.tokens.Verify(parts[1])

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid token"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    claims.UserID,
			Email: claims.Email,
		})
		ctx.Next()
	}
}

// RequireRole looks the account up and checks its role. An account deleted
// after token issuance is treated the same as a role mismatch.
func (g *Guard) RequireRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		current, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Access denied"})
			return
		}

		authenticated, ok := current.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Access denied"})
			return
		}

		var user models.User

		if err := g.db.Where("id = ?", authenticated.ID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "msg": "Access denied"})
			} else {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
			}
			return
		}

		if user.Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "msg": "Access denied"})
			return
		}

		ctx.Next()
	}
}
