package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/inkblog/middleware"
	"github.com/cppla/inkblog/utils"
)

// fallbackRevocation covers tokens that carry no expiry.
const fallbackRevocation = 72 * time.Hour

// AuthController handles session teardown. Sign-in itself happens at the
// auth provider.
type AuthController struct {
	blacklist *utils.TokenBlacklist
	logger    *zap.Logger
}

func NewAuthController(blacklist *utils.TokenBlacklist, logger *zap.Logger) *AuthController {
	return &AuthController{blacklist: blacklist, logger: logger}
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	claims, token := middleware.ClaimsFrom(ctx)
	if claims == nil || token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(fallbackRevocation)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := a.blacklist.Revoke(ctx.Request.Context(), token, expiresAt); err != nil {
		a.logger.Error("failed to revoke token", zap.String("user_id", claims.Subject), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50000, "failed to log out")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}
