package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkblog/services"
	"github.com/cppla/inkblog/utils"
)

const (
	// ContextPrincipalKey stores the *services.Principal of an authenticated request.
	ContextPrincipalKey = "principal"
	// ContextTokenKey stores the raw bearer token so logout can revoke it.
	ContextTokenKey = "bearer_token"
	// ContextClaimsKey stores the parsed *utils.Claims.
	ContextClaimsKey = "token_claims"
)

// Authenticator verifies bearer tokens issued by the auth provider.
type Authenticator struct {
	secret    string
	blacklist *utils.TokenBlacklist
}

func NewAuthenticator(secret string, blacklist *utils.TokenBlacklist) *Authenticator {
	return &Authenticator{secret: secret, blacklist: blacklist}
}

// Required rejects requests without a valid, unrevoked bearer token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		if code, msg := a.authenticate(ctx, authHeader); code != 0 {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// Optional attaches the principal when a valid token is present and lets
// anonymous requests through otherwise.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
			_, _ = a.authenticate(ctx, authHeader)
		}
		ctx.Next()
	}
}

// authenticate returns a non-zero body code and message on failure.
func (a *Authenticator) authenticate(ctx *gin.Context, authHeader string) (int, string) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 40102, "invalid authorization header format"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return 40103, "empty bearer token"
	}

	if a.blacklist != nil && a.blacklist.IsRevoked(ctx.Request.Context(), tokenString) {
		return 40104, "token revoked"
	}

	claims, err := utils.ParseToken(a.secret, tokenString)
	if err != nil {
		return 40105, "invalid token"
	}

	ctx.Set(ContextPrincipalKey, &services.Principal{
		ID:        claims.Subject,
		Email:     claims.Email,
		FullName:  claims.UserMetadata.FullName,
		AvatarURL: claims.UserMetadata.AvatarURL,
	})
	ctx.Set(ContextClaimsKey, claims)
	ctx.Set(ContextTokenKey, tokenString)
	return 0, ""
}

// PrincipalFrom returns the authenticated principal, or nil for anonymous requests.
func PrincipalFrom(ctx *gin.Context) *services.Principal {
	v, ok := ctx.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*services.Principal)
	return p
}

// ClaimsFrom returns the parsed token claims and raw token of the request.
func ClaimsFrom(ctx *gin.Context) (*utils.Claims, string) {
	v, ok := ctx.Get(ContextClaimsKey)
	if !ok {
		return nil, ""
	}
	claims, _ := v.(*utils.Claims)
	return claims, ctx.GetString(ContextTokenKey)
}
