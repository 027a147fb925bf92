package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkblog/middleware"
	"github.com/cppla/inkblog/services"
	"github.com/cppla/inkblog/utils"
)

// UserController serves the caller's profile, dashboard stats and public profiles.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Me returns the stored record of the caller.
func (u *UserController) Me(ctx *gin.Context) {
	user, err := u.users.Current(ctx.Request.Context(), middleware.PrincipalFrom(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// SyncMe creates or refreshes the caller's record from the token claims and
// an optional {fullName, avatarUrl} body.
func (u *UserController) SyncMe(ctx *gin.Context) {
	var req services.UpsertUserInput
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	user, err := u.users.Upsert(ctx.Request.Context(), middleware.PrincipalFrom(ctx), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// Stats returns the caller's dashboard counters.
func (u *UserController) Stats(ctx *gin.Context) {
	stats, err := u.users.GetDashboardStats(ctx.Request.Context(), middleware.PrincipalFrom(ctx))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, stats)
}

// GetUserPublic returns a user's public profile.
func (u *UserController) GetUserPublic(ctx *gin.Context) {
	user, err := u.users.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": gin.H{
		"id":        user.ID,
		"fullName":  user.FullName,
		"avatarUrl": user.AvatarURL,
		"createdAt": user.CreatedAt,
	}})
}
