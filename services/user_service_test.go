package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/inkblog/apperr"
	"github.com/cppla/inkblog/models"
)

func TestEnsureUser_Idempotent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	first, err := env.users.EnsureUser(ctx, Principal{ID: "u1", Email: "u1@example.com", FullName: "First"})
	require.NoError(t, err)

	second, err := env.users.EnsureUser(ctx, Principal{ID: "u1", Email: "u1@example.com", FullName: "First"})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "u1@example.com", second.Email)
	require.NotNil(t, second.FullName)
	assert.Equal(t, "First", *second.FullName)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestEnsureUser_RefreshesProfile(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.users.EnsureUser(ctx, Principal{ID: "u1", Email: "old@example.com", FullName: "Old"})
	require.NoError(t, err)

	_, err = env.users.EnsureUser(ctx, Principal{ID: "u1", Email: "new@example.com", AvatarURL: "https://img.example.com/a.png"})
	require.NoError(t, err)

	stored, err := env.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.Nil(t, stored.FullName)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, "https://img.example.com/a.png", *stored.AvatarURL)
}

func TestEnsureUser_RequiresIDAndEmail(t *testing.T) {
	env := setupServices(t)

	_, err := env.users.EnsureUser(context.Background(), Principal{ID: "u1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.users.EnsureUser(context.Background(), Principal{Email: "x@example.com"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEnsureUser_EmailOwnedByAnotherUser(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.users.EnsureUser(ctx, Principal{ID: "u1", Email: "shared@example.com"})
	require.NoError(t, err)

	_, err = env.users.EnsureUser(ctx, Principal{ID: "u2", Email: "shared@example.com"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = env.users.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_Current(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.users.Current(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = env.users.Current(ctx, alice())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.users.EnsureUser(ctx, *alice())
	require.NoError(t, err)

	me, err := env.users.Current(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestUserService_Upsert(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	user, err := env.users.Upsert(ctx, alice(), UpsertUserInput{})
	require.NoError(t, err)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Alice", *user.FullName)

	user, err = env.users.Upsert(ctx, alice(), UpsertUserInput{
		FullName:  strPtr("<b>Alice</b> Liddell"),
		AvatarURL: strPtr(" https://img.example.com/alice.png "),
	})
	require.NoError(t, err)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Alice Liddell", *user.FullName)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://img.example.com/alice.png", *user.AvatarURL)

	_, err = env.users.Upsert(ctx, alice(), UpsertUserInput{AvatarURL: strPtr("not a url")})
	require.ErrorIs(t, err, apperr.ErrValidation)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details, "avatarUrl")

	_, err = env.users.Upsert(ctx, nil, UpsertUserInput{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestGetDashboardStats(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	c1 := env.createCategory(t, "Go")
	c2 := env.createCategory(t, "Databases")
	env.createCategory(t, "Unused")

	env.createPost(t, alice(), "Post One", true, c1.ID)
	env.createPost(t, alice(), "Post Two", true, c1.ID, c2.ID)
	env.createPost(t, alice(), "Post Three", true)
	env.createPost(t, alice(), "Draft One", false, c2.ID)
	env.createPost(t, alice(), "Draft Two", false)
	env.createPost(t, bob(), "Someone Else", true, c1.ID)

	stats, err := env.users.GetDashboardStats(ctx, alice())
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{TotalPosts: 5, PublishedPosts: 3, Categories: 2}, *stats)

	empty, err := env.users.GetDashboardStats(ctx, &Principal{ID: "nobody", Email: "n@example.com"})
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{}, *empty)
}
