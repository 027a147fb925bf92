package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/inkblog/apperr"
	"github.com/cppla/inkblog/models"
)

func TestCategoryService_Create(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	c, err := env.categories.Create(ctx, CreateCategoryInput{
		Name:        "  <b>Web Development</b> ",
		Description: strPtr("All things <i>web</i>"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Web Development", c.Name)
	assert.Equal(t, "web-development", c.Slug)
	require.NotNil(t, c.Description)
	assert.Equal(t, "All things web", *c.Description)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.categories.Create(ctx, CreateCategoryInput{Name: "Web Development"})
		assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.categories.Create(ctx, CreateCategoryInput{Name: "<p></p>"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("name too long", func(t *testing.T) {
		long := make([]byte, 101)
		for i := range long {
			long[i] = 'a'
		}
		_, err := env.categories.Create(ctx, CreateCategoryInput{Name: string(long)})
		require.ErrorIs(t, err, apperr.ErrValidation)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Details, "name")
	})
}

func TestCategoryService_ListNewestFirst(t *testing.T) {
	env := setupServices(t)

	env.createCategory(t, "First")
	env.createCategory(t, "Second")
	env.createCategory(t, "Third")

	list, err := env.categories.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Name)
	assert.Equal(t, "First", list[2].Name)
}

func TestCategoryService_Update(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	c := env.createCategory(t, "Golang")

	t.Run("description only keeps slug", func(t *testing.T) {
		updated, err := env.categories.Update(ctx, c.ID, UpdateCategoryInput{Description: strPtr("The Go language")})
		require.NoError(t, err)
		assert.Equal(t, "golang", updated.Slug)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "The Go language", *updated.Description)
		assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))
	})

	t.Run("rename re-derives slug", func(t *testing.T) {
		updated, err := env.categories.Update(ctx, c.ID, UpdateCategoryInput{Name: strPtr("Go Programming")})
		require.NoError(t, err)
		assert.Equal(t, "Go Programming", updated.Name)
		assert.Equal(t, "go-programming", updated.Slug)
		require.NotNil(t, updated.Description)
	})

	t.Run("clear description", func(t *testing.T) {
		updated, err := env.categories.Update(ctx, c.ID, UpdateCategoryInput{Description: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := env.categories.Update(ctx, c.ID, UpdateCategoryInput{Name: strPtr("   ")})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("missing category", func(t *testing.T) {
		_, err := env.categories.Update(ctx, uuid.NewString(), UpdateCategoryInput{Name: strPtr("X")})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("rename onto existing name", func(t *testing.T) {
		env.createCategory(t, "Rust")
		_, err := env.categories.Update(ctx, c.ID, UpdateCategoryInput{Name: strPtr("Rust")})
		assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	})
}

func TestCategoryService_DeleteReferentialSafety(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	c := env.createCategory(t, "Go")
	post := env.createPost(t, alice(), "Generics in Go", true, c.ID)

	err := env.categories.Delete(ctx, c.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "cannot delete category with assigned posts")

	var count int64
	require.NoError(t, env.db.Model(&models.Category{}).Where("id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{c.ID}, env.categoryIDsOf(t, post.ID))

	_, err = env.posts.Update(ctx, alice(), post.ID, UpdatePostInput{CategoryIDs: &[]string{}})
	require.NoError(t, err)

	require.NoError(t, env.categories.Delete(ctx, c.ID))
	require.NoError(t, env.db.Model(&models.Category{}).Where("id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCategoryService_DeleteMissing(t *testing.T) {
	env := setupServices(t)

	err := env.categories.Delete(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCategoryService_GetBySlug(t *testing.T) {
	env := setupServices(t)
	c := env.createCategory(t, "Cloud Native")

	got, err := env.categories.GetBySlug(context.Background(), "cloud-native")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = env.categories.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
