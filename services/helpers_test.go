package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/inkblog/models"
	"github.com/cppla/inkblog/testutil"
)

type testEnv struct {
	db         *gorm.DB
	users      *UserService
	categories *CategoryService
	posts      *PostService
}

// setupServices wires all services against a fresh SQLite database.
func setupServices(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t, testutil.NewClock())
	logger := zap.NewNop()

	users := NewUserService(db, logger)
	categories := NewCategoryService(db, logger)
	return &testEnv{
		db:         db,
		users:      users,
		categories: categories,
		posts:      NewPostService(db, logger, users, categories),
	}
}

func alice() *Principal {
	return &Principal{ID: "user-alice", Email: "alice@example.com", FullName: "Alice"}
}

func bob() *Principal {
	return &Principal{ID: "user-bob", Email: "bob@example.com"}
}

func (e *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := e.categories.Create(context.Background(), CreateCategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) createPost(t *testing.T, p *Principal, title string, published bool, categoryIDs ...string) *models.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), p, CreatePostInput{
		Title:       title,
		Content:     "Content of " + title,
		Published:   published,
		CategoryIDs: categoryIDs,
	})
	require.NoError(t, err)
	return post
}

func (e *testEnv) categoryIDsOf(t *testing.T, postID string) []string {
	t.Helper()
	var links []models.PostCategory
	require.NoError(t, e.db.Where("post_id = ?", postID).Order("category_id").Find(&links).Error)
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CategoryID)
	}
	return ids
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
