package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/inkblog/apperr"
	"github.com/cppla/inkblog/models"
	"github.com/cppla/inkblog/utils"
)

const postSlugMax = 250

type CreatePostInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Content     string   `json:"content" validate:"required"`
	Excerpt     *string  `json:"excerpt" validate:"omitempty,max=500"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,max=2048"`
	Published   bool     `json:"published"`
	CategoryIDs []string `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

// UpdatePostInput changes only the non-nil fields. A non-nil CategoryIDs
// replaces the whole category set, so an empty slice clears it.
type UpdatePostInput struct {
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	Content     *string   `json:"content"`
	Excerpt     *string   `json:"excerpt" validate:"omitempty,max=500"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,max=2048"`
	Published   *bool     `json:"published"`
	CategoryIDs *[]string `json:"categoryIds" validate:"omitempty,dive,uuid"`
}

type PostService struct {
	db         *gorm.DB
	logger     *zap.Logger
	users      *UserService
	categories *CategoryService
	validator  *inputValidator
}

func NewPostService(db *gorm.DB, logger *zap.Logger, users *UserService, categories *CategoryService) *PostService {
	return &PostService{
		db:         db,
		logger:     logger,
		users:      users,
		categories: categories,
		validator:  newInputValidator(),
	}
}

// List returns posts matching f, newest first.
func (s *PostService) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	limit := f.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, apperr.ValidationWithDetails("validation failed", map[string]string{
			"limit": "must be between 1 and 100",
		})
	}

	var posts []models.Post
	q := applyPostFilter(s.db.WithContext(ctx).Model(&models.Post{}), f)
	if err := newestFirst(q.Select("posts.*")).Limit(limit).Find(&posts).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list posts")
	}
	return posts, nil
}

// Browse serves the public feed: published posts only, optionally narrowed
// to one category and a search term, one page at a time.
func (s *PostService) Browse(ctx context.Context, q BrowseQuery) (*PostPage, error) {
	categoryID := strings.TrimSpace(q.CategoryID)
	if categoryID == "" && strings.TrimSpace(q.CategorySlug) != "" {
		category, err := s.categories.GetBySlug(ctx, strings.TrimSpace(q.CategorySlug))
		if err != nil {
			return nil, err
		}
		categoryID = category.ID
	}

	published := true
	var posts []models.Post
	query := applyPostFilter(s.db.WithContext(ctx).Model(&models.Post{}), PostFilter{
		Published:  &published,
		CategoryID: categoryID,
	})
	if err := newestFirst(query.Select("posts.*")).Preload("Author", publicAuthor).Find(&posts).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to browse posts")
	}

	items, pagination := paginate(matchSearch(posts, q.Search), q.Page, q.PageSize)
	return &PostPage{Items: items, Pagination: pagination}, nil
}

// GetBySlug returns the post with slug together with its public author
// profile and categories. A missing post yields (nil, nil).
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.Preload("Author", publicAuthor).Where("slug = ?", slug).Take(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.FromDB(err, "failed to load post")
	}

	categories, err := loadPostCategories(db, post.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load post categories")
	}
	post.Categories = categories
	return &post, nil
}

// Create stores a new post for p. The author record is provisioned in the
// same transaction.
func (s *PostService) Create(ctx context.Context, p *Principal, in CreatePostInput) (*models.Post, error) {
	p, err := normalizePrincipal(p)
	if err != nil {
		return nil, err
	}
	if err := s.validator.validate(in); err != nil {
		return nil, err
	}
	title := utils.StripTags(in.Title)
	if title == "" {
		return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"title": "is required"})
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"content": "is required"})
	}

	post := models.Post{
		Title:     title,
		Slug:      utils.TruncateSlug(utils.Slugify(title), postSlugMax),
		Content:   in.Content,
		Excerpt:   sanitizedText(in.Excerpt),
		ImageURL:  optionalText(in.ImageURL),
		AuthorID:  p.ID,
		Published: in.Published,
	}
	categoryIDs := utils.UniqueStrings(in.CategoryIDs)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.users.ensureUser(tx, *p); err != nil {
			if apperr.CodeOf(err) == apperr.CodeAlreadyExists {
				return err
			}
			return apperr.Wrap(err, apperr.CodeInternal, "failed to ensure user")
		}
		if err := requireCategories(tx, categoryIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return apperr.Wrap(err, apperr.CodeAlreadyExists, "a post with this title already exists")
			}
			return err
		}
		return linkCategories(tx, post.ID, categoryIDs)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "failed to create post")
	}

	s.logger.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("author_id", p.ID),
		zap.String("slug", post.Slug),
		zap.Int("categories", len(categoryIDs)),
	)
	return &post, nil
}

// Update applies the supplied fields to a post owned by p.
func (s *PostService) Update(ctx context.Context, p *Principal, id string, in UpdatePostInput) (*models.Post, error) {
	p, err := normalizePrincipal(p)
	if err != nil {
		return nil, err
	}
	if err := s.validator.validate(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := utils.StripTags(*in.Title)
		if title == "" {
			return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"title": "cannot be empty"})
		}
		updates["title"] = title
		updates["slug"] = utils.TruncateSlug(utils.Slugify(title), postSlugMax)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"content": "cannot be empty"})
		}
		updates["content"] = *in.Content
	}
	if in.Excerpt != nil {
		updates["excerpt"] = sanitizedText(in.Excerpt)
	}
	if in.ImageURL != nil {
		updates["image_url"] = optionalText(in.ImageURL)
	}
	if in.Published != nil {
		updates["published"] = *in.Published
	}
	var categoryIDs []string
	if in.CategoryIDs != nil {
		categoryIDs = utils.UniqueStrings(*in.CategoryIDs)
	}

	var post models.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("post not found")
			}
			return err
		}
		if post.AuthorID != p.ID {
			return apperr.Forbidden("you can only update your own posts")
		}
		if in.CategoryIDs != nil {
			if err := requireCategories(tx, categoryIDs); err != nil {
				return err
			}
		}

		updates["updated_at"] = tx.NowFunc()
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return apperr.Wrap(err, apperr.CodeAlreadyExists, "a post with this title already exists")
			}
			return err
		}

		if in.CategoryIDs != nil {
			if err := tx.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
				return err
			}
			if err := linkCategories(tx, id, categoryIDs); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Take(&post).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "failed to update post")
	}

	s.logger.Info("post updated", zap.String("post_id", id), zap.String("author_id", p.ID))
	return &post, nil
}

// Delete removes a post owned by p and its category links. Deleting a post
// that does not exist succeeds.
func (s *PostService) Delete(ctx context.Context, p *Principal, id string) error {
	p, err := normalizePrincipal(p)
	if err != nil {
		return err
	}

	deleted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ?", id).Take(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if post.AuthorID != p.ID {
			return apperr.Forbidden("you can only delete your own posts")
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return apperr.FromDB(err, "failed to delete post")
	}

	if deleted {
		s.logger.Info("post deleted", zap.String("post_id", id), zap.String("author_id", p.ID))
	}
	return nil
}

// publicAuthor loads the author columns anonymous readers may see.
func publicAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "full_name", "avatar_url", "created_at", "updated_at")
}

func requireCategories(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var found int64
	if err := tx.Model(&models.Category{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if int(found) != len(ids) {
		return apperr.NotFound("one or more categories do not exist")
	}
	return nil
}

func linkCategories(tx *gorm.DB, postID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	links := make([]models.PostCategory, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.PostCategory{PostID: postID, CategoryID: id})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

func loadPostCategories(db *gorm.DB, postID string) ([]models.Category, error) {
	var categories []models.Category
	err := db.Model(&models.Category{}).
		Joins("JOIN post_categories ON post_categories.category_id = categories.id").
		Where("post_categories.post_id = ?", postID).
		Order("categories.name").
		Find(&categories).Error
	return categories, err
}
