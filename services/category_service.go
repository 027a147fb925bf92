package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/inkblog/apperr"
	"github.com/cppla/inkblog/models"
	"github.com/cppla/inkblog/utils"
)

const categorySlugMax = 120

type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateCategoryInput changes only the non-nil fields.
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CategoryService struct {
	db        *gorm.DB
	logger    *zap.Logger
	validator *inputValidator
}

func NewCategoryService(db *gorm.DB, logger *zap.Logger) *CategoryService {
	return &CategoryService{db: db, logger: logger, validator: newInputValidator()}
}

// List returns every category, newest first.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&categories).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to list categories")
	}
	return categories, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, apperr.FromDB(err, "failed to load category")
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	if err := s.validator.validate(in); err != nil {
		return nil, err
	}
	name := utils.StripTags(in.Name)
	if name == "" {
		return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
	}

	category := models.Category{
		Name:        name,
		Slug:        utils.TruncateSlug(utils.Slugify(name), categorySlugMax),
		Description: sanitizedText(in.Description),
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if apperr.IsDuplicateKey(err) {
			return nil, apperr.Wrap(err, apperr.CodeAlreadyExists, "a category with this name already exists")
		}
		return nil, apperr.FromDB(err, "failed to create category")
	}

	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("slug", category.Slug))
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in UpdateCategoryInput) (*models.Category, error) {
	if err := s.validator.validate(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := utils.StripTags(*in.Name)
		if name == "" {
			return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"name": "cannot be empty"})
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = sanitizedText(in.Description)
	}

	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("category not found")
			}
			return err
		}

		if name, ok := updates["name"].(string); ok && name != category.Name {
			updates["slug"] = utils.TruncateSlug(utils.Slugify(name), categorySlugMax)
		}
		updates["updated_at"] = tx.NowFunc()

		if err := tx.Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return apperr.Wrap(err, apperr.CodeAlreadyExists, "a category with this name already exists")
			}
			return err
		}
		return tx.Where("id = ?", id).Take(&category).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "failed to update category")
	}
	return &category, nil
}

// Delete removes a category that no post references.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ?", id).Take(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("category not found")
			}
			return err
		}

		var inUse int64
		if err := tx.Model(&models.PostCategory{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return apperr.Conflict("cannot delete category with assigned posts")
		}
		return tx.Where("id = ?", id).Delete(&models.Category{}).Error
	})
	if err != nil {
		return apperr.FromDB(err, "failed to delete category")
	}

	s.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

// sanitizedText strips markup from an optional text field; blanks become nil.
func sanitizedText(s *string) *string {
	if s == nil {
		return nil
	}
	v := utils.StripTags(*s)
	return optionalText(&v)
}
