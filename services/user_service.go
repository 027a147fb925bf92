package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/inkblog/apperr"
	"github.com/cppla/inkblog/models"
	"github.com/cppla/inkblog/utils"
)

const ensureUserSavepoint = "ensure_user"

// UserService keeps the local users table in step with the auth provider.
type UserService struct {
	db        *gorm.DB
	logger    *zap.Logger
	validator *inputValidator
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger, validator: newInputValidator()}
}

// UpsertUserInput overrides profile fields carried by the token. Nil fields
// keep the token values; empty strings clear them.
type UpsertUserInput struct {
	FullName  *string `json:"fullName" validate:"omitempty,max=255"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=2048,url"`
}

// DashboardStats summarizes the principal's own content.
type DashboardStats struct {
	TotalPosts     int64 `json:"totalPosts"`
	PublishedPosts int64 `json:"publishedPosts"`
	Categories     int64 `json:"categories"`
}

// EnsureUser creates or refreshes the stored record for p. Calling it any
// number of times with the same principal leaves exactly one row.
func (s *UserService) EnsureUser(ctx context.Context, p Principal) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := s.ensureUser(tx, p)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "failed to sync user")
	}
	return user, nil
}

// Upsert provisions or refreshes the caller's record, applying any profile
// overrides from in.
func (s *UserService) Upsert(ctx context.Context, p *Principal, in UpsertUserInput) (*models.User, error) {
	p, err := normalizePrincipal(p)
	if err != nil {
		return nil, err
	}
	in.FullName = optionalText(in.FullName)
	in.AvatarURL = optionalText(in.AvatarURL)
	if err := s.validator.validate(in); err != nil {
		return nil, err
	}
	if in.FullName != nil {
		p.FullName = utils.StripTags(*in.FullName)
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
	return s.EnsureUser(ctx, *p)
}

// ensureUser runs inside an open transaction.
func (s *UserService) ensureUser(tx *gorm.DB, p Principal) (*models.User, error) {
	id := strings.TrimSpace(p.ID)
	email := strings.TrimSpace(p.Email)
	if id == "" || email == "" {
		return nil, apperr.Validation("principal must carry an id and an email")
	}

	var user models.User
	err := tx.Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.insertUser(tx, p, id, email)
	}
	if err != nil {
		return nil, apperr.FromDB(err, "failed to load user")
	}
	return s.refreshUser(tx, &user, p, email)
}

func (s *UserService) insertUser(tx *gorm.DB, p Principal, id, email string) (*models.User, error) {
	user := models.User{
		ID:        id,
		Email:     email,
		FullName:  optionalText(&p.FullName),
		AvatarURL: optionalText(&p.AvatarURL),
	}

	if err := tx.SavePoint(ensureUserSavepoint).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to create user")
	}
	err := tx.Create(&user).Error
	if err == nil {
		s.logger.Info("user provisioned", zap.String("user_id", id))
		return &user, nil
	}
	if !apperr.IsDuplicateKey(err) {
		return nil, apperr.FromDB(err, "failed to create user")
	}

	// Either a concurrent request provisioned the same id first, or the
	// email belongs to a different id.
	if rbErr := tx.RollbackTo(ensureUserSavepoint).Error; rbErr != nil {
		return nil, apperr.FromDB(rbErr, "failed to create user")
	}
	var existing models.User
	lookupErr := tx.Where("id = ?", id).Take(&existing).Error
	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(err, apperr.CodeAlreadyExists, "email is already linked to another account")
	}
	if lookupErr != nil {
		return nil, apperr.FromDB(lookupErr, "failed to load user")
	}
	return s.refreshUser(tx, &existing, p, email)
}

func (s *UserService) refreshUser(tx *gorm.DB, user *models.User, p Principal, email string) (*models.User, error) {
	now := tx.NowFunc()
	fullName := optionalText(&p.FullName)
	avatarURL := optionalText(&p.AvatarURL)

	err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"email":      email,
		"full_name":  fullName,
		"avatar_url": avatarURL,
		"updated_at": now,
	}).Error
	if err != nil {
		if apperr.IsDuplicateKey(err) {
			return nil, apperr.Wrap(err, apperr.CodeAlreadyExists, "email is already linked to another account")
		}
		return nil, apperr.FromDB(err, "failed to update user")
	}

	user.Email = email
	user.FullName = fullName
	user.AvatarURL = avatarURL
	user.UpdatedAt = now
	return user, nil
}

// GetByID returns the stored user with id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.FromDB(err, "failed to load user")
	}
	return &user, nil
}

// Current returns the stored record of the calling principal.
func (s *UserService) Current(ctx context.Context, p *Principal) (*models.User, error) {
	p, err := normalizePrincipal(p)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, p.ID)
}

// GetDashboardStats counts the principal's posts, published posts and the
// distinct categories those posts use.
func (s *UserService) GetDashboardStats(ctx context.Context, p *Principal) (*DashboardStats, error) {
	p, err := normalizePrincipal(p)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	published := true
	var stats DashboardStats

	if err := applyPostFilter(db.Model(&models.Post{}), PostFilter{AuthorID: p.ID}).
		Count(&stats.TotalPosts).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to count posts")
	}
	if err := applyPostFilter(db.Model(&models.Post{}), PostFilter{AuthorID: p.ID, Published: &published}).
		Count(&stats.PublishedPosts).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to count published posts")
	}
	if err := db.Model(&models.PostCategory{}).
		Joins("JOIN posts ON posts.id = post_categories.post_id").
		Where("posts.author_id = ?", p.ID).
		Distinct("post_categories.category_id").
		Count(&stats.Categories).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to count categories")
	}
	return &stats, nil
}
