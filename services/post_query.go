package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/inkblog/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostFilter narrows post listings. Zero values mean "no constraint".
type PostFilter struct {
	Published  *bool
	AuthorID   string
	CategoryID string
	Limit      int
}

// BrowseQuery drives the public feed. CategorySlug is resolved to an id
// when CategoryID is empty.
type BrowseQuery struct {
	CategoryID   string
	CategorySlug string
	Search       string
	Page         int
	PageSize     int
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PostPage is one page of the feed.
type PostPage struct {
	Items      []models.Post `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// applyPostFilter adds the filter predicates to q, which must be scoped to
// the posts model. The category predicate joins post_categories.
func applyPostFilter(q *gorm.DB, f PostFilter) *gorm.DB {
	if f.Published != nil {
		q = q.Where("posts.published = ?", *f.Published)
	}
	if f.AuthorID != "" {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	}
	if f.CategoryID != "" {
		q = q.Joins("JOIN post_categories ON post_categories.post_id = posts.id").
			Where("post_categories.category_id = ?", f.CategoryID)
	}
	return q
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("posts.created_at DESC").Order("posts.id DESC")
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// paginate slices items for the requested page. Pages past the end are empty.
func paginate[T any](items []T, page, size int) ([]T, Pagination) {
	page, size = normalizePage(page, size)
	total := len(items)
	p := Pagination{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}

	start := (page - 1) * size
	if start >= total {
		return []T{}, p
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], p
}

// matchSearch filters posts whose title or content contains term,
// case-insensitively. An empty term keeps everything.
func matchSearch(posts []models.Post, term string) []models.Post {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Content), term) {
			out = append(out, p)
		}
	}
	return out
}
