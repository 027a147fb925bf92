package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkblog/apperr"
	"github.com/cppla/inkblog/middleware"
	"github.com/cppla/inkblog/services"
	"github.com/cppla/inkblog/utils"
)

// PostController exposes post listing, the public feed and author CRUD.
type PostController struct {
	posts *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService) *PostController {
	return &PostController{posts: posts}
}

// ListPosts returns posts filtered by published, authorId, categoryId and limit.
func (p *PostController) ListPosts(ctx *gin.Context) {
	filter := services.PostFilter{
		AuthorID:   strings.TrimSpace(ctx.Query("authorId")),
		CategoryID: strings.TrimSpace(ctx.Query("categoryId")),
	}

	if v := strings.TrimSpace(ctx.Query("published")); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			utils.Fail(ctx, apperr.ValidationWithDetails("validation failed", map[string]string{
				"published": "must be true or false",
			}))
			return
		}
		filter.Published = &published
	}
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > services.MaxListLimit {
			utils.Fail(ctx, apperr.ValidationWithDetails("validation failed", map[string]string{
				"limit": "must be an integer between 1 and 100",
			}))
			return
		}
		filter.Limit = limit
	}

	posts, err := p.posts.List(ctx.Request.Context(), filter)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// Feed returns one page of published posts for the public feed.
func (p *PostController) Feed(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	result, err := p.posts.Browse(ctx.Request.Context(), services.BrowseQuery{
		CategoryID:   ctx.Query("categoryId"),
		CategorySlug: ctx.Query("category"),
		Search:       ctx.Query("search"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// GetPostBySlug returns a single post with its author and categories.
func (p *PostController) GetPostBySlug(ctx *gin.Context) {
	post, err := p.posts.GetBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if post == nil {
		utils.Fail(ctx, apperr.NotFound("post not found"))
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost stores a post authored by the caller.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req services.CreatePostInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), middleware.PrincipalFrom(ctx), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"post": post})
}

// UpdatePost changes the supplied fields of the caller's post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req services.UpdatePostInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	post, err := p.posts.Update(ctx.Request.Context(), middleware.PrincipalFrom(ctx), ctx.Param("id"), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes the caller's post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	if err := p.posts.Delete(ctx.Request.Context(), middleware.PrincipalFrom(ctx), ctx.Param("id")); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"success": true})
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := services.DefaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
		pageSize = min(s, services.MaxPageSize)
	}
	return page, pageSize
}
