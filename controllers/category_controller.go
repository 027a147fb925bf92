package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/inkblog/services"
	"github.com/cppla/inkblog/utils"
)

// CategoryController manages the shared category taxonomy.
type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// ListCategories returns all categories, newest first.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	categories, err := c.categories.List(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": categories})
}

func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req services.CreateCategoryInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	category, err := c.categories.Create(ctx.Request.Context(), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"category": category})
}

func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	var req services.UpdateCategoryInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, "invalid request payload")
		return
	}

	category, err := c.categories.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory refuses categories still assigned to posts.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	if err := c.categories.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"success": true})
}
