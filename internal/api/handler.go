package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"familyplate/internal/recipe"
)

// ExtractionClient defines the interface to the external multimodal model.
type ExtractionClient interface {
	ExtractRecipe(ctx context.Context, imageData []byte, format string) (*recipe.Extraction, error)
	EstimateTimes(ctx context.Context, title, ingredients, instructions string) (*recipe.TimeEstimate, error)
}

// RecipeStore defines the interface for recipe and shopping-list persistence.
type RecipeStore interface {
	Save(ctx context.Context, r *recipe.Recipe) error
	Get(ctx context.Context, id int64) (*recipe.Recipe, error)
	List(ctx context.Context) ([]*recipe.Recipe, error)
	Delete(ctx context.Context, id int64) error
	ShoppingList(ctx context.Context) ([]recipe.ShoppingListItem, error)
	SaveShoppingList(ctx context.Context, list []recipe.ShoppingListItem) error
}

// Handler handles HTTP requests.
type Handler struct {
	Extractor ExtractionClient
	Store     RecipeStore
	Logger    *zap.Logger

	// Injected id generators so tests can pin ids.
	NewRecipeID func() int64
	NewItemID   func() string

	MaxImageWidth uint
	JPEGQuality   int
}

// NewHandler creates a new Handler with default id generators and image
// bounds.
func NewHandler(extractor ExtractionClient, store RecipeStore, logger *zap.Logger) *Handler {
	return &Handler{
		Extractor:     extractor,
		Store:         store,
		Logger:        logger,
		NewRecipeID:   func() int64 { return time.Now().UnixMilli() },
		NewItemID:     uuid.NewString,
		MaxImageWidth: 1200,
		JPEGQuality:   80,
	}
}

// ExtractRecipe handles recipe photo uploads: the image is re-encoded, sent
// to the extraction model, post-processed, persisted, and returned.
func (h *Handler) ExtractRecipe(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("get form err: %s", err.Error()))
		return
	}

	allowedExtensions := map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		c.String(http.StatusBadRequest, "Invalid file type. Only JPEG, JPG, and PNG images are allowed.")
		return
	}

	src, err := file.Open()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("open file err: %s", err.Error()))
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("read image err: %s", err.Error()))
		return
	}

	jpegData, err := compressImage(imageData, h.MaxImageWidth, h.JPEGQuality)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid image: %s", err.Error()))
		return
	}

	// External calls get a 45-second budget.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	ext, err := h.Extractor.ExtractRecipe(ctx, jpegData, "jpeg")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.String(http.StatusRequestTimeout, "Extraction timed out after 45 seconds")
			return
		}
		c.String(http.StatusInternalServerError, fmt.Sprintf("extraction err: %s", err.Error()))
		return
	}

	image := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
	r := recipe.NewFromExtraction(ext, h.NewRecipeID(), image, time.Now().Format("1/2/2006"))

	if r.PrepTime == "" || r.CookTime == "" {
		h.estimateTimes(ctx, r)
	}

	if err := h.Store.Save(ctx, r); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save recipe: %s", err.Error()))
		return
	}

	h.Logger.Info("recipe extracted",
		zap.Int64("id", r.ID),
		zap.String("title", r.Title),
		zap.Int("sections", len(r.IngredientSections)),
	)

	c.JSON(http.StatusOK, r)
}

// estimateTimes fills empty prep/cook times with machine estimates, marked
// with a leading "~". Estimation failure is not fatal; the recipe simply
// keeps its empty fields.
func (h *Handler) estimateTimes(ctx context.Context, r *recipe.Recipe) {
	var lines []string
	for _, s := range r.IngredientSections {
		for _, item := range s.Items {
			lines = append(lines, item.Text)
		}
	}

	est, err := h.Extractor.EstimateTimes(ctx, r.Title, strings.Join(lines, ", "), strings.Join(r.Instructions, " "))
	if err != nil {
		h.Logger.Warn("time estimation failed", zap.Int64("id", r.ID), zap.Error(err))
		return
	}

	if r.PrepTime == "" {
		if est.PrepTime == "" {
			est.PrepTime = "15 minutes"
		}
		r.PrepTime = "~" + est.PrepTime
	}
	if r.CookTime == "" {
		if est.CookTime == "" {
			est.CookTime = "30 minutes"
		}
		r.CookTime = "~" + est.CookTime
	}
}

// ListRecipes returns every stored recipe, newest first.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.Store.List(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("store error: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns a single recipe by id.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid recipe id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	r, err := h.Store.Get(ctx, id)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("store error: %s", err.Error()))
		return
	}
	if r == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}

	c.JSON(http.StatusOK, r)
}

// UpdateRecipe saves an edited recipe under the id in the path.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid recipe id")
		return
	}

	var r recipe.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid recipe body: %s", err.Error()))
		return
	}
	r.ID = id

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Save(ctx, &r); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save recipe: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, &r)
}

// DeleteRecipe removes a recipe by id.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid recipe id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to delete recipe: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ShoppingPreview builds the selectable preview list for one recipe's
// ingredients.
func (h *Handler) ShoppingPreview(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid recipe id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	r, err := h.Store.Get(ctx, id)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("store error: %s", err.Error()))
		return
	}
	if r == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}

	c.JSON(http.StatusOK, recipe.BuildPreview(r))
}

// mergeRequest is the body of a shopping-list merge call.
type mergeRequest struct {
	Items []recipe.PreviewItem `json:"items"`
}

// MergeShoppingList merges confirmed preview items into the persistent
// shopping list and returns the updated list.
func (h *Handler) MergeShoppingList(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid merge body: %s", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.ShoppingList(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("store error: %s", err.Error()))
		return
	}

	list = recipe.MergeIntoShoppingList(list, req.Items, h.NewItemID)

	if err := h.Store.SaveShoppingList(ctx, list); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save shopping list: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetShoppingList returns the persistent shopping list.
func (h *Handler) GetShoppingList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.ShoppingList(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("store error: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, list)
}

// ToggleShoppingItem flips the checked state of one shopping-list item. An
// unknown id is a no-op.
func (h *Handler) ToggleShoppingItem(c *gin.Context) {
	h.updateShoppingList(c, func(list []recipe.ShoppingListItem) []recipe.ShoppingListItem {
		return recipe.ToggleChecked(list, c.Param("id"))
	})
}

// DeleteShoppingItem removes one shopping-list item. An unknown id is a
// no-op.
func (h *Handler) DeleteShoppingItem(c *gin.Context) {
	h.updateShoppingList(c, func(list []recipe.ShoppingListItem) []recipe.ShoppingListItem {
		return recipe.DeleteItem(list, c.Param("id"))
	})
}

// ClearShoppingList empties the shopping list.
func (h *Handler) ClearShoppingList(c *gin.Context) {
	h.updateShoppingList(c, recipe.Clear)
}

func (h *Handler) updateShoppingList(c *gin.Context, apply func([]recipe.ShoppingListItem) []recipe.ShoppingListItem) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.ShoppingList(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("store error: %s", err.Error()))
		return
	}

	list = apply(list)

	if err := h.Store.SaveShoppingList(ctx, list); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save shopping list: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, list)
}
