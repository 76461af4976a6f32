package recipe

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"foodgram/internal/domain/user"
	"foodgram/internal/pkg/response"
)

type Handler struct {
	service *Service
	users   user.Repository
}

func NewHandler(service *Service, users user.Repository) *Handler {
	return &Handler{service: service, users: users}
}

// RegisterPublicRoutes — чтение доступно анонимно (флаги зрителя включаются
// через OptionalAuth в main).
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/:id", h.Get)
		recipes.GET("/:id/get-link", h.GetShortLink)
	}
}

// RegisterProtectedRoutes — запись и персональные списки (за JWT middleware).
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")
	{
		recipes.POST("", h.Create)
		recipes.PATCH("/:id", h.Update)
		recipes.DELETE("/:id", h.Delete)

		recipes.POST("/:id/favorite", h.relationAdd(KindFavorite))
		recipes.DELETE("/:id/favorite", h.relationRemove(KindFavorite))
		recipes.POST("/:id/shopping_cart", h.relationAdd(KindCart))
		recipes.DELETE("/:id/shopping_cart", h.relationRemove(KindCart))

		recipes.GET("/download_shopping_cart", h.DownloadShoppingCart)
	}
}

// RegisterShortLinkRoute вешает редирект короткой ссылки на корень,
// вне /api/v1: GET /s/:code -> 302 /recipes/{id}.
func (h *Handler) RegisterShortLinkRoute(r gin.IRouter) {
	r.GET("/s/:code", h.ResolveShortLink)
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	authorID, _ := strconv.ParseInt(c.Query("author"), 10, 64)

	viewerID := c.GetInt64("user_id")
	f := Filter{
		AuthorID: authorID,
		TagSlugs: c.QueryArray("tags"),
		Page:     page,
		PerPage:  perPage,
	}
	if c.Query("is_favorited") == "1" && viewerID != 0 {
		f.FavoritedBy = viewerID
	}
	if c.Query("is_in_shopping_cart") == "1" && viewerID != 0 {
		f.InCartOf = viewerID
	}

	recipes, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list recipes")
		return
	}

	items := make([]Response, len(recipes))
	for i, rec := range recipes {
		items[i] = h.service.BuildResponse(c.Request.Context(), rec, viewerID)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	totalPages := int(total) / f.PerPage
	if int(total)%f.PerPage > 0 {
		totalPages++
	}
	response.Success(c, http.StatusOK, ListResponse{
		Recipes:    items,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: totalPages,
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to get recipe")
		return
	}
	response.Success(c, http.StatusOK, h.service.BuildResponse(c.Request.Context(), rec, c.GetInt64("user_id")))
}

func (h *Handler) Create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	rec, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), in)
	if err != nil {
		h.writeError(c, err, "failed to create recipe")
		return
	}
	response.Success(c, http.StatusCreated, h.service.BuildResponse(c.Request.Context(), rec, c.GetInt64("user_id")))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	rec, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), id, in)
	if err != nil {
		h.writeError(c, err, "failed to update recipe")
		return
	}
	response.Success(c, http.StatusOK, h.service.BuildResponse(c.Request.Context(), rec, c.GetInt64("user_id")))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeError(c, err, "failed to delete recipe")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) relationAdd(kind RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.recipeID(c)
		if !ok {
			return
		}
		rec, err := h.service.AddRelation(c.Request.Context(), c.GetInt64("user_id"), id, kind)
		if err != nil {
			h.writeError(c, err, "failed to add recipe")
			return
		}
		response.Success(c, http.StatusCreated, ToBrief(rec))
	}
}

func (h *Handler) relationRemove(kind RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.recipeID(c)
		if !ok {
			return
		}
		if err := h.service.RemoveRelation(c.Request.Context(), c.GetInt64("user_id"), id, kind); err != nil {
			h.writeError(c, err, "failed to remove recipe")
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetShortLink выдаёт (и при первом обращении назначает) короткую ссылку.
func (h *Handler) GetShortLink(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	code, err := h.service.EnsureShortLink(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to allocate short link")
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	response.Success(c, http.StatusOK, gin.H{
		"short-link": fmt.Sprintf("%s://%s/s/%s", scheme, c.Request.Host, code),
	})
}

// ResolveShortLink переводит код в редирект на канонический адрес рецепта;
// внутренний id наружу в самой ссылке не светится.
func (h *Handler) ResolveShortLink(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	recipeID, err := h.service.ResolveShortLink(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, ErrShortLinkNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "short link not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to resolve short link")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", recipeID))
}

// DownloadShoppingCart отдаёт текстовый файл со списком покупок.
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	userID := c.GetInt64("user_id")

	owner, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load user")
		return
	}

	items, recipes, err := h.service.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to build shopping list")
		return
	}

	doc := RenderShoppingList(owner, time.Now(), items, recipes)
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

func (h *Handler) recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid recipe id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "recipe not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrRelationExists):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrRelationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrShortLinkExhausted):
		response.Error(c, http.StatusInternalServerError, "SHORT_LINK_EXHAUSTED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
