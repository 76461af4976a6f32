package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodgram/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes монтируется в защищённую группу: все операции
// с подписками требуют авторизации.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/subscriptions", h.List)
		users.POST("/:id/subscribe", h.Subscribe)
		users.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *Handler) Subscribe(c *gin.Context) {
	authorID, ok := h.authorID(c)
	if !ok {
		return
	}
	recipesLimit, _ := strconv.Atoi(c.Query("recipes_limit"))

	resp, err := h.service.Subscribe(c.Request.Context(), c.GetInt64("user_id"), authorID, recipesLimit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	authorID, ok := h.authorID(c)
	if !ok {
		return
	}
	if err := h.service.Unsubscribe(c.Request.Context(), c.GetInt64("user_id"), authorID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	recipesLimit, _ := strconv.Atoi(c.Query("recipes_limit"))

	items, total, err := h.service.List(c.Request.Context(), c.GetInt64("user_id"), page, perPage, recipesLimit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list subscriptions")
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	response.Success(c, http.StatusOK, ListResponse{
		Authors:    items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

func (h *Handler) authorID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSelfSubscribe):
		response.Error(c, http.StatusBadRequest, "SELF_SUBSCRIBE", err.Error())
	case errors.Is(err, ErrAuthorNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrAlreadySubscribed):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrNotSubscribed):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "subscription operation failed")
	}
}
