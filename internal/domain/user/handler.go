package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodgram/internal/domain/upload"
	"foodgram/internal/pkg/response"
	"foodgram/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes — маршруты без аутентификации.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	users := rg.Group("/users")
	{
		users.GET("", h.List)
		users.GET("/:id", h.Get)
	}
}

// RegisterProtectedRoutes — маршруты текущего пользователя (за JWT middleware).
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/me", h.Me)
		users.PUT("/me/avatar", h.SetAvatar)
		users.DELETE("/me/avatar", h.DeleteAvatar)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
			response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
		case errors.Is(err, ErrInvalidUsername):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed",
				map[string]string{"username": err.Error()})
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to register")
		}
		return
	}
	response.Success(c, http.StatusCreated, ToResponse(u, false))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to login")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": result.AccessToken,
		"user":  ToResponse(result.User, false),
	})
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetInt64("user_id")
	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get profile")
		return
	}
	response.Success(c, http.StatusOK, ToResponse(u, false))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
		return
	}
	u, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get user")
		return
	}
	viewerID := c.GetInt64("user_id")
	response.Success(c, http.StatusOK, ToResponse(u, h.service.IsSubscribed(c.Request.Context(), viewerID, u.ID)))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	users, total, err := h.service.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list users")
		return
	}

	viewerID := c.GetInt64("user_id")
	items := make([]Response, len(users))
	for i, u := range users {
		items[i] = ToResponse(u, h.service.IsSubscribed(c.Request.Context(), viewerID, u.ID))
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	response.Success(c, http.StatusOK, ListResponse{
		Users:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

func (h *Handler) SetAvatar(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
		return
	}

	url, err := h.service.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrInvalidEncoding),
			errors.Is(err, upload.ErrInvalidMimeType),
			errors.Is(err, upload.ErrEmptyFile),
			errors.Is(err, upload.ErrFileTooLarge):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed",
				map[string]string{"avatar": err.Error()})
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to set avatar")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar": url})
}

func (h *Handler) DeleteAvatar(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if err := h.service.DeleteAvatar(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrNoAvatar) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "user has no avatar")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to delete avatar")
		return
	}
	c.Status(http.StatusNoContent)
}
