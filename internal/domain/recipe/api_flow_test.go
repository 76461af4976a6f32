package recipe_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/database"
	"foodgram/internal/domain/ingredient"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/subscription"
	"foodgram/internal/domain/tag"
	"foodgram/internal/domain/upload"
	"foodgram/internal/domain/user"
	"foodgram/internal/middleware"
	jwtsvc "foodgram/internal/pkg/jwt"
)

type apiSuite struct {
	router *gin.Engine
	tags   []*tag.Tag
	flour  *ingredient.Ingredient
	eggs   *ingredient.Ingredient
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

var pngPayload = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
})

func newAPISuite(t *testing.T) *apiSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Connect(dsn)
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&tag.Tag{},
		&ingredient.Ingredient{},
		&upload.Upload{},
		&recipe.Recipe{},
		&recipe.RecipeIngredient{},
		&recipe.UserRecipeRelation{},
		&subscription.Subscription{},
	))

	tags := []*tag.Tag{
		{Name: "Завтрак", Slug: "breakfast"},
		{Name: "Обед", Slug: "lunch"},
	}
	for _, tg := range tags {
		require.NoError(t, db.Create(tg).Error)
	}
	flour := &ingredient.Ingredient{Name: "мука", MeasurementUnit: "г"}
	eggs := &ingredient.Ingredient{Name: "яйца", MeasurementUnit: "шт."}
	require.NoError(t, db.Create(flour).Error)
	require.NoError(t, db.Create(eggs).Error)

	userRepo := user.NewRepository(db)
	tagRepo := tag.NewRepository(db)
	ingredientRepo := ingredient.NewRepository(db)
	recipeRepo := recipe.NewRepository(db)
	subscriptionRepo := subscription.NewRepository(db)

	j := jwtsvc.New("test-secret", time.Hour)
	uploadService := upload.NewService(upload.NewRepository(db), t.TempDir(), "")

	userService := user.NewService(userRepo, j, uploadService, subscriptionRepo)
	recipeService := recipe.NewService(recipeRepo, tagRepo, ingredientRepo, uploadService, subscriptionRepo, nil, recipe.ShortLinkConfig{})
	subscriptionService := subscription.NewService(subscriptionRepo, userRepo, recipeRepo)

	userHandler := user.NewHandler(userService)
	recipeHandler := recipe.NewHandler(recipeService, userRepo)
	subscriptionHandler := subscription.NewHandler(subscriptionService)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(j))
		{
			userHandler.RegisterPublicRoutes(public)
			tag.NewHandler(tagRepo).RegisterRoutes(public)
			ingredient.NewHandler(ingredientRepo).RegisterRoutes(public)
			recipeHandler.RegisterPublicRoutes(public)
		}

		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			userHandler.RegisterProtectedRoutes(protected)
			recipeHandler.RegisterProtectedRoutes(protected)
			subscriptionHandler.RegisterRoutes(protected)
		}
	}
	recipeHandler.RegisterShortLinkRoute(r)

	return &apiSuite{router: r, tags: tags, flour: flour, eggs: eggs}
}

func (s *apiSuite) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *apiSuite) registerAndLogin(t *testing.T, email, username string) string {
	t.Helper()

	w, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      email,
		"username":   username,
		"first_name": "Тест",
		"last_name":  "Тестов",
		"password":   "strongpass123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "strongpass123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (s *apiSuite) createRecipe(t *testing.T, token, name string) int64 {
	t.Helper()

	w, env := s.do(t, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         name,
		"text":         "Смешать и готовить.",
		"image":        pngPayload,
		"cooking_time": 30,
		"tags":         []int64{s.tags[0].ID},
		"ingredients": []gin.H{
			{"id": s.flour.ID, "amount": 200},
			{"id": s.eggs.ID, "amount": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func TestRecipeLifecycleOverHTTP(t *testing.T) {
	s := newAPISuite(t)
	author := s.registerAndLogin(t, "author@example.com", "author")

	recipeID := s.createRecipe(t, author, "Блины")

	// Анонимное чтение.
	w, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipeID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec struct {
		Name        string `json:"name"`
		IsFavorited bool   `json:"is_favorited"`
		Author      struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Блины", rec.Name)
	assert.Equal(t, "author", rec.Author.Username)
	assert.False(t, rec.IsFavorited)

	// Анонимная запись запрещена.
	w, _ = s.do(t, http.MethodPost, "/api/v1/recipes", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Чужой рецепт нельзя ни править, ни удалять.
	other := s.registerAndLogin(t, "other@example.com", "other")
	w, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/recipes/%d", recipeID), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	// Невалидный payload возвращает все ошибки разом.
	w, env = s.do(t, http.MethodPost, "/api/v1/recipes", author, gin.H{
		"name": "", "text": "", "cooking_time": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Contains(t, details, "tags")
	assert.Contains(t, details, "ingredients")
	assert.Contains(t, details, "image")

	// Удаление автором.
	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/recipes/%d", recipeID), author, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipeID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteAndCartOverHTTP(t *testing.T) {
	s := newAPISuite(t)
	author := s.registerAndLogin(t, "author@example.com", "author")
	viewer := s.registerAndLogin(t, "viewer@example.com", "viewer")

	recipeID := s.createRecipe(t, author, "Блины")

	favorite := fmt.Sprintf("/api/v1/recipes/%d/favorite", recipeID)
	w, _ := s.do(t, http.MethodPost, favorite, viewer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(t, http.MethodPost, favorite, viewer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	// Флаг зрителя в выдаче.
	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipeID), viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec struct {
		IsFavorited      bool `json:"is_favorited"`
		IsInShoppingCart bool `json:"is_in_shopping_cart"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.True(t, rec.IsFavorited)
	assert.False(t, rec.IsInShoppingCart)

	// Корзина и выгрузка списка покупок.
	cart := fmt.Sprintf("/api/v1/recipes/%d/shopping_cart", recipeID)
	w, _ = s.do(t, http.MethodPost, cart, viewer, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.Contains(t, w.Body.String(), "мука (г) — 200")
	assert.Contains(t, w.Body.String(), "Блины")

	w, _ = s.do(t, http.MethodDelete, favorite, viewer, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(t, http.MethodDelete, favorite, viewer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShortLinkOverHTTP(t *testing.T) {
	s := newAPISuite(t)
	author := s.registerAndLogin(t, "author@example.com", "author")
	recipeID := s.createRecipe(t, author, "Блины")

	w, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d/get-link", recipeID), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		ShortLink string `json:"short-link"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ShortLink)

	idx := strings.LastIndex(data.ShortLink, "/s/")
	require.GreaterOrEqual(t, idx, 0, data.ShortLink)
	code := data.ShortLink[idx+len("/s/"):]

	w, _ = s.do(t, http.MethodGet, "/s/"+code, "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/recipes/%d", recipeID), w.Header().Get("Location"))

	w, _ = s.do(t, http.MethodGet, "/s/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionsOverHTTP(t *testing.T) {
	s := newAPISuite(t)
	author := s.registerAndLogin(t, "author@example.com", "author")
	viewer := s.registerAndLogin(t, "viewer@example.com", "viewer")

	s.createRecipe(t, author, "Блины")
	s.createRecipe(t, author, "Борщ")

	// id автора берём из публичного списка пользователей.
	w, env := s.do(t, http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Users []struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	var authorID, viewerID int64
	for _, u := range list.Users {
		switch u.Username {
		case "author":
			authorID = u.ID
		case "viewer":
			viewerID = u.ID
		}
	}
	require.NotZero(t, authorID)
	require.NotZero(t, viewerID)

	// Подписка на себя запрещена.
	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/subscribe", viewerID), viewer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SELF_SUBSCRIBE", env.Error.Code)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/subscribe", authorID), viewer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub struct {
		Username     string `json:"username"`
		RecipesCount int64  `json:"recipes_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.Equal(t, "author", sub.Username)
	assert.EqualValues(t, 2, sub.RecipesCount)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/subscribe", authorID), viewer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Список подписок с ограничением подборки рецептов.
	w, env = s.do(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=1", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var subs struct {
		Authors []struct {
			Username string `json:"username"`
			Recipes  []struct {
				Name string `json:"name"`
			} `json:"recipes"`
			RecipesCount int64 `json:"recipes_count"`
		} `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &subs))
	require.Len(t, subs.Authors, 1)
	assert.Len(t, subs.Authors[0].Recipes, 1)
	assert.EqualValues(t, 2, subs.Authors[0].RecipesCount)

	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d/subscribe", authorID), viewer, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d/subscribe", authorID), viewer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
