package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"foodgram/internal/database"
	"foodgram/internal/domain/feed"
	"foodgram/internal/domain/ingredient"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/subscription"
	"foodgram/internal/domain/tag"
	"foodgram/internal/domain/upload"
	"foodgram/internal/domain/user"
	"foodgram/internal/middleware"
	jwtsvc "foodgram/internal/pkg/jwt"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&tag.Tag{},
		&ingredient.Ingredient{},
		&upload.Upload{},
		&recipe.Recipe{},
		&recipe.RecipeIngredient{},
		&recipe.UserRecipeRelation{},
		&subscription.Subscription{},
	); err != nil {
		log.Fatal(err)
	}

	userRepo := user.NewRepository(db)
	tagRepo := tag.NewRepository(db)
	ingredientRepo := ingredient.NewRepository(db)
	uploadRepo := upload.NewRepository(db)
	recipeRepo := recipe.NewRepository(db)
	subscriptionRepo := subscription.NewRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	uploadsDir := os.Getenv("UPLOADS_DIR")
	uploadService := upload.NewService(uploadRepo, uploadsDir, "")

	hub := feed.NewHub()
	notifier := feed.NewNotifier(hub, subscriptionRepo)

	userService := user.NewService(userRepo, j, uploadService, subscriptionRepo)
	recipeService := recipe.NewService(
		recipeRepo,
		tagRepo,
		ingredientRepo,
		uploadService,
		subscriptionRepo,
		notifier,
		recipe.ShortLinkConfig{
			Length:     envInt("SHORT_LINK_LENGTH", recipe.DefaultShortLinkLength),
			MaxRetries: envInt("SHORT_LINK_MAX_RETRIES", recipe.DefaultShortLinkMaxRetries),
		},
	)
	subscriptionService := subscription.NewService(subscriptionRepo, userRepo, recipeRepo)

	userHandler := user.NewHandler(userService)
	tagHandler := tag.NewHandler(tagRepo)
	ingredientHandler := ingredient.NewHandler(ingredientRepo)
	recipeHandler := recipe.NewHandler(recipeService, userRepo)
	subscriptionHandler := subscription.NewHandler(subscriptionService)
	feedHandler := feed.NewHandler(hub, j)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public (OptionalAuth включает зрительские флаги для аутентифицированных)
		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(j))
		{
			userHandler.RegisterPublicRoutes(public)
			tagHandler.RegisterRoutes(public)
			ingredientHandler.RegisterRoutes(public)
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
	r.GET("/ws/feed", feedHandler.HandleWebSocket)

	if uploadsDir == "" {
		uploadsDir = upload.UploadsBaseDir
	}
	r.Static(upload.StaticURLBase, uploadsDir)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s: invalid integer %q", key, v)
	}
	return n
}
