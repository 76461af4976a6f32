package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"foodgram/internal/database"
	"foodgram/internal/domain/ingredient"
	"foodgram/internal/domain/recipe"
	"foodgram/internal/domain/subscription"
	"foodgram/internal/domain/tag"
	"foodgram/internal/domain/upload"
	"foodgram/internal/domain/user"
)

func main() {
	_ = godotenv.Load()

	tagsPath := flag.String("tags", "data/tags.json", "path to tags JSON")
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to ingredients JSON")
	demo := flag.Bool("demo", false, "create demo users and recipes")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "foodgram.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
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
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()

	// ================== TAGS ==================
	log.Println("Importing tags...")
	var tags []*tag.Tag
	if err := readJSON(*tagsPath, &tags); err != nil {
		log.Fatal(err)
	}
	n, err := tag.NewRepository(db).Import(ctx, tags)
	if err != nil {
		log.Fatal("tags import failed:", err)
	}
	log.Printf("Tags imported: %d new", n)

	// ================== INGREDIENTS ==================
	log.Println("Importing ingredients...")
	var ingredients []*ingredient.Ingredient
	if err := readJSON(*ingredientsPath, &ingredients); err != nil {
		log.Fatal(err)
	}
	n, err = ingredient.NewRepository(db).Import(ctx, ingredients)
	if err != nil {
		log.Fatal("ingredients import failed:", err)
	}
	log.Printf("Ingredients imported: %d new", n)

	if !*demo {
		return
	}

	// ================== DEMO USERS ==================
	log.Println("Creating demo users...")
	demoUsers := []struct {
		email, username, first, last string
	}{
		{"vasya@foodgram.ru", "vasya.pupkin", "Вася", "Пупкин"},
		{"masha@foodgram.ru", "masha.ivanova", "Маша", "Иванова"},
		{"petr@foodgram.ru", "petr.sidorov", "Пётр", "Сидоров"},
	}

	users := make([]*user.User, 0, len(demoUsers))
	for _, d := range demoUsers {
		hash, _ := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
		u := &user.User{
			Email:        d.email,
			Username:     d.username,
			FirstName:    d.first,
			LastName:     d.last,
			PasswordHash: string(hash),
		}
		if err := db.Create(u).Error; err != nil {
			log.Printf("skip user %s: %v", d.email, err)
			continue
		}
		users = append(users, u)
		log.Printf("User created: %s / demo12345", d.email)
	}
	if len(users) < 2 || len(tags) == 0 || len(ingredients) < 2 {
		log.Println("Not enough data for demo recipes, done")
		return
	}

	// ================== DEMO RECIPES ==================
	log.Println("Creating demo recipes...")
	demoRecipes := []struct {
		author *user.User
		name   string
		text   string
		mins   int
	}{
		{users[0], "Блины на кефире", "Смешать ингредиенты, жарить на раскалённой сковороде.", 30},
		{users[0], "Борщ классический", "Сварить бульон, добавить овощи, томить час.", 120},
		{users[1], "Овсяная каша", "Залить хлопья молоком, варить 10 минут.", 15},
	}
	for i, d := range demoRecipes {
		rec := &recipe.Recipe{
			AuthorID:    d.author.ID,
			Name:        d.name,
			Text:        d.text,
			ImageURL:    "/static/uploads/demo/recipe.jpg",
			CookingTime: d.mins,
			Tags:        []tag.Tag{*tags[i%len(tags)]},
			Ingredients: []recipe.RecipeIngredient{
				{IngredientID: ingredients[i%len(ingredients)].ID, Amount: 200},
				{IngredientID: ingredients[(i+1)%len(ingredients)].ID, Amount: 2},
			},
		}
		if err := db.Create(rec).Error; err != nil {
			log.Printf("skip recipe %q: %v", d.name, err)
			continue
		}
		log.Printf("Recipe created: %s (author %s)", d.name, d.author.Username)
	}

	// ================== DEMO SUBSCRIPTIONS ==================
	subs := []subscription.Subscription{
		{FollowerID: users[1].ID, AuthorID: users[0].ID},
	}
	if len(users) > 2 {
		subs = append(subs, subscription.Subscription{FollowerID: users[2].ID, AuthorID: users[0].ID})
	}
	for _, s := range subs {
		if err := db.Create(&s).Error; err != nil {
			log.Printf("skip subscription %d->%d: %v", s.FollowerID, s.AuthorID, err)
		}
	}

	log.Println("Seed completed")
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
