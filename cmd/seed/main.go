package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/database"
	"github.com/forkful/backend/internal/service"
)

type ingredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagSeed struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

var defaultTags = []tagSeed{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// Loads the ingredient catalog from a JSON file and creates the default
// tag set. Rows that already exist are skipped.
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "Path to the ingredients JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	catalog := service.NewCatalogService(db)
	ctx := context.Background()

	content, err := os.ReadFile(*ingredientsPath)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *ingredientsPath, err)
	}
	var ingredients []ingredientSeed
	if err := json.Unmarshal(content, &ingredients); err != nil {
		log.Fatalf("failed to parse %s: %v", *ingredientsPath, err)
	}

	created, skipped := 0, 0
	for _, ing := range ingredients {
		_, err := catalog.CreateIngredient(ctx, ing.Name, ing.MeasurementUnit)
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrAlreadyExists):
			skipped++
		default:
			log.Fatalf("failed to create ingredient %q: %v", ing.Name, err)
		}
	}
	log.Printf("Ingredients: %d created, %d already present", created, skipped)

	for _, tag := range defaultTags {
		if _, err := catalog.CreateTag(ctx, tag.Name, tag.Color, tag.Slug); err != nil {
			if errors.Is(err, service.ErrAlreadyExists) {
				continue
			}
			log.Fatalf("failed to create tag %q: %v", tag.Name, err)
		}
		log.Printf("Created tag %s", tag.Slug)
	}
}
