package catalog

import (
	"database/sql"
	"fmt"
)

var seedIngredients = []string{
	"Rice", "Salmon", "Tuna", "Shrimp", "Egg",
	"Seaweed", "Cucumber", "Avocado", "Crab Meat",
	"Eel", "Cream Cheese", "Fish Roe",
}

var seedRecipes = []Recipe{
	// Tier 1
	{Name: "Sashimi Salmon", Price: 10000, Tier: 1, Ingredients: []string{"Salmon"}},
	{Name: "Sashimi Tuna", Price: 12000, Tier: 1, Ingredients: []string{"Tuna"}},
	{Name: "Kani Stick", Price: 9000, Tier: 1, Ingredients: []string{"Crab Meat"}},
	{Name: "Unagi Slice", Price: 8000, Tier: 1, Ingredients: []string{"Eel"}},
	{Name: "Boiled Shrimp", Price: 13000, Tier: 1, Ingredients: []string{"Shrimp"}},

	// Tier 2
	{Name: "Salmon Nigiri", Price: 25000, Tier: 2, Ingredients: []string{"Salmon", "Rice"}},
	{Name: "Tuna Nigiri", Price: 28000, Tier: 2, Ingredients: []string{"Tuna", "Rice"}},
	{Name: "Ebi Nigiri", Price: 30000, Tier: 2, Ingredients: []string{"Shrimp", "Rice"}},
	{Name: "Kani Nigiri", Price: 22000, Tier: 2, Ingredients: []string{"Crab Meat", "Rice"}},
	{Name: "Unagi Nigiri", Price: 32000, Tier: 2, Ingredients: []string{"Eel", "Rice"}},
	{Name: "Onigiri", Price: 18000, Tier: 2, Ingredients: []string{"Rice", "Seaweed"}},
	{Name: "Philly Mix", Price: 26000, Tier: 2, Ingredients: []string{"Salmon", "Cream Cheese"}},
	{Name: "Crab Salad", Price: 20000, Tier: 2, Ingredients: []string{"Crab Meat", "Cucumber"}},
	{Name: "Unakyu", Price: 24000, Tier: 2, Ingredients: []string{"Eel", "Cucumber"}},
	{Name: "Avocado Bomb", Price: 23000, Tier: 2, Ingredients: []string{"Avocado", "Rice"}},
	{Name: "Tuna Avocado", Price: 29000, Tier: 2, Ingredients: []string{"Tuna", "Avocado"}},

	// Tier 3
	{Name: "Kappa Maki", Price: 40000, Tier: 3, Ingredients: []string{"Rice", "Seaweed", "Cucumber"}},
	{Name: "Tekka Maki", Price: 50000, Tier: 3, Ingredients: []string{"Rice", "Seaweed", "Tuna"}},
	{Name: "Salmon Temaki", Price: 48000, Tier: 3, Ingredients: []string{"Rice", "Seaweed", "Salmon"}},
	{Name: "Ebi Temaki", Price: 52000, Tier: 3, Ingredients: []string{"Rice", "Seaweed", "Shrimp"}},
	{Name: "Masago Gunkan", Price: 45000, Tier: 3, Ingredients: []string{"Rice", "Seaweed", "Fish Roe"}},
	{Name: "California Roll", Price: 46000, Tier: 3, Ingredients: []string{"Rice", "Crab Meat", "Avocado"}},
	{Name: "Spicy Salmon Bowl", Price: 51000, Tier: 3, Ingredients: []string{"Rice", "Salmon", "Cucumber"}},
	{Name: "Eel Avocado Bowl", Price: 55000, Tier: 3, Ingredients: []string{"Rice", "Eel", "Avocado"}},

	// Tier 4
	{Name: "Dragon Roll", Price: 75000, Tier: 4, Ingredients: []string{"Rice", "Seaweed", "Shrimp", "Avocado"}},
	{Name: "Rainbow Roll", Price: 80000, Tier: 4, Ingredients: []string{"Rice", "Cucumber", "Salmon", "Tuna"}},
}

// Initialize (re)creates the recipe database at path and fills it with the
// shipped recipe set. Safe to call on every boot; existing tables are dropped.
func Initialize(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open recipe db %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DROP TABLE IF EXISTS recipe_ingredients`,
		`DROP TABLE IF EXISTS recipes`,
		`DROP TABLE IF EXISTS ingredients`,
		`CREATE TABLE ingredients (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE recipes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			price INTEGER NOT NULL,
			level INTEGER NOT NULL
		)`,
		`CREATE TABLE recipe_ingredients (
			recipe_id INTEGER NOT NULL REFERENCES recipes(id),
			ingredient_id INTEGER NOT NULL REFERENCES ingredients(id)
		)`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("seed schema: %w", err)
		}
	}

	ingredientIDs := make(map[string]int64, len(seedIngredients))
	for i, name := range seedIngredients {
		id := int64(i + 1)
		if _, err := tx.Exec(`INSERT INTO ingredients (id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("insert ingredient %s: %w", name, err)
		}
		ingredientIDs[name] = id
	}

	for _, r := range seedRecipes {
		res, err := tx.Exec(`INSERT INTO recipes (name, price, level) VALUES (?, ?, ?)`, r.Name, r.Price, r.Tier)
		if err != nil {
			return fmt.Errorf("insert recipe %s: %w", r.Name, err)
		}
		recipeID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("recipe id for %s: %w", r.Name, err)
		}
		for _, ing := range r.Ingredients {
			ingID, ok := ingredientIDs[ing]
			if !ok {
				return fmt.Errorf("recipe %s references unknown ingredient %s", r.Name, ing)
			}
			if _, err := tx.Exec(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES (?, ?)`, recipeID, ingID); err != nil {
				return fmt.Errorf("insert recipe ingredient %s/%s: %w", r.Name, ing, err)
			}
		}
	}

	return tx.Commit()
}

// Seed returns the shipped catalog without touching disk.
func Seed() *Catalog {
	return New(seedRecipes, seedIngredients)
}
