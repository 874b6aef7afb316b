package catalog

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Recipe is one dish the kitchen can produce. Ingredients is kept sorted so
// two recipes compare by multiset, not by listing order. Duplicates are
// meaningful: a recipe wanting two Rice is not the same as one wanting one.
type Recipe struct {
	Name        string
	Price       int
	Tier        int
	Ingredients []string
}

// Catalog is the read-only recipe lookup service. It is built once at startup
// and never mutated, so concurrent readers need no locking.
type Catalog struct {
	byKey       map[string]Recipe
	recipes     []Recipe
	ingredients []string
}

// Key canonicalizes an ingredient multiset: sorted, joined with a separator
// that cannot appear in ingredient names.
func Key(ingredients []string) string {
	sorted := make([]string, len(ingredients))
	copy(sorted, ingredients)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// New builds a catalog from already-loaded recipes. Used by Open and by tests
// that don't want a database on disk.
func New(recipes []Recipe, ingredients []string) *Catalog {
	c := &Catalog{
		byKey:       make(map[string]Recipe, len(recipes)),
		recipes:     make([]Recipe, 0, len(recipes)),
		ingredients: append([]string(nil), ingredients...),
	}
	for _, r := range recipes {
		sorted := make([]string, len(r.Ingredients))
		copy(sorted, r.Ingredients)
		sort.Strings(sorted)
		r.Ingredients = sorted
		c.byKey[Key(sorted)] = r
		c.recipes = append(c.recipes, r)
	}
	return c
}

// Open loads every recipe from the SQLite database at path into memory and
// closes the connection. The returned catalog is immutable.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open recipe db %s: %w", path, err)
	}
	defer db.Close()

	ingRows, err := db.Query(`SELECT name FROM ingredients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer ingRows.Close()

	var ingredients []string
	for ingRows.Next() {
		var name string
		if err := ingRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, name)
	}
	if err := ingRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	rows, err := db.Query(`
		SELECT r.name, r.price, r.level, i.name
		FROM recipes r
		JOIN recipe_ingredients ri ON r.id = ri.recipe_id
		JOIN ingredients i ON ri.ingredient_id = i.id
		ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]*Recipe)
	var order []string
	for rows.Next() {
		var name, ingredient string
		var price, tier int
		if err := rows.Scan(&name, &price, &tier, &ingredient); err != nil {
			return nil, fmt.Errorf("scan recipe row: %w", err)
		}
		r, ok := byName[name]
		if !ok {
			r = &Recipe{Name: name, Price: price, Tier: tier}
			byName[name] = r
			order = append(order, name)
		}
		r.Ingredients = append(r.Ingredients, ingredient)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("recipe db %s is empty, run initialization first", path)
	}

	recipes := make([]Recipe, 0, len(order))
	for _, name := range order {
		recipes = append(recipes, *byName[name])
	}
	return New(recipes, ingredients), nil
}

// Lookup returns the recipe whose ingredient multiset exactly equals the
// given one, order-irrelevant.
func (c *Catalog) Lookup(ingredients []string) (Recipe, bool) {
	r, ok := c.byKey[Key(ingredients)]
	return r, ok
}

// RecipesWithAtMost returns every recipe needing no more than n ingredients.
// A recipe needing four simultaneous carriers is unreachable with three
// players, so order generation filters through this.
func (c *Catalog) RecipesWithAtMost(n int) []Recipe {
	var out []Recipe
	for _, r := range c.recipes {
		if len(r.Ingredients) <= n {
			out = append(out, r)
		}
	}
	return out
}

// Recipes returns the full catalog, used as the fallback when no recipe fits
// the current player count.
func (c *Catalog) Recipes() []Recipe {
	return c.recipes
}

// Ingredients returns every ingredient name known to the catalog.
func (c *Catalog) Ingredients() []string {
	return c.ingredients
}
