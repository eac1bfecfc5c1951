package recipe

import (
	"context"
	"fmt"
)

// DemoRecipes are loaded for the demo restaurant on startup.
var DemoRecipes = []Recipe{
	{
		Title:        "Classic Carbonara",
		Ingredients:  "Spaghetti, Eggs, Guanciale, Pecorino Romano, Black Pepper",
		Instructions: "1. Boil pasta. 2. Whisk eggs and cheese. 3. Combine with pasta and guanciale.",
		Yield:        "2 Portions",
	},
	{
		Title:        "Tomato Basil Soup",
		Ingredients:  "Tomatoes, Fresh Basil, Heavy Cream, Garlic, Onion",
		Instructions: "1. Roast tomatoes. 2. Blend with basil and cream. 3. Simmer.",
		Yield:        "4 Servings",
	},
	{
		Title:        "Chocolate Brownies",
		Ingredients:  "Dark Chocolate, Butter, Sugar, Eggs, Flour, Cocoa Powder",
		Instructions: "1. Mix dry ingredients. 2. Fold in melted butter. 3. Bake at 180C for 25m.",
		Yield:        "12 Squares",
	},
}

// Seed adds DemoRecipes to repo under owner and returns their ids.
func Seed(ctx context.Context, repo Repository, owner int) ([]int, error) {
	ids := make([]int, 0, len(DemoRecipes))
	for _, r := range DemoRecipes {
		r.OwnerID = owner
		id, err := repo.Add(ctx, r)
		if err != nil {
			return ids, fmt.Errorf("seed %q: %w", r.Title, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
