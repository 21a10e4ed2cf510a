package recommend

import (
	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"
)

// IngredientAvailability 單一食譜食材的庫存狀態
type IngredientAvailability struct {
	Ingredient    string                `json:"ingredient"`
	Available     bool                  `json:"available"`
	Staple        bool                  `json:"staple"`
	InventoryID   string                `json:"inventory_id,omitempty"`
	InventoryName string                `json:"inventory_name,omitempty"`
	Match         match.IngredientMatch `json:"match"`
}

// RecipeAvailability 食譜在目前庫存下的可用情況
type RecipeAvailability struct {
	RecipeID       string                   `json:"recipe_id"`
	Ingredients    []IngredientAvailability `json:"ingredients"`
	AvailableCount int                      `json:"available_count"`
	Total          int                      `json:"total"`
	Coverage       float64                  `json:"coverage"`
}

// CheckAvailability 為食譜每個食材找出最佳的可用庫存
func (r *Recommender) CheckAvailability(inventory []common.InventoryIngredient, recipe common.Recipe) RecipeAvailability {
	// 庫存中的基本物資不作為候選
	candidates := make([]common.InventoryIngredient, 0, len(inventory))
	names := make([]string, 0, len(inventory))
	for _, ing := range inventory {
		if !ing.IsAvailable() || match.IsStaple(ing.Name) {
			continue
		}
		candidates = append(candidates, ing)
		names = append(names, ing.Name)
	}

	out := RecipeAvailability{
		RecipeID:    recipe.ID,
		Ingredients: make([]IngredientAvailability, 0, len(recipe.Ingredients)),
		Total:       len(recipe.Ingredients),
	}

	for _, name := range recipe.Ingredients {
		item := IngredientAvailability{Ingredient: name, Match: match.NoMatch()}

		if match.IsStaple(name) {
			item.Available = true
			item.Staple = true
			item.Match = match.IngredientMatch{MatchedName: name, Quality: 1.0, MatchType: match.MatchCommon, Confidence: 1.0}
		} else if best := r.matcher.FindBestMatch(name, names); best.Matched() {
			inv := inventoryByName(candidates, best.MatchedName)
			item.Available = true
			item.InventoryID = inv.ID
			item.InventoryName = inv.Name
			item.Match = best
		}

		if item.Available {
			out.AvailableCount++
		}
		out.Ingredients = append(out.Ingredients, item)
	}

	if out.Total > 0 {
		out.Coverage = float64(out.AvailableCount) / float64(out.Total)
	}
	return out
}

func inventoryByName(items []common.InventoryIngredient, name string) common.InventoryIngredient {
	for _, ing := range items {
		if ing.Name == name {
			return ing
		}
	}
	return common.InventoryIngredient{}
}
