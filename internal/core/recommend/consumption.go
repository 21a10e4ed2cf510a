package recommend

import (
	"strings"

	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"
)

// ConsumptionPlan 接受食譜後應標記為已使用的庫存
type ConsumptionPlan struct {
	RecipeID string                       `json:"recipe_id"`
	Consumed []common.InventoryIngredient `json:"consumed"`
	NotFound []string                     `json:"not_found"`
}

// PlanConsumption 以庫存 ID 或正規化名稱完全相符解析使用的食材；不修改庫存
func PlanConsumption(recipeID string, inventory []common.InventoryIngredient, usedIDs, usedNames []string) ConsumptionPlan {
	plan := ConsumptionPlan{
		RecipeID: recipeID,
		Consumed: make([]common.InventoryIngredient, 0, len(usedIDs)+len(usedNames)),
		NotFound: make([]string, 0),
	}
	taken := make(map[string]struct{})

	take := func(ing common.InventoryIngredient) {
		taken[ing.ID] = struct{}{}
		ing.Status = common.StatusConsumed
		plan.Consumed = append(plan.Consumed, ing)
	}

	for _, id := range usedIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, done := taken[id]; done {
			continue
		}
		found := false
		for _, ing := range inventory {
			if ing.ID == id && ing.IsAvailable() {
				take(ing)
				found = true
				break
			}
		}
		if !found {
			plan.NotFound = append(plan.NotFound, id)
		}
	}

	for _, name := range usedNames {
		normalized := match.Normalize(name)
		if normalized == "" {
			continue
		}
		found := false
		for _, ing := range inventory {
			if _, done := taken[ing.ID]; done {
				if match.Normalize(ing.Name) == normalized {
					found = true
					break
				}
				continue
			}
			if ing.IsAvailable() && match.Normalize(ing.Name) == normalized {
				take(ing)
				found = true
				break
			}
		}
		if !found {
			plan.NotFound = append(plan.NotFound, name)
		}
	}

	return plan
}
