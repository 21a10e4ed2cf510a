package recommend

import (
	"strings"
	"time"

	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"
)

// 權重倍率
const (
	prioritizeMultiplier = 3.0
	normalMultiplier     = 1.5
	selectedBoost        = 2.0
)

// Options 推薦選項
type Options struct {
	MealType                common.MealType `json:"meal_type"`
	PrioritizeExpiring      bool            `json:"prioritize_expiring"`
	SelectedIngredientNames []string        `json:"selected_ingredient_names,omitempty"`
}

// DefaultOptions 預設選項：任何餐別、優先使用即將到期的食材
func DefaultOptions() Options {
	return Options{MealType: common.MealAny, PrioritizeExpiring: true}
}

// DaysUntilExpiry 計算剩餘天數；未追蹤到期日回傳 NoExpiryDays，已過期最小為 -1
func DaysUntilExpiry(ing common.InventoryIngredient, now time.Time) int {
	days := common.NoExpiryDays
	switch {
	case ing.DaysUntilExpiry != nil:
		days = *ing.DaysUntilExpiry
	case ing.ExpiresAt != nil:
		days = int(ing.ExpiresAt.Sub(now).Hours() / 24)
	}
	if days < -1 {
		days = -1
	}
	return days
}

// Weigh 將可用庫存轉為加權食材；指定食材時只保留並加倍其權重
func Weigh(inventory []common.InventoryIngredient, opts Options, now time.Time) []common.WeightedIngredient {
	selected := normalizedSelection(opts.SelectedIngredientNames)
	multiplier := normalMultiplier
	if opts.PrioritizeExpiring {
		multiplier = prioritizeMultiplier
	}

	out := make([]common.WeightedIngredient, 0, len(inventory))
	for _, ing := range inventory {
		if !ing.IsAvailable() || strings.TrimSpace(ing.Name) == "" {
			continue
		}

		isSelected := false
		if len(selected) > 0 {
			if !matchesSelection(match.Normalize(ing.Name), selected) {
				continue
			}
			isSelected = true
		}

		days := DaysUntilExpiry(ing, now)
		weight := expiryWeight(ing.AboutToExpire, days, multiplier)
		if isSelected {
			weight *= selectedBoost
		}

		out = append(out, common.WeightedIngredient{
			ID:              ing.ID,
			Name:            ing.Name,
			Weight:          weight,
			DaysUntilExpiry: days,
			Quantity:        ing.Quantity,
			Unit:            ing.Unit,
			Selected:        isSelected,
		})
	}
	return out
}

func expiryWeight(aboutToExpire bool, days int, multiplier float64) float64 {
	switch {
	case aboutToExpire:
		return 3.0 * multiplier
	case days <= 0:
		return 5.0 * multiplier
	case days <= 3:
		return 4.0 * multiplier
	case days <= 7:
		return 2.0 * multiplier
	default:
		return 1.0
	}
}

func normalizedSelection(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if s := match.Normalize(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// matchesSelection 名稱互相包含即視為被選取
func matchesSelection(name string, selected []string) bool {
	if name == "" {
		return false
	}
	for _, s := range selected {
		if strings.Contains(name, s) || strings.Contains(s, name) {
			return true
		}
	}
	return false
}

