package flow

import (
	"math"
	"strings"

	"pantry-recommender/internal/pkg/common"
)

// 權重常數
const (
	ExpiryWindowDays = 7
	expiryBoost      = 5.0

	PreferredMealBoost = 2.5
	NeutralMealBoost   = 1.2
	MismatchMealBoost  = 0.8

	highQualityMatch  = 0.9
	qualityBonus      = 1.2
	maxQuantityFactor = 3.0
)

// NormalizeQuantity 依單位換算為公克／毫升；非正數量視為 1
func NormalizeQuantity(quantity float64, unit string) float64 {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		quantity = 1
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg", "kilo", "kilos", "kilogram", "kilograms":
		return quantity * 1000
	case "l", "liter", "liters", "litre", "litres":
		return quantity * 1000
	case "tbsp", "tablespoon", "tablespoons":
		return quantity * 15
	case "tsp", "teaspoon", "teaspoons":
		return quantity * 5
	case "cup", "cups":
		return quantity * 240
	default:
		return quantity
	}
}

// ExpiryFactor 七天內到期為 5，否則為 1
func ExpiryFactor(daysUntilExpiry int) float64 {
	if daysUntilExpiry <= ExpiryWindowDays {
		return expiryBoost
	}
	return 1.0
}

// QuantityFactor 數量的對數係數，上限為 3
func QuantityFactor(normalizedQuantity float64) float64 {
	return math.Min(maxQuantityFactor, math.Log10(normalizedQuantity+1)+1)
}

// MealTypeBoost 餐別加權；偏好為 any 時所有食譜皆為中性
func MealTypeBoost(recipeType, preferred common.MealType) float64 {
	preferred = preferred.OrAny()
	recipeType = recipeType.OrAny()
	switch {
	case preferred == common.MealAny:
		return NeutralMealBoost
	case recipeType == preferred:
		return PreferredMealBoost
	case recipeType == common.MealAny:
		return NeutralMealBoost
	default:
		return MismatchMealBoost
	}
}

// IsPreferredMeal 食譜是否符合使用者指定的餐別
func IsPreferredMeal(recipeType, preferred common.MealType) bool {
	return MealTypeBoost(recipeType, preferred) == PreferredMealBoost
}

// AdjustedWeight 食材→食譜邊的綜合權重
func AdjustedWeight(baseWeight, expiryFactor, quality, mealBoost, quantityFactor float64) float64 {
	w := baseWeight*0.2 + expiryFactor*0.45 + quality*0.15 + mealBoost*0.2*quantityFactor
	if quality >= highQualityMatch {
		w *= qualityBonus
	}
	return w
}

// matchedWeight 計算食譜重要度所需的比對資料
type matchedWeight struct {
	adjustedWeight  float64
	daysUntilExpiry int
	quality         float64
}

// recipeImportance 食譜重要度：到期急迫度與覆蓋率的加權，乘上餐別與品質係數
// coveredLines 為被比對到的相異食譜食材行數
func recipeImportance(matched []matchedWeight, coveredLines, totalIngredients int, mealBoost float64) float64 {
	if len(matched) == 0 {
		return 0.1 * mealBoost
	}
	if totalIngredients <= 0 {
		totalIngredients = 1
	}

	urgency, qualitySum := 0.0, 0.0
	for _, m := range matched {
		urgency += m.adjustedWeight * math.Max(1, float64(10-m.daysUntilExpiry)) / 10
		qualitySum += m.quality
	}
	coverage := math.Min(1, float64(coveredLines)/float64(totalIngredients))
	avgQuality := qualitySum / float64(len(matched))

	return (urgency*0.6 + coverage*0.4) * mealBoost * (0.8 + avgQuality*0.2)
}

// NutritionCategory 營養分類
type NutritionCategory string

const (
	NutritionProtein    NutritionCategory = "protein"
	NutritionVegetables NutritionCategory = "vegetables"
	NutritionGrains     NutritionCategory = "grains"
	NutritionDairy      NutritionCategory = "dairy"
)

// NutritionCategories 依固定順序列出營養分類
var NutritionCategories = []NutritionCategory{
	NutritionProtein, NutritionVegetables, NutritionGrains, NutritionDairy,
}

var nutritionKeywords = map[NutritionCategory][]string{
	NutritionProtein: {
		"meat", "chicken", "beef", "pork", "fish", "tofu", "lentil",
		"bean", "egg", "nuts", "seed", "protein",
	},
	NutritionVegetables: {
		"vegetable", "carrot", "broccoli", "spinach", "kale", "tomato",
		"pepper", "onion", "lettuce", "cabbage", "zucchini", "eggplant",
		"cucumber", "avocado",
	},
	NutritionGrains: {
		"rice", "pasta", "bread", "flour", "oat", "grain", "wheat", "quinoa",
		"barley", "cereal", "corn", "couscous", "tortilla",
	},
	NutritionDairy: {
		"milk", "cheese", "yogurt", "cream", "butter", "dairy", "cheddar",
		"mozzarella", "parmesan",
	},
}

// 關鍵字後最多允許的字尾長度（複數形）
const keywordSuffixSlack = 2

// NutritionMatches 食譜食材中命中該營養分類關鍵字的數量
func NutritionMatches(category NutritionCategory, ingredients []string) int {
	count := 0
	for _, ing := range ingredients {
		if hitsKeyword(strings.Fields(strings.ToLower(ing)), nutritionKeywords[category]) {
			count++
		}
	}
	return count
}

func hitsKeyword(words, keywords []string) bool {
	for _, w := range words {
		for _, kw := range keywords {
			if strings.HasPrefix(w, kw) && len(w)-len(kw) <= keywordSuffixSlack {
				return true
			}
		}
	}
	return false
}

// NutritionBoost 營養分類加權
func NutritionBoost(matchCount int) float64 {
	return math.Min(1.5, 0.8+0.2*float64(matchCount))
}

// BalancedMealBoost 均衡餐點加權
func BalancedMealBoost(categories int) float64 {
	return 1.0 + 0.2*float64(categories)
}
