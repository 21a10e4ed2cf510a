package common

import (
	"fmt"
	"strings"
	"time"
)

// MealType 餐別
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealDessert   MealType = "dessert"
	MealAny       MealType = "any"
)

// ParseMealType 解析餐別，空字串視為 any
func ParseMealType(s string) (MealType, error) {
	switch MealType(strings.ToLower(strings.TrimSpace(s))) {
	case "", MealAny:
		return MealAny, nil
	case MealBreakfast:
		return MealBreakfast, nil
	case MealLunch:
		return MealLunch, nil
	case MealDinner:
		return MealDinner, nil
	case MealDessert:
		return MealDessert, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown meal type %q", s))
}

// OrAny 空餐別回傳 any
func (m MealType) OrAny() MealType {
	if m == "" {
		return MealAny
	}
	return m
}

// IngredientStatus 庫存食材狀態
type IngredientStatus string

const (
	StatusAvailable IngredientStatus = "available"
	StatusConsumed  IngredientStatus = "consumed"
	StatusExpired   IngredientStatus = "expired"
	StatusWasted    IngredientStatus = "wasted"
)

// NoExpiryDays 未追蹤到期日（乾貨）時使用的天數
const NoExpiryDays = 999

// InventoryIngredient 使用者庫存中的食材（唯讀）
type InventoryIngredient struct {
	ID              string           `json:"id" yaml:"id" validate:"required"`
	Name            string           `json:"name" yaml:"name" validate:"required"`
	Quantity        float64          `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Unit            string           `json:"unit" yaml:"unit"`
	DaysUntilExpiry *int             `json:"days_until_expiry,omitempty" yaml:"days_until_expiry,omitempty"`
	ExpiresAt       *time.Time       `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	AboutToExpire   bool             `json:"about_to_expire" yaml:"about_to_expire"`
	Status          IngredientStatus `json:"status" yaml:"status" validate:"omitempty,oneof=available consumed expired wasted"`
}

// IsAvailable 狀態為 available（空狀態視為 available）
func (i InventoryIngredient) IsAvailable() bool {
	return i.Status == "" || i.Status == StatusAvailable
}

// Recipe 食譜（唯讀）
type Recipe struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Title        string   `json:"title" yaml:"title"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	Ingredients  []string `json:"ingredients" yaml:"ingredients"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	MealType     MealType `json:"meal_type" yaml:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner dessert any"`
}

// WeightedIngredient 加權後的庫存食材，僅存在於單次推薦請求
type WeightedIngredient struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Weight          float64 `json:"weight"`
	DaysUntilExpiry int     `json:"days_until_expiry"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Selected        bool    `json:"selected"`
}

// RecipeScoreResult 推薦結果
type RecipeScoreResult struct {
	ID                      string   `json:"id"`
	Title                   string   `json:"title"`
	Image                   string   `json:"image,omitempty"`
	Score                   int      `json:"score"`
	MealType                MealType `json:"meal_type"`
	UsedIngredients         []string `json:"used_ingredients"`
	UsedIngredientNames     []string `json:"used_ingredient_names"`
	MissedIngredients       []string `json:"missed_ingredients"`
	MatchCount              int      `json:"match_count"`
	TotalIngredients        int      `json:"total_ingredients"`
	ExpiringIngredientCount int      `json:"expiring_ingredient_count"`
	Coverage                float64  `json:"coverage"`
	Instructions            []string `json:"instructions"`
}

// FormatIngredients 格式化庫存食材列表
func FormatIngredients(ingredients []InventoryIngredient) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		days := "-"
		if ing.DaysUntilExpiry != nil {
			days = fmt.Sprintf("%d", *ing.DaysUntilExpiry)
		}
		sb.WriteString(fmt.Sprintf("- %s: %g%s, %s天, %s\n",
			ing.Name, ing.Quantity, ing.Unit, days, ing.Status))
	}
	return sb.String()
}

// StringSliceToString 將字符串切片轉換為逗號分隔的字符串
func StringSliceToString(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return strings.Join(slice, "、")
}
