package recommend

import (
	"math"
	"sort"

	"pantry-recommender/internal/core/flow"
	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"
)

// 分數常數
const (
	maxScore             = 100
	zeroMatchPreferred   = 3
	zeroMatchOther       = 1
	fallbackPreferred    = 2
	fallbackOther        = 1
	qualityCenter        = 0.7
	maxQualityAdjustment = 3.0
	maxExpiryBonus       = 10.0
	preferredMealBonus   = 4.0
	neutralMealBonus     = 2.0
	smallRecipeSize      = 4
	mediumRecipeSize     = 6
	smallRecipeBonus     = 2.0
	mediumRecipeBonus    = 1.0
)

// usedIngredient 推薦中實際使用的庫存食材
type usedIngredient struct {
	id          string
	name        string
	days        int
	quality     float64
	matchedWith string
}

// scored 排序前的內部結果
type scored struct {
	result     common.RecipeScoreResult
	importance float64
}

// Rank 依網路中的比對與流量為食譜評分，回傳前 count 筆
func Rank(n *flow.Network, count int) []common.RecipeScoreResult {
	if count < 1 {
		count = 1
	}

	all := make([]scored, 0, len(n.Recipes))
	for _, node := range n.Recipes {
		all = append(all, scoreRecipe(n, node))
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if a.result.Coverage != b.result.Coverage {
			return a.result.Coverage > b.result.Coverage
		}
		if a.importance != b.importance {
			return a.importance > b.importance
		}
		return a.result.ID < b.result.ID
	})

	if len(all) > count {
		all = all[:count]
	}
	out := make([]common.RecipeScoreResult, 0, len(all))
	for _, s := range all {
		out = append(out, s.result)
	}
	return out
}

func scoreRecipe(n *flow.Network, node flow.RecipeNode) scored {
	r := node.Recipe
	used := usedIngredients(n, node)
	preferred := flow.IsPreferredMeal(r.MealType, n.PreferredMealType)

	res := common.RecipeScoreResult{
		ID:                  r.ID,
		Title:               r.Title,
		Image:               r.Image,
		MealType:            r.MealType.OrAny(),
		UsedIngredients:     make([]string, 0, len(used)),
		UsedIngredientNames: make([]string, 0, len(used)),
		TotalIngredients:    len(r.Ingredients),
		Instructions:        nonNil(r.Instructions),
	}

	// 以相異的食譜食材行計數；同一行可由多個庫存項目滿足
	matchedNames := make(map[string]struct{}, len(used))
	expiringNames := make(map[string]struct{}, len(used))
	for _, u := range used {
		res.UsedIngredients = append(res.UsedIngredients, u.id)
		res.UsedIngredientNames = append(res.UsedIngredientNames, u.name)
		line := match.Normalize(u.matchedWith)
		matchedNames[line] = struct{}{}
		if u.days <= flow.ExpiryWindowDays {
			expiringNames[line] = struct{}{}
		}
	}
	res.MatchCount = len(matchedNames)
	res.ExpiringIngredientCount = len(expiringNames)

	res.MissedIngredients = missedIngredients(r.Ingredients, matchedNames)
	if res.TotalIngredients > 0 {
		res.Coverage = float64(res.TotalIngredients-len(res.MissedIngredients)) / float64(res.TotalIngredients)
	}

	if len(used) == 0 {
		res.Coverage = 0
		res.Score = zeroMatchOther
		if preferred {
			res.Score = zeroMatchPreferred
		}
		return scored{result: res, importance: n.SinkRole(node).Importance}
	}

	res.Score = finalScore(res, used, r.MealType, n.PreferredMealType)
	return scored{result: res, importance: n.SinkRole(node).Importance}
}

// usedIngredients 有正流量或品質達門檻的食材，依庫存 ID 去重
func usedIngredients(n *flow.Network, node flow.RecipeNode) []usedIngredient {
	seen := make(map[string]struct{}, len(node.MatchEdges))
	var used []usedIngredient
	for _, id := range node.MatchEdges {
		e := n.Edge(id)
		role, ok := e.Role.(flow.IngredientToRecipe)
		if !ok {
			continue
		}
		if e.Flow <= 0 && role.MatchQuality < match.EdgeQualityThreshold {
			continue
		}
		in, ok := n.IngredientOf(e.From)
		if !ok {
			continue
		}
		if _, dup := seen[in.Ingredient.ID]; dup {
			continue
		}
		seen[in.Ingredient.ID] = struct{}{}
		used = append(used, usedIngredient{
			id:          in.Ingredient.ID,
			name:        in.Ingredient.Name,
			days:        in.Ingredient.DaysUntilExpiry,
			quality:     role.MatchQuality,
			matchedWith: role.MatchedWith,
		})
	}
	return used
}

// missedIngredients 未被比對且非基本物資的食譜食材（保留原字串）
func missedIngredients(ingredients []string, matched map[string]struct{}) []string {
	missed := make([]string, 0)
	for _, ing := range ingredients {
		if _, ok := matched[match.Normalize(ing)]; ok {
			continue
		}
		if match.IsStaple(ing) {
			continue
		}
		missed = append(missed, ing)
	}
	return missed
}

// BaseScore 以缺少食材數為主的基礎分，同級內依覆蓋率提高
func BaseScore(missing int, coverage float64) float64 {
	switch {
	case missing <= 0:
		return 90
	case missing == 1:
		return 80 + 7*coverage
	case missing == 2:
		return 65 + 10*coverage
	case missing == 3:
		return 45 + 10*coverage
	case missing <= 5:
		return 25 + 15*coverage
	default:
		return 5 + 20*coverage
	}
}

func coverageBonus(coverage float64) float64 {
	switch {
	case coverage >= 0.9:
		return 8
	case coverage >= 0.8:
		return 5
	case coverage >= 0.7:
		return 3
	}
	return 0
}

func shoppingBonus(missing int) float64 {
	switch missing {
	case 0:
		return 10
	case 1:
		return 6
	case 2:
		return 4
	case 3:
		return 2
	}
	return 0
}

func mealBonus(recipeType, preferred common.MealType) float64 {
	switch flow.MealTypeBoost(recipeType, preferred) {
	case flow.PreferredMealBoost:
		return preferredMealBonus
	case flow.NeutralMealBoost:
		return neutralMealBonus
	}
	return 0
}

func sizeBonus(total int) float64 {
	switch {
	case total <= smallRecipeSize:
		return smallRecipeBonus
	case total <= mediumRecipeSize:
		return mediumRecipeBonus
	}
	return 0
}

func finalScore(res common.RecipeScoreResult, used []usedIngredient, recipeType, preferred common.MealType) int {
	missing := len(res.MissedIngredients)

	qualitySum := 0.0
	for _, u := range used {
		qualitySum += u.quality
	}
	avgQuality := qualitySum / float64(len(used))
	qualityAdj := math.Max(-maxQualityAdjustment, math.Min(maxQualityAdjustment, (avgQuality-qualityCenter)*10))

	expiryBonus := maxExpiryBonus * float64(res.ExpiringIngredientCount) / float64(res.MatchCount)

	score := BaseScore(missing, res.Coverage) +
		coverageBonus(res.Coverage) +
		shoppingBonus(missing) +
		qualityAdj +
		expiryBonus +
		mealBonus(recipeType, preferred) +
		sizeBonus(res.TotalIngredients)

	return clampScore(score)
}

// clampScore 限制在 [0, 100] 並四捨五入（遠離零）
func clampScore(v float64) int {
	v = math.Max(0, math.Min(maxScore, v))
	return int(math.Round(v))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
