package flow

import (
	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Builder 由加權食材與食譜建立流量網路
type Builder struct {
	matcher *match.Matcher
	logger  *zap.Logger
}

// NewBuilder 創建網路建構器
func NewBuilder(matcher *match.Matcher, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matcher == nil {
		matcher = match.NewMatcher(logger)
	}
	return &Builder{matcher: matcher, logger: logger}
}

// FilterByMealType 保留偏好餐別與 any 的食譜；偏好為 any 時全部保留
func FilterByMealType(recipes []common.Recipe, preferred common.MealType) []common.Recipe {
	preferred = preferred.OrAny()
	if preferred == common.MealAny {
		return recipes
	}
	out := make([]common.Recipe, 0, len(recipes))
	for _, r := range recipes {
		mt := r.MealType.OrAny()
		if mt == preferred || mt == common.MealAny {
			out = append(out, r)
		}
	}
	return out
}

// Build 建立網路；空輸入只會得到來源、匯點與營養頂點
func (b *Builder) Build(weighted []common.WeightedIngredient, recipes []common.Recipe, preferred common.MealType) *Network {
	n := NewNetwork(preferred)
	filtered := FilterByMealType(recipes, n.PreferredMealType)

	for i, ing := range weighted {
		v := n.AddVertex(KindIngredient, ing.Name, i)
		nq := NormalizeQuantity(ing.Quantity, ing.Unit)
		edge := n.AddEdge(n.Source, v, nq, SourceToIngredient{
			NormalizedQuantity: nq,
			ExpiryWeight:       ing.Weight * ExpiryFactor(ing.DaysUntilExpiry),
			DaysUntilExpiry:    ing.DaysUntilExpiry,
		})
		n.Ingredients = append(n.Ingredients, IngredientNode{Vertex: v, SourceEdge: edge, Ingredient: ing})
	}

	for i, r := range filtered {
		v := n.AddVertex(KindRecipe, r.Title, i)
		n.Recipes = append(n.Recipes, RecipeNode{Vertex: v, SinkEdge: -1, BalancedEdge: -1, Recipe: r})
	}

	nutritionVertices := make(map[NutritionCategory]int, len(NutritionCategories))
	for _, cat := range NutritionCategories {
		nutritionVertices[cat] = n.AddVertex(KindNutrition, string(cat), -1)
	}
	balancedVertex := n.AddVertex(KindBalancedMeal, "balanced_meal", -1)

	for i := range n.Recipes {
		b.connectRecipe(n, &n.Recipes[i], nutritionVertices, balancedVertex)
	}

	b.logger.Debug("流量網路建立完成",
		zap.Int("ingredients", len(n.Ingredients)),
		zap.Int("recipes", len(n.Recipes)),
		zap.Int("vertices", n.VertexCount()),
		zap.Int("edges", n.EdgeCount()/2),
	)
	return n
}

func (b *Builder) connectRecipe(n *Network, node *RecipeNode, nutritionVertices map[NutritionCategory]int, balancedVertex int) {
	r := node.Recipe
	mealBoost := MealTypeBoost(r.MealType, n.PreferredMealType)

	// 基本物資不消耗庫存，不作為比對候選
	candidates := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if !match.IsStaple(ing) {
			candidates = append(candidates, ing)
		}
	}

	var matched []matchedWeight
	coveredLines := make(map[string]struct{}, len(candidates))
	for _, in := range n.Ingredients {
		ing := in.Ingredient
		best := b.matcher.FindBestMatch(ing.Name, candidates)
		if !best.Matched() {
			continue
		}

		nq := NormalizeQuantity(ing.Quantity, ing.Unit)
		qf := QuantityFactor(nq)
		adjusted := AdjustedWeight(ing.Weight, ExpiryFactor(ing.DaysUntilExpiry), best.Quality, mealBoost, qf)

		edge := n.AddEdge(in.Vertex, node.Vertex, nq, IngredientToRecipe{
			MatchQuality:   best.Quality,
			MatchType:      best.MatchType,
			MatchedWith:    best.MatchedName,
			AdjustedWeight: adjusted,
			QuantityFactor: qf,
		})
		node.MatchEdges = append(node.MatchEdges, edge)
		coveredLines[match.Normalize(best.MatchedName)] = struct{}{}
		matched = append(matched, matchedWeight{
			adjustedWeight:  adjusted,
			daysUntilExpiry: ing.DaysUntilExpiry,
			quality:         best.Quality,
		})
	}

	// 營養分類
	var present []NutritionCategory
	nutritionLinks := make([]NutritionLink, 0, len(NutritionCategories))
	for _, cat := range NutritionCategories {
		count := NutritionMatches(cat, r.Ingredients)
		if count == 0 {
			continue
		}
		present = append(present, cat)
		nutritionLinks = append(nutritionLinks, NutritionLink{Category: cat, MatchCount: count, Boost: NutritionBoost(count)})
	}

	total := len(r.Ingredients)
	if total == 0 {
		total = 1
	}
	// 多個庫存項目對到同一行食材只算一次
	coverage := float64(len(coveredLines)) / float64(total)
	if coverage > 1 {
		coverage = 1
	}

	importance := recipeImportance(matched, len(coveredLines), total, mealBoost)
	balancedBoost := 1.0
	if len(present) >= 2 {
		balancedBoost = BalancedMealBoost(len(present))
		importance *= balancedBoost
	}

	node.SinkEdge = n.AddEdge(node.Vertex, n.Sink, coverage*100, RecipeToSink{
		MatchedCount:     len(coveredLines),
		TotalIngredients: len(r.Ingredients),
		Coverage:         coverage,
		MealTypeBoost:    mealBoost,
		Importance:       importance,
	})

	for _, link := range nutritionLinks {
		edge := n.AddEdge(nutritionVertices[link.Category], node.Vertex, float64(link.MatchCount), link)
		node.NutritionEdges = append(node.NutritionEdges, edge)
	}
	if len(present) >= 2 {
		node.BalancedEdge = n.AddEdge(balancedVertex, node.Vertex, float64(len(present)), BalancedMealLink{
			Categories: present,
			Boost:      balancedBoost,
		})
	}

	if len(matched) > 0 {
		b.logger.Debug("食譜比對",
			zap.String("recipe", r.ID),
			zap.Int("matched", len(coveredLines)),
		zap.Int("match_edges", len(matched)),
			zap.Int("total", len(r.Ingredients)),
			zap.Float64("importance", importance),
		)
	}
}
