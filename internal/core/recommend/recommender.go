package recommend

import (
	"fmt"
	"time"

	"pantry-recommender/internal/core/flow"
	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultCount 預設回傳筆數
const DefaultCount = 5

// Recommender 推薦引擎：加權 → 建立網路 → 最大流 → 評分排序
type Recommender struct {
	matcher *match.Matcher
	builder *flow.Builder
	logger  *zap.Logger
	now     func() time.Time
	rank    func(n *flow.Network, count int) []common.RecipeScoreResult
}

// Option 推薦引擎選項
type Option func(*Recommender)

// WithLogger 注入 logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Recommender) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock 注入時鐘，用於由到期日計算剩餘天數
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) {
		if now != nil {
			r.now = now
		}
	}
}

// New 創建推薦引擎
func New(opts ...Option) *Recommender {
	r := &Recommender{
		logger: zap.NewNop(),
		now:    time.Now,
		rank:   Rank,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.matcher = match.NewMatcher(r.logger)
	r.builder = flow.NewBuilder(r.matcher, r.logger)
	return r
}

// Matcher 引擎使用的比對器
func (r *Recommender) Matcher() *match.Matcher {
	return r.matcher
}

// Recommend 回傳最多 count 筆推薦；內部錯誤時退回依餐別過濾的清單
func (r *Recommender) Recommend(inventory []common.InventoryIngredient, recipes []common.Recipe, opts Options, count int) (results []common.RecipeScoreResult) {
	if count < 1 {
		count = 1
	}
	opts.MealType = opts.MealType.OrAny()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("推薦計算失敗，使用備援結果",
				zap.Any("panic", rec),
				zap.String("meal_type", string(opts.MealType)),
				zap.Int("recipes", len(recipes)),
			)
			results = Fallback(recipes, opts.MealType, count)
		}
	}()

	weighted := Weigh(inventory, opts, r.now())
	if len(weighted) == 0 || len(recipes) == 0 {
		return []common.RecipeScoreResult{}
	}

	network := r.builder.Build(weighted, recipes, opts.MealType)
	solved := network.Solve()
	if solved.Truncated {
		r.logger.Debug("增廣路徑達上限", zap.Int("paths", solved.AugmentingPaths))
	}

	results = r.rank(network, count)
	r.logger.Debug("推薦完成",
		zap.Int("weighted", len(weighted)),
		zap.Int("candidates", len(network.Recipes)),
		zap.Float64("total_flow", solved.TotalFlow),
		zap.Int("results", len(results)),
	)
	return results
}

// Fallback 備援結果：依餐別過濾的前 count 筆，分數 2（符合餐別）或 1
func Fallback(recipes []common.Recipe, mealType common.MealType, count int) []common.RecipeScoreResult {
	if count < 1 {
		count = 1
	}
	filtered := flow.FilterByMealType(recipes, mealType)
	if len(filtered) > count {
		filtered = filtered[:count]
	}

	out := make([]common.RecipeScoreResult, 0, len(filtered))
	for _, rcp := range filtered {
		score := fallbackOther
		if flow.IsPreferredMeal(rcp.MealType, mealType) {
			score = fallbackPreferred
		}
		out = append(out, common.RecipeScoreResult{
			ID:                  rcp.ID,
			Title:               rcp.Title,
			Image:               rcp.Image,
			Score:               score,
			MealType:            rcp.MealType.OrAny(),
			UsedIngredients:     []string{},
			UsedIngredientNames: []string{},
			MissedIngredients:   nonNil(rcp.Ingredients),
			TotalIngredients:    len(rcp.Ingredients),
			Instructions:        nonNil(rcp.Instructions),
		})
	}
	return out
}

var defaultRecommender = New()

// Recommend 使用預設引擎計算推薦
func Recommend(inventory []common.InventoryIngredient, recipes []common.Recipe, opts Options, count int) []common.RecipeScoreResult {
	return defaultRecommender.Recommend(inventory, recipes, opts, count)
}

// String 選項摘要（日誌用）
func (o Options) String() string {
	return fmt.Sprintf("meal_type=%s prioritize_expiring=%t selected=%s",
		o.MealType.OrAny(), o.PrioritizeExpiring, common.StringSliceToString(o.SelectedIngredientNames))
}
