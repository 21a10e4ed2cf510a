package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pantry-recommender/internal/core/cache"
	"pantry-recommender/internal/core/catalog"
	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/core/queue"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// RecommendRequest 推薦請求；未內嵌庫存或食譜時由食譜來源取得
type RecommendRequest struct {
	RequestID               string                       `json:"-"`
	UserID                  string                       `json:"user_id,omitempty"`
	Inventory               []common.InventoryIngredient `json:"inventory,omitempty" validate:"omitempty,dive"`
	Recipes                 []common.Recipe              `json:"recipes,omitempty" validate:"omitempty,dive"`
	MealType                string                       `json:"meal_type,omitempty"`
	PrioritizeExpiring      *bool                        `json:"prioritize_expiring,omitempty"`
	SelectedIngredientNames []string                     `json:"selected_ingredient_names,omitempty"`
	Count                   int                          `json:"count,omitempty" validate:"gte=0"`
}

// RecommendResponse 推薦回應
type RecommendResponse struct {
	RequestID       string                     `json:"request_id"`
	MealType        common.MealType            `json:"meal_type"`
	Count           int                        `json:"count"`
	Cached          bool                       `json:"cached"`
	Recommendations []common.RecipeScoreResult `json:"recommendations"`
}

// AvailabilityRequest 食譜可用性請求
type AvailabilityRequest struct {
	UserID    string                       `json:"user_id,omitempty"`
	Inventory []common.InventoryIngredient `json:"inventory,omitempty" validate:"omitempty,dive"`
	RecipeID  string                       `json:"recipe_id,omitempty" validate:"required_without=Recipe"`
	Recipe    *common.Recipe               `json:"recipe,omitempty"`
}

// AcceptRequest 接受食譜請求
type AcceptRequest struct {
	RecipeID            string                       `json:"recipe_id" validate:"required"`
	UserID              string                       `json:"user_id,omitempty"`
	Inventory           []common.InventoryIngredient `json:"inventory,omitempty" validate:"omitempty,dive"`
	UsedIngredients     []string                     `json:"used_ingredients,omitempty"`
	UsedIngredientNames []string                     `json:"used_ingredient_names,omitempty"`
}

// MatchRequest 單一食材比對請求
type MatchRequest struct {
	Ingredient string   `json:"ingredient" validate:"required"`
	Candidates []string `json:"candidates" validate:"required,min=1"`
}

// CandidateMatch 候選食材的比對結果
type CandidateMatch struct {
	Candidate string                `json:"candidate"`
	Match     match.IngredientMatch `json:"match"`
}

// MatchResponse 比對回應
type MatchResponse struct {
	Ingredient string                `json:"ingredient"`
	Normalized string                `json:"normalized"`
	Category   string                `json:"category,omitempty"`
	Best       match.IngredientMatch `json:"best"`
	Candidates []CandidateMatch      `json:"candidates"`
}

// Service 推薦服務：食譜來源、快取與請求隊列
type Service struct {
	config  *config.Config
	engine  *Recommender
	cache   cache.Store
	queue   *queue.Manager
	catalog *catalog.Client
}

// NewService 創建推薦服務；cache、queue、catalog 可為 nil
func NewService(cfg *config.Config, engine *Recommender, store cache.Store, q *queue.Manager, cat *catalog.Client) *Service {
	if engine == nil {
		engine = New()
	}
	return &Service{
		config:  cfg,
		engine:  engine,
		cache:   store,
		queue:   q,
		catalog: cat,
	}
}

// Recommend 處理推薦請求
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (resp *RecommendResponse, err error) {
	start := time.Now()
	if req.RequestID == "" {
		req.RequestID = common.GenerateUUID()
	}

	var inventoryCount, recipeCount int
	defer func() {
		results := 0
		if resp != nil {
			results = len(resp.Recommendations)
		}
		common.LogRecommendation(req.RequestID, inventoryCount, recipeCount, results, time.Since(start), err)
	}()

	if err := common.Validate(req); err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}
	mealType, err := common.ParseMealType(req.MealType)
	if err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	opts := DefaultOptions()
	opts.MealType = mealType
	opts.SelectedIngredientNames = req.SelectedIngredientNames
	if req.PrioritizeExpiring != nil {
		opts.PrioritizeExpiring = *req.PrioritizeExpiring
	}
	count := s.clampCount(req.Count)

	inventory, err := s.resolveInventory(ctx, req.UserID, req.Inventory)
	if err != nil {
		return nil, err
	}
	recipes := req.Recipes
	if recipes == nil {
		if recipes, err = s.catalog.FetchRecipes(ctx, mealType, s.config.Recommend.RecipeLimit); err != nil {
			return nil, err
		}
	}
	inventoryCount, recipeCount = len(inventory), len(recipes)

	resp = &RecommendResponse{
		RequestID: req.RequestID,
		MealType:  mealType,
	}

	key, keyErr := cache.Key("recommend", struct {
		Inventory []common.InventoryIngredient `json:"inventory"`
		Recipes   []common.Recipe              `json:"recipes"`
		Options   Options                      `json:"options"`
		Count     int                          `json:"count"`
		Days      []int                        `json:"days,omitempty"`
	}{inventory, recipes, opts, count, clockDays(inventory, s.engine.now())})
	if keyErr != nil {
		common.LogWarn("無法產生快取鍵", zap.Error(keyErr))
	}

	if cached, ok := s.cached(ctx, key); ok {
		resp.Recommendations = cached
		resp.Count = len(cached)
		resp.Cached = true
		return resp, nil
	}

	results, err := s.run(ctx, func(ctx context.Context) (interface{}, error) {
		return s.engine.Recommend(inventory, recipes, opts, count), nil
	})
	if err != nil {
		return nil, err
	}
	recs, ok := results.([]common.RecipeScoreResult)
	if !ok {
		return nil, common.ErrInternalError.Wrap(fmt.Errorf("unexpected result type %T", results))
	}

	s.store(ctx, key, recs)
	resp.Recommendations = recs
	resp.Count = len(recs)
	return resp, nil
}

// Availability 計算單一食譜在庫存下的可用性
func (s *Service) Availability(ctx context.Context, req AvailabilityRequest) (*RecipeAvailability, error) {
	if err := common.Validate(req); err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	var recipe common.Recipe
	if req.Recipe != nil {
		recipe = *req.Recipe
	} else {
		fetched, err := s.catalog.FetchRecipe(ctx, req.RecipeID)
		if err != nil {
			return nil, err
		}
		recipe = fetched
	}

	inventory, err := s.resolveInventory(ctx, req.UserID, req.Inventory)
	if err != nil {
		return nil, err
	}

	availability := s.engine.CheckAvailability(inventory, recipe)
	return &availability, nil
}

// Accept 產生接受食譜後的庫存消耗計畫
func (s *Service) Accept(ctx context.Context, req AcceptRequest) (*ConsumptionPlan, error) {
	if err := common.Validate(req); err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}
	if len(req.UsedIngredients) == 0 && len(req.UsedIngredientNames) == 0 {
		return nil, common.ErrInvalidRequest.Wrap(common.NewValidationError("used_ingredients or used_ingredient_names is required"))
	}

	inventory, err := s.resolveInventory(ctx, req.UserID, req.Inventory)
	if err != nil {
		return nil, err
	}
	if len(inventory) == 0 {
		return nil, common.ErrNoInventory
	}

	plan := PlanConsumption(req.RecipeID, inventory, req.UsedIngredients, req.UsedIngredientNames)
	common.LogInfo("已產生消耗計畫",
		zap.String("recipe_id", plan.RecipeID),
		zap.Int("consumed", len(plan.Consumed)),
		zap.Int("not_found", len(plan.NotFound)),
	)
	return &plan, nil
}

// Match 比對單一食材與候選清單
func (s *Service) Match(req MatchRequest) (*MatchResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	m := s.engine.Matcher()
	resp := &MatchResponse{
		Ingredient: req.Ingredient,
		Normalized: match.Normalize(req.Ingredient),
		Category:   match.Category(req.Ingredient),
		Best:       m.FindBestMatch(req.Ingredient, req.Candidates),
		Candidates: make([]CandidateMatch, 0, len(req.Candidates)),
	}
	for _, c := range req.Candidates {
		resp.Candidates = append(resp.Candidates, CandidateMatch{Candidate: c, Match: m.Match(req.Ingredient, c)})
	}
	return resp, nil
}

// Status 隊列與快取狀態
func (s *Service) Status() map[string]interface{} {
	status := map[string]interface{}{
		"cache_enabled":   s.cache != nil,
		"catalog_enabled": s.catalog.Enabled(),
	}
	if s.queue != nil {
		status["queue"] = s.queue.Status()
	}
	if s.cache != nil {
		status["cache"] = s.cache.Stats()
	}
	return status
}

// Close 關閉隊列與快取
func (s *Service) Close() error {
	if s.queue != nil {
		s.queue.Close()
	}
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

func (s *Service) clampCount(count int) int {
	if count <= 0 {
		count = s.config.Recommend.DefaultCount
	}
	if count <= 0 {
		count = DefaultCount
	}
	if limit := s.config.Recommend.MaxCount; limit > 0 && count > limit {
		count = limit
	}
	return count
}

func (s *Service) resolveInventory(ctx context.Context, userID string, inline []common.InventoryIngredient) ([]common.InventoryIngredient, error) {
	if inline != nil || userID == "" {
		return inline, nil
	}
	return s.catalog.FetchInventory(ctx, userID)
}

func (s *Service) run(ctx context.Context, job queue.Job) (interface{}, error) {
	if s.queue == nil {
		return job(ctx)
	}
	value, err := s.queue.Do(ctx, job)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, common.ErrRequestTimeout.Wrap(err)
	}
	return value, err
}

func (s *Service) cached(ctx context.Context, key string) ([]common.RecipeScoreResult, bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
		common.LogCacheMiss("recommend")
		return nil, false
	}

	var recs []common.RecipeScoreResult
	if err := common.ParseJSONBytes(data, &recs); err != nil {
		common.LogWarn("快取內容無法解析", zap.Error(err))
		return nil, false
	}
	common.LogCacheHit("recommend")
	return recs, true
}

func (s *Service) store(ctx context.Context, key string, recs []common.RecipeScoreResult) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := common.ToJSON(recs)
	if err != nil {
		common.LogWarn("無法序列化推薦結果", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, []byte(data)); err != nil {
		common.LogWarn("寫入快取失敗", zap.Error(err))
	}
}

// clockDays 依當下時間換算的剩餘天數；只有以 expires_at 計算的項目會隨時間改變結果
func clockDays(inventory []common.InventoryIngredient, now time.Time) []int {
	days := make([]int, len(inventory))
	dated := false
	for i, ing := range inventory {
		days[i] = common.NoExpiryDays
		if ing.ExpiresAt != nil && ing.DaysUntilExpiry == nil {
			days[i] = DaysUntilExpiry(ing, now)
			dated = true
		}
	}
	if !dated {
		return nil
	}
	return days
}
