package recommend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pantry-recommender/internal/core/cache"
	"pantry-recommender/internal/core/catalog"
	"pantry-recommender/internal/core/queue"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Recommend: config.RecommendConfig{DefaultCount: 5, MaxCount: 3, RecipeLimit: 50},
		Cache:     config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute},
		Queue:     config.QueueConfig{Workers: 2, MaxSize: 4},
	}
}

func newTestService(t *testing.T, cat *catalog.Client) *Service {
	t.Helper()
	cfg := testConfig()
	q := queue.NewManager(cfg.Queue)
	q.Start()
	svc := NewService(cfg, New(), cache.NewManager(cfg.Cache), q, cat)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func breakfastRequest() RecommendRequest {
	return RecommendRequest{
		Inventory: []common.InventoryIngredient{item("i1", "milk"), item("i2", "egg")},
		Recipes: []common.Recipe{
			recipe("1", common.MealBreakfast, "milk", "egg", "flour"),
			recipe("2", common.MealDinner, "beef", "rice"),
		},
		MealType: "breakfast",
		Count:    2,
	}
}

func TestService_RecommendInline(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	resp, err := svc.Recommend(ctx, breakfastRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.Cached)
	assert.Equal(t, common.MealBreakfast, resp.MealType)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, []string{"flour"}, resp.Recommendations[0].MissedIngredients)

	req := breakfastRequest()
	req.RequestID = "fixed"
	again, err := svc.Recommend(ctx, req)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, "fixed", again.RequestID)
	assert.Equal(t, resp.Recommendations, again.Recommendations)

	req.MealType = "any"
	other, err := svc.Recommend(ctx, req)
	require.NoError(t, err)
	assert.False(t, other.Cached)
	assert.Len(t, other.Recommendations, 2)
}

func TestService_RecommendCacheFollowsClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var clock atomic.Value
	clock.Store(now)

	cfg := testConfig()
	q := queue.NewManager(cfg.Queue)
	q.Start()
	engine := New(WithClock(func() time.Time { return clock.Load().(time.Time) }))
	svc := NewService(cfg, engine, cache.NewManager(cfg.Cache), q, nil)
	t.Cleanup(func() { _ = svc.Close() })

	expires := now.Add(9 * 24 * time.Hour)
	milk := item("i1", "milk")
	milk.ExpiresAt = &expires
	req := breakfastRequest()
	req.Inventory = []common.InventoryIngredient{milk, item("i2", "egg")}

	ctx := context.Background()
	first, err := svc.Recommend(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Len(t, first.Recommendations, 1)
	assert.Equal(t, 0, first.Recommendations[0].ExpiringIngredientCount)

	same, err := svc.Recommend(ctx, req)
	require.NoError(t, err)
	assert.True(t, same.Cached)

	// 三天後牛奶進入到期窗口，不可沿用舊結果
	clock.Store(now.Add(3 * 24 * time.Hour))
	later, err := svc.Recommend(ctx, req)
	require.NoError(t, err)
	assert.False(t, later.Cached)
	require.Len(t, later.Recommendations, 1)
	assert.Equal(t, 1, later.Recommendations[0].ExpiringIngredientCount)
}

func TestClockDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Nil(t, clockDays([]common.InventoryIngredient{item("i1", "milk")}, now))

	expires := now.Add(50 * time.Hour)
	fixed := 4
	dated, explicit := item("i1", "milk"), item("i2", "egg")
	dated.ExpiresAt = &expires
	explicit.ExpiresAt, explicit.DaysUntilExpiry = &expires, &fixed
	assert.Equal(t, []int{2, common.NoExpiryDays}, clockDays([]common.InventoryIngredient{dated, explicit}, now))
}

func TestService_RecommendCountLimits(t *testing.T) {
	svc := NewService(testConfig(), nil, nil, nil, nil)

	req := breakfastRequest()
	req.MealType = ""
	req.Count = 0
	for i := 0; i < 4; i++ {
		req.Recipes = append(req.Recipes, recipe(string(rune('a'+i)), common.MealAny, "milk"))
	}

	resp, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 3)
	assert.Equal(t, 3, resp.Count)
}

func TestService_RecommendValidation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	req := breakfastRequest()
	req.MealType = "supper"
	_, err := svc.Recommend(ctx, req)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	req = breakfastRequest()
	req.Count = -1
	_, err = svc.Recommend(ctx, req)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	req = breakfastRequest()
	req.Recipes[0].ID = ""
	_, err = svc.Recommend(ctx, req)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	req = breakfastRequest()
	req.Recipes = nil
	_, err = svc.Recommend(ctx, req)
	assert.ErrorIs(t, err, common.ErrCatalogDisabled)
}

func TestService_RecommendFromCatalog(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/recipes":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[{"id":"1","title":"Omelette","ingredients":["egg","cheese"],"meal_type":"breakfast"}]`))
		case "/users/u1/inventory":
			_, _ = w.Write([]byte(`[{"id":"i1","name":"egg","quantity":6,"status":"available"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cat := catalog.NewClient(config.CatalogConfig{Enabled: true, BaseURL: srv.URL, Timeout: time.Second})
	svc := newTestService(t, cat)

	prioritize := false
	resp, err := svc.Recommend(context.Background(), RecommendRequest{UserID: "u1", MealType: "breakfast", PrioritizeExpiring: &prioritize})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, []string{"i1"}, resp.Recommendations[0].UsedIngredients)
	assert.Equal(t, []string{"cheese"}, resp.Recommendations[0].MissedIngredients)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))

	status := svc.Status()
	assert.Equal(t, true, status["catalog_enabled"])
	assert.Equal(t, true, status["cache_enabled"])
	assert.Contains(t, status, "queue")
}

func TestService_Availability(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	rcp := recipe("r1", common.MealAny, "milk", "egg")
	got, err := svc.Availability(ctx, AvailabilityRequest{
		Inventory: []common.InventoryIngredient{item("i1", "milk")},
		Recipe:    &rcp,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCount)
	assert.Equal(t, 2, got.Total)

	_, err = svc.Availability(ctx, AvailabilityRequest{})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = svc.Availability(ctx, AvailabilityRequest{RecipeID: "r1"})
	assert.ErrorIs(t, err, common.ErrCatalogDisabled)
}

func TestService_Accept(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	inventory := []common.InventoryIngredient{item("i1", "milk"), item("i2", "egg")}

	plan, err := svc.Accept(ctx, AcceptRequest{RecipeID: "r1", Inventory: inventory, UsedIngredients: []string{"i2"}})
	require.NoError(t, err)
	require.Len(t, plan.Consumed, 1)
	assert.Equal(t, "i2", plan.Consumed[0].ID)

	_, err = svc.Accept(ctx, AcceptRequest{RecipeID: "r1", Inventory: inventory})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = svc.Accept(ctx, AcceptRequest{Inventory: inventory, UsedIngredients: []string{"i2"}})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = svc.Accept(ctx, AcceptRequest{RecipeID: "r1", UsedIngredients: []string{"i2"}})
	assert.ErrorIs(t, err, common.ErrNoInventory)
}

func TestService_Match(t *testing.T) {
	svc := NewService(testConfig(), nil, nil, nil, nil)

	resp, err := svc.Match(MatchRequest{Ingredient: "Tomato", Candidates: []string{"tomato sauce", "tomato"}})
	require.NoError(t, err)
	assert.Equal(t, "tomato", resp.Normalized)
	assert.Equal(t, "tomato", resp.Best.MatchedName)
	assert.Equal(t, 1.0, resp.Best.Quality)
	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "tomato sauce", resp.Candidates[0].Candidate)

	_, err = svc.Match(MatchRequest{Ingredient: "tomato"})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	status := svc.Status()
	assert.Equal(t, false, status["cache_enabled"])
	assert.NotContains(t, status, "queue")
}
