package recommend

import (
	"fmt"
	"testing"
	"time"

	"pantry-recommender/internal/core/flow"
	"pantry-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, name string) common.InventoryIngredient {
	return common.InventoryIngredient{ID: id, Name: name, Quantity: 1, Unit: "unit", Status: common.StatusAvailable}
}

func recipe(id string, mealType common.MealType, ingredients ...string) common.Recipe {
	return common.Recipe{ID: id, Title: "recipe " + id, Ingredients: ingredients, MealType: mealType}
}

func optionsFor(mealType common.MealType) Options {
	opts := DefaultOptions()
	opts.MealType = mealType
	return opts
}

func TestRecommend_BreakfastScenario(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "milk"), item("i2", "egg")}
	recipes := []common.Recipe{
		recipe("1", common.MealBreakfast, "milk", "egg", "flour"),
		recipe("2", common.MealDinner, "beef", "rice"),
	}

	got := Recommend(inventory, recipes, optionsFor(common.MealBreakfast), 2)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, []string{"flour"}, got[0].MissedIngredients)
	assert.Equal(t, 2, got[0].MatchCount)
	assert.ElementsMatch(t, []string{"i1", "i2"}, got[0].UsedIngredients)
	assert.ElementsMatch(t, []string{"milk", "egg"}, got[0].UsedIngredientNames)
	assert.InDelta(t, 2.0/3.0, got[0].Coverage, 1e-9)
}

func TestRecommend_Deterministic(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "chicken breast"), item("i2", "tomato"), item("i3", "olive oil"), item("i4", "milk")}
	recipes := []common.Recipe{
		recipe("a", common.MealDinner, "chicken", "tomato", "garlic"),
		recipe("b", common.MealAny, "tomato sauce", "pasta"),
		recipe("c", common.MealLunch, "chicken", "olive oil", "lemon", "rice"),
		recipe("d", common.MealBreakfast, "milk", "oats"),
	}

	first := Recommend(inventory, recipes, DefaultOptions(), 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Recommend(inventory, recipes, DefaultOptions(), 4))
	}
}

func TestRecommend_ScoreBounds(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "milk"), item("i2", "egg"), item("i3", "butter"), item("i4", "sugar")}
	days := 0
	inventory[0].DaysUntilExpiry = &days

	recipes := []common.Recipe{
		recipe("1", common.MealDessert, "milk", "egg", "butter", "sugar"),
		recipe("2", common.MealAny),
		recipe("3", common.MealDinner, "beef", "rice", "onion", "garlic", "carrot", "celery", "potato", "thyme"),
		recipe("4", common.MealBreakfast, "milk"),
	}

	for _, mt := range []common.MealType{common.MealAny, common.MealDessert, common.MealBreakfast} {
		for _, r := range Recommend(inventory, recipes, optionsFor(mt), 10) {
			assert.GreaterOrEqual(t, r.Score, 0, r.ID)
			assert.LessOrEqual(t, r.Score, 100, r.ID)
		}
	}
}

func TestRecommend_ZeroMatchFloor(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "milk")}
	recipes := []common.Recipe{
		recipe("1", common.MealAny, "milk", "cereal"),
		recipe("2", common.MealAny, "beef", "rice"),
		recipe("3", common.MealBreakfast, "bacon", "bread"),
	}

	for _, mt := range []common.MealType{common.MealAny, common.MealBreakfast} {
		got := Recommend(inventory, recipes, optionsFor(mt), 3)
		for _, r := range got {
			if r.MatchCount == 0 {
				assert.LessOrEqual(t, r.Score, 5, r.ID)
				assert.Zero(t, r.Coverage)
				assert.Empty(t, r.UsedIngredients)
			}
		}
		require.NotEmpty(t, got)
		assert.Equal(t, "1", got[0].ID)
	}
}

func TestRecommend_FewerMissingScoresHigher(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "milk"), item("i2", "egg")}
	recipes := []common.Recipe{
		recipe("more", common.MealBreakfast, "milk", "egg", "flour", "sugar"),
		recipe("fewer", common.MealBreakfast, "milk", "egg", "flour"),
	}

	got := Recommend(inventory, recipes, optionsFor(common.MealBreakfast), 2)
	require.Len(t, got, 2)
	assert.Equal(t, "fewer", got[0].ID)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
	assert.Len(t, got[0].MissedIngredients, 1)
	assert.Len(t, got[1].MissedIngredients, 2)
}

func TestRecommend_Truncation(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "milk")}
	var recipes []common.Recipe
	for i := 0; i < 6; i++ {
		recipes = append(recipes, recipe(fmt.Sprintf("r%d", i), common.MealAny, "milk", "honey"))
	}

	assert.Len(t, Recommend(inventory, recipes, DefaultOptions(), 3), 3)
	assert.Len(t, Recommend(inventory, recipes[:2], DefaultOptions(), 3), 2)
	assert.Len(t, Recommend(inventory, recipes, DefaultOptions(), 0), 1)
	assert.Len(t, Recommend(inventory, recipes, DefaultOptions(), -4), 1)
}

func TestRecommend_MealTypeFiltering(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "egg"), item("i2", "beef")}
	recipes := []common.Recipe{
		recipe("1", common.MealBreakfast, "egg", "toast"),
		recipe("2", common.MealDinner, "beef", "egg"),
		recipe("3", common.MealAny, "egg"),
		recipe("4", "", "beef"),
		recipe("5", common.MealDessert, "egg", "sugar"),
	}

	got := Recommend(inventory, recipes, optionsFor(common.MealBreakfast), 10)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Contains(t, []common.MealType{common.MealBreakfast, common.MealAny}, r.MealType, r.ID)
	}
}

func TestRecommend_EmptyInputs(t *testing.T) {
	recipes := []common.Recipe{recipe("1", common.MealAny, "milk")}
	inventory := []common.InventoryIngredient{item("i1", "milk")}

	got := Recommend(nil, recipes, DefaultOptions(), 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Recommend(inventory, nil, DefaultOptions(), 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	consumed := item("i2", "milk")
	consumed.Status = common.StatusConsumed
	assert.Empty(t, Recommend([]common.InventoryIngredient{consumed}, recipes, DefaultOptions(), 5))
}

func TestRecommend_StaplesNeverMissing(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "rice")}
	recipes := []common.Recipe{recipe("1", common.MealAny, "rice", "water", "salt")}

	got := Recommend(inventory, recipes, DefaultOptions(), 1)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"salt"}, got[0].MissedIngredients)
	assert.Equal(t, 1, got[0].MatchCount)
}

func TestRecommend_ExpiryFromClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(36 * time.Hour)
	late := now.Add(30 * 24 * time.Hour)

	fresh := item("i1", "spinach")
	fresh.ExpiresAt = &soon
	stored := item("i2", "rice")
	stored.ExpiresAt = &late

	r := New(WithClock(func() time.Time { return now }))
	got := r.Recommend(
		[]common.InventoryIngredient{fresh, stored},
		[]common.Recipe{recipe("1", common.MealAny, "spinach", "rice")},
		DefaultOptions(), 1,
	)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].MatchCount)
	assert.Equal(t, 1, got[0].ExpiringIngredientCount)
}

func TestRecommend_SameLineMatchedTwice(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		ts := now.Add(time.Duration(days) * 24 * time.Hour)
		return &ts
	}

	milk, egg, spare := item("i1", "milk"), item("i2", "egg"), item("i3", "Egg")
	milk.ExpiresAt, egg.ExpiresAt, spare.ExpiresAt = at(2), at(30), at(1)

	r := New(WithClock(func() time.Time { return now }))
	got := r.Recommend(
		[]common.InventoryIngredient{milk, egg, spare},
		[]common.Recipe{recipe("1", common.MealBreakfast, "milk", "egg", "flour")},
		optionsFor(common.MealBreakfast), 1,
	)
	require.Len(t, got, 1)
	res := got[0]

	assert.ElementsMatch(t, []string{"i1", "i2", "i3"}, res.UsedIngredients)
	assert.Equal(t, []string{"flour"}, res.MissedIngredients)
	assert.Equal(t, 2, res.MatchCount)
	assert.Equal(t, 2, res.ExpiringIngredientCount)
	assert.LessOrEqual(t, res.MatchCount+len(res.MissedIngredients), res.TotalIngredients)
	assert.LessOrEqual(t, res.ExpiringIngredientCount, res.MatchCount)
	assert.InDelta(t, 2.0/3.0, res.Coverage, 1e-9)
}

func TestRecommend_FallbackOnPanic(t *testing.T) {
	r := New()
	r.rank = func(*flow.Network, int) []common.RecipeScoreResult {
		panic("boom")
	}

	recipes := []common.Recipe{
		recipe("1", common.MealBreakfast, "milk", "egg"),
		recipe("2", common.MealDinner, "beef"),
		recipe("3", common.MealAny, "oats"),
		recipe("4", common.MealBreakfast, "bread"),
	}

	got := r.Recommend([]common.InventoryIngredient{item("i1", "milk")}, recipes, optionsFor(common.MealBreakfast), 2)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 2, got[0].Score)
	assert.Equal(t, "3", got[1].ID)
	assert.Equal(t, 1, got[1].Score)
	assert.Equal(t, []string{"oats"}, got[1].MissedIngredients)
	assert.NotNil(t, got[1].UsedIngredients)
}

func TestFallback(t *testing.T) {
	recipes := []common.Recipe{
		recipe("1", common.MealLunch),
		recipe("2", common.MealDinner),
	}

	got := Fallback(recipes, common.MealAny, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Score)

	got = Fallback(recipes, common.MealDinner, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 2, got[0].Score)
}

func TestBaseScoreTiers(t *testing.T) {
	assert.Equal(t, 90.0, BaseScore(0, 1))
	assert.InDelta(t, 80, BaseScore(1, 0), 1e-9)
	assert.InDelta(t, 87, BaseScore(1, 1), 1e-9)
	assert.InDelta(t, 75, BaseScore(2, 1), 1e-9)
	assert.InDelta(t, 55, BaseScore(3, 1), 1e-9)
	assert.InDelta(t, 40, BaseScore(5, 1), 1e-9)
	assert.InDelta(t, 25, BaseScore(9, 1), 1e-9)

	for missing := 0; missing < 8; missing++ {
		assert.GreaterOrEqual(t, BaseScore(missing, 0.5), BaseScore(missing+1, 0.5))
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-12))
	assert.Equal(t, 100, clampScore(140.2))
	assert.Equal(t, 43, clampScore(42.5))
}

func TestOptionsString(t *testing.T) {
	opts := Options{PrioritizeExpiring: true, SelectedIngredientNames: []string{"milk", "egg"}}
	assert.Equal(t, "meal_type=any prioritize_expiring=true selected=milk、egg", opts.String())
}
