package recommend

import (
	"testing"
	"time"

	"pantry-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDays(ing common.InventoryIngredient, days int) common.InventoryIngredient {
	ing.DaysUntilExpiry = &days
	return ing
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, common.NoExpiryDays, DaysUntilExpiry(item("1", "rice"), now))
	assert.Equal(t, 3, DaysUntilExpiry(withDays(item("1", "milk"), 3), now))
	assert.Equal(t, -1, DaysUntilExpiry(withDays(item("1", "milk"), -9), now))

	at := now.Add(50 * time.Hour)
	ing := item("1", "yogurt")
	ing.ExpiresAt = &at
	assert.Equal(t, 2, DaysUntilExpiry(ing, now))

	// 明確天數優先於到期時間
	ing = withDays(ing, 6)
	assert.Equal(t, 6, DaysUntilExpiry(ing, now))
}

func TestWeigh_ExpiryTiers(t *testing.T) {
	now := time.Now()
	about := item("e", "cream")
	about.AboutToExpire = true

	inventory := []common.InventoryIngredient{
		withDays(item("a", "milk"), 0),
		withDays(item("b", "egg"), 2),
		withDays(item("c", "cheese"), 6),
		withDays(item("d", "rice"), 30),
		about,
		item("f", "flour"),
	}

	got := Weigh(inventory, Options{PrioritizeExpiring: true}, now)
	require.Len(t, got, 6)
	weights := make(map[string]float64, len(got))
	for _, w := range got {
		weights[w.ID] = w.Weight
		assert.False(t, w.Selected)
	}
	assert.Equal(t, 15.0, weights["a"])
	assert.Equal(t, 12.0, weights["b"])
	assert.Equal(t, 6.0, weights["c"])
	assert.Equal(t, 1.0, weights["d"])
	assert.Equal(t, 9.0, weights["e"])
	assert.Equal(t, 1.0, weights["f"])

	got = Weigh(inventory[:1], Options{PrioritizeExpiring: false}, now)
	require.Len(t, got, 1)
	assert.Equal(t, 7.5, got[0].Weight)
}

func TestWeigh_SkipsUnavailable(t *testing.T) {
	consumed := item("a", "milk")
	consumed.Status = common.StatusConsumed
	expired := item("b", "egg")
	expired.Status = common.StatusExpired
	unnamed := item("c", "  ")
	noStatus := item("d", "butter")
	noStatus.Status = ""

	got := Weigh([]common.InventoryIngredient{consumed, expired, unnamed, noStatus}, DefaultOptions(), time.Now())
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].ID)
}

func TestWeigh_Selection(t *testing.T) {
	inventory := []common.InventoryIngredient{
		withDays(item("a", "Whole Milk"), 10),
		withDays(item("b", "egg"), 10),
		withDays(item("c", "Crème Fraîche"), 10),
	}

	opts := DefaultOptions()
	opts.SelectedIngredientNames = []string{"MILK", "creme fraiche", " "}

	got := Weigh(inventory, opts, time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	for _, w := range got {
		assert.True(t, w.Selected)
		assert.Equal(t, 2.0, w.Weight)
	}

	opts.SelectedIngredientNames = []string{"  "}
	assert.Len(t, Weigh(inventory, opts, time.Now()), 3)
}

func TestRecommend_SelectionRestrictsIngredients(t *testing.T) {
	inventory := []common.InventoryIngredient{item("i1", "milk"), item("i2", "beef")}
	recipes := []common.Recipe{
		recipe("stew", common.MealAny, "beef", "carrot"),
		recipe("shake", common.MealAny, "milk", "banana"),
	}

	opts := DefaultOptions()
	opts.SelectedIngredientNames = []string{"beef"}

	got := Recommend(inventory, recipes, opts, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "stew", got[0].ID)
	assert.Equal(t, 0, got[1].MatchCount)
}
