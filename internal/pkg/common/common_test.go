package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := ErrCatalogUnavailable.Wrap(cause)

	assert.Equal(t, "食譜來源服務無法使用: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("fetch recipes: %w", err)
	ce := AsCustomError(wrapped)
	assert.Equal(t, http.StatusBadGateway, ce.Status)

	resp := ce.ToResponse(false)
	assert.Equal(t, "CATALOG_UNAVAILABLE", resp.Code)
	assert.Empty(t, resp.Details)
	assert.Equal(t, "dial tcp: refused", ce.ToResponse(true).Details)

	// 原始預定義錯誤不受 Wrap 影響
	assert.Nil(t, ErrCatalogUnavailable.Err)
}

func TestAsCustomError(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidRequest, AsCustomError(NewValidationError("bad")).Code)
	assert.Equal(t, ErrCodeInternalError, AsCustomError(errors.New("boom")).Code)
	assert.Equal(t, "QUEUE_FULL", AsCustomError(ErrQueueFull).Code)
}

type sample struct {
	ID    string   `validate:"required"`
	Count int      `validate:"gte=0"`
	Items []nested `validate:"dive"`
}

type nested struct {
	Name string `validate:"required"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sample{ID: "a", Items: []nested{{Name: "x"}}}))

	err := Validate(sample{Count: -1, Items: []nested{{}}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "sample.ID: required")
	assert.Contains(t, err.Error(), "sample.Count: gte=0")
	assert.Contains(t, err.Error(), "sample.Items[0].Name: required")

	days := 3
	item := InventoryIngredient{ID: "1", Name: "milk", DaysUntilExpiry: &days, Status: "rotten"}
	assert.Error(t, Validate(item))
	item.Status = StatusAvailable
	assert.NoError(t, Validate(item))
}

func TestParseMealType(t *testing.T) {
	for in, want := range map[string]MealType{
		"":           MealAny,
		"any":        MealAny,
		" Breakfast": MealBreakfast,
		"LUNCH":      MealLunch,
		"dinner":     MealDinner,
		"dessert":    MealDessert,
	} {
		got, err := ParseMealType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMealType("brunch")
	assert.True(t, IsValidationError(err))
	assert.Equal(t, MealAny, MealType("").OrAny())
}

func TestInventoryHelpers(t *testing.T) {
	assert.True(t, InventoryIngredient{}.IsAvailable())
	assert.True(t, InventoryIngredient{Status: StatusAvailable}.IsAvailable())
	assert.False(t, InventoryIngredient{Status: StatusWasted}.IsAvailable())

	days := 2
	out := FormatIngredients([]InventoryIngredient{
		{Name: "milk", Quantity: 1.5, Unit: "l", DaysUntilExpiry: &days, Status: StatusAvailable},
		{Name: "rice", Quantity: 500, Unit: "g"},
	})
	assert.Equal(t, "- milk: 1.5l, 2天, available\n- rice: 500g, -天, \n", out)

	assert.Equal(t, "", StringSliceToString(nil))
	assert.Equal(t, "a、b", StringSliceToString([]string{"a", "b"}))
}

func TestJSONHelpers(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSONBytes([]byte(`{"name":"milk","extra":1}`), &v))
	assert.Equal(t, "milk", v.Name)

	assert.Error(t, ParseJSONBytesStrict([]byte(`{"name":"milk","extra":1}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"name":"a"} {"name":"b"}`), &v))

	s, err := ToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s)

	_, err = ToJSON(make(chan int))
	assert.Error(t, err)

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s, err = ToIndentedJSON(struct {
		At time.Time `json:"at"`
	}{ts})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"at\": \"2024-01-02T00:00:00Z\"\n}", s)
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
