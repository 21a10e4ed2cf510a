package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/pkg/common"

	"gopkg.in/yaml.v3"
)

// Fixture 離線推薦用的庫存與食譜資料
type Fixture struct {
	MealType            string                       `json:"meal_type" yaml:"meal_type"`
	Count               int                          `json:"count" yaml:"count" validate:"gte=0"`
	PrioritizeExpiring  *bool                        `json:"prioritize_expiring" yaml:"prioritize_expiring"`
	SelectedIngredients []string                     `json:"selected_ingredients" yaml:"selected_ingredients"`
	Inventory           []common.InventoryIngredient `json:"inventory" yaml:"inventory" validate:"dive"`
	Recipes             []common.Recipe              `json:"recipes" yaml:"recipes" validate:"dive"`
}

// Load 讀取 fixture 檔案；.json 以 JSON 解析，其餘視為 YAML
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parse = ParseJSON
	}
	fx, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// Parse 解析並驗證 YAML 內容，未知欄位視為錯誤
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return validated(&fx)
}

// ParseJSON 解析並驗證 JSON 內容，未知欄位視為錯誤
func ParseJSON(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := common.ParseJSONBytesStrict(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return validated(&fx)
}

func validated(fx *Fixture) (*Fixture, error) {
	if _, err := common.ParseMealType(fx.MealType); err != nil {
		return nil, err
	}
	if err := common.Validate(fx); err != nil {
		return nil, err
	}
	return fx, nil
}

// Options 轉為推薦選項
func (f *Fixture) Options() recommend.Options {
	opts := recommend.DefaultOptions()
	opts.MealType, _ = common.ParseMealType(f.MealType)
	opts.SelectedIngredientNames = f.SelectedIngredients
	if f.PrioritizeExpiring != nil {
		opts.PrioritizeExpiring = *f.PrioritizeExpiring
	}
	return opts
}

// Recommend 以預設引擎計算 fixture 的推薦
func (f *Fixture) Recommend(r *recommend.Recommender) []common.RecipeScoreResult {
	count := f.Count
	if count == 0 {
		count = recommend.DefaultCount
	}
	if r == nil {
		return recommend.Recommend(f.Inventory, f.Recipes, f.Options(), count)
	}
	return r.Recommend(f.Inventory, f.Recipes, f.Options(), count)
}
