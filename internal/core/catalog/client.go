package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 外部食譜與庫存服務的 HTTP client
type Client struct {
	config config.CatalogConfig
	client *resty.Client
}

// NewClient 創建食譜來源 client
func NewClient(cfg config.CatalogConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "pantry-recommender")

	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Retries > 0 {
		client.SetRetryCount(cfg.Retries).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &Client{config: cfg, client: client}
}

// Enabled 是否已設定食譜來源
func (c *Client) Enabled() bool {
	return c != nil && c.config.Enabled && c.config.BaseURL != ""
}

// FetchRecipes 取得食譜；mealType 非 any 時由來源過濾
func (c *Client) FetchRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.Recipe, error) {
	if !c.Enabled() {
		return nil, common.ErrCatalogDisabled
	}

	params := url.Values{}
	if mt := mealType.OrAny(); mt != common.MealAny {
		params.Set("meal_type", string(mt))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var recipes []common.Recipe
	if err := c.get(ctx, "/recipes", params, &recipes); err != nil {
		return nil, err
	}
	return validRecords(recipes, "recipe"), nil
}

// FetchRecipe 取得單一食譜
func (c *Client) FetchRecipe(ctx context.Context, id string) (common.Recipe, error) {
	if !c.Enabled() {
		return common.Recipe{}, common.ErrCatalogDisabled
	}

	var recipe common.Recipe
	if err := c.get(ctx, "/recipes/"+url.PathEscape(id), nil, &recipe); err != nil {
		return common.Recipe{}, err
	}
	if err := common.Validate(recipe); err != nil {
		return common.Recipe{}, common.ErrCatalogUnavailable.Wrap(err)
	}
	return recipe, nil
}

// FetchInventory 取得使用者的可用庫存
func (c *Client) FetchInventory(ctx context.Context, userID string) ([]common.InventoryIngredient, error) {
	if !c.Enabled() {
		return nil, common.ErrCatalogDisabled
	}

	params := url.Values{}
	params.Set("status", string(common.StatusAvailable))

	var items []common.InventoryIngredient
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/inventory", params, &items); err != nil {
		return nil, err
	}
	return validRecords(items, "inventory"), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req := c.client.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return common.ErrCatalogUnavailable.Wrap(fmt.Errorf("GET %s: %w", path, err))
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return common.ErrNotFound.Wrap(fmt.Errorf("GET %s", path))
	case resp.StatusCode() != http.StatusOK:
		return common.ErrCatalogUnavailable.Wrap(fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode(), resp.String()))
	}

	if err := common.ParseJSONBytes(resp.Body(), out); err != nil {
		return common.ErrCatalogUnavailable.Wrap(fmt.Errorf("failed to parse %s response: %w", path, err))
	}
	return nil
}

// validRecords 略過驗證失敗的紀錄
func validRecords[T any](records []T, kind string) []T {
	out := make([]T, 0, len(records))
	for i, rec := range records {
		if err := common.Validate(rec); err != nil {
			common.LogWarn("略過無效的來源資料",
				zap.String("kind", kind),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, rec)
	}
	return out
}
