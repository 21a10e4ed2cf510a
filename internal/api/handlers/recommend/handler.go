package recommend

import (
	"net/http"
	"strings"

	"pantry-recommender/internal/api/middleware"
	recommendService "pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 推薦相關的 HTTP 處理程序
type Handler struct {
	service *recommendService.Service
	debug   bool
}

// NewHandler 創建推薦處理程序；debug 時錯誤響應附帶原始錯誤
func NewHandler(service *recommendService.Service, debug bool) *Handler {
	return &Handler{service: service, debug: debug}
}

// HandleRecommend POST /api/v1/recommendations
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := currentRequestID(c)

	var req recommendService.RecommendRequest
	if !h.bind(c, requestID, &req) {
		return
	}
	req.RequestID = requestID

	common.LogDebug("開始處理推薦請求",
		zap.String("request_id", requestID),
		zap.Int("inventory", len(req.Inventory)),
		zap.Int("recipes", len(req.Recipes)),
		zap.String("meal_type", req.MealType),
	)

	middleware.AnnotateLog(c,
		zap.String("meal_type", req.MealType),
		zap.Int("inventory", len(req.Inventory)),
		zap.Int("recipes", len(req.Recipes)),
	)

	resp, err := h.service.Recommend(c.Request.Context(), req)
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	middleware.AnnotateLog(c, zap.Int("results", resp.Count), zap.Bool("cached", resp.Cached))
	c.JSON(http.StatusOK, resp)
}

// HandleAvailability POST /api/v1/recipes/availability
func (h *Handler) HandleAvailability(c *gin.Context) {
	requestID := currentRequestID(c)

	var req recommendService.AvailabilityRequest
	if !h.bind(c, requestID, &req) {
		return
	}

	resp, err := h.service.Availability(c.Request.Context(), req)
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAccept POST /api/v1/recipes/:id/accept
func (h *Handler) HandleAccept(c *gin.Context) {
	requestID := currentRequestID(c)

	var req recommendService.AcceptRequest
	if !h.bind(c, requestID, &req) {
		return
	}
	// 路徑參數優先
	req.RecipeID = strings.TrimSpace(c.Param("id"))
	middleware.AnnotateLog(c, zap.String("recipe_id", req.RecipeID))

	plan, err := h.service.Accept(c.Request.Context(), req)
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// HandleMatch POST /api/v1/match
func (h *Handler) HandleMatch(c *gin.Context) {
	requestID := currentRequestID(c)

	var req recommendService.MatchRequest
	if !h.bind(c, requestID, &req) {
		return
	}

	resp, err := h.service.Match(req)
	if err != nil {
		h.fail(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bind(c *gin.Context, requestID string, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
		)
		h.fail(c, requestID, common.ErrInvalidRequest.Wrap(err))
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, requestID string, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("code", ce.Code),
		)
	}
	_ = c.Error(err)
	c.JSON(ce.Status, ce.ToResponse(h.debug))
}

func currentRequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}
