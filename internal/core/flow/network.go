package flow

import (
	"fmt"

	"pantry-recommender/internal/core/match"
	"pantry-recommender/internal/pkg/common"
)

// VertexKind 頂點種類
type VertexKind int

const (
	KindSource VertexKind = iota
	KindSink
	KindIngredient
	KindRecipe
	KindNutrition
	KindBalancedMeal
)

func (k VertexKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindSink:
		return "sink"
	case KindIngredient:
		return "ingredient"
	case KindRecipe:
		return "recipe"
	case KindNutrition:
		return "nutrition"
	case KindBalancedMeal:
		return "balanced_meal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Vertex 網路頂點；Ref 為對應食材或食譜在 Network 中的索引，其餘種類為 -1
type Vertex struct {
	ID    int
	Kind  VertexKind
	Label string
	Ref   int
}

// EdgeRole 邊的角色資料；反向殘餘邊為 nil
type EdgeRole interface {
	edgeRole()
}

// SourceToIngredient 來源→食材
type SourceToIngredient struct {
	NormalizedQuantity float64
	ExpiryWeight       float64
	DaysUntilExpiry    int
}

// IngredientToRecipe 食材→食譜
type IngredientToRecipe struct {
	MatchQuality   float64
	MatchType      match.MatchType
	MatchedWith    string
	AdjustedWeight float64
	QuantityFactor float64
}

// RecipeToSink 食譜→匯點
type RecipeToSink struct {
	MatchedCount     int
	TotalIngredients int
	Coverage         float64
	MealTypeBoost    float64
	Importance       float64
}

// NutritionLink 營養分類→食譜（僅供參考）
type NutritionLink struct {
	Category   NutritionCategory
	MatchCount int
	Boost      float64
}

// BalancedMealLink 均衡餐點→食譜（僅供參考）
type BalancedMealLink struct {
	Categories []NutritionCategory
	Boost      float64
}

func (SourceToIngredient) edgeRole() {}
func (IngredientToRecipe) edgeRole() {}
func (RecipeToSink) edgeRole() {}
func (NutritionLink) edgeRole() {}
func (BalancedMealLink) edgeRole() {}

// Edge 邊記錄；正向邊與其反向邊成對存放，編號為 id 與 id^1
type Edge struct {
	ID       int
	From     int
	To       int
	Capacity float64
	Flow     float64
	Role     EdgeRole
}

// Residual 剩餘容量
func (e *Edge) Residual() float64 {
	return e.Capacity - e.Flow
}

// IsReverse 是否為反向殘餘邊
func (e *Edge) IsReverse() bool {
	return e.ID%2 == 1
}

// IngredientNode 食材頂點與其來源邊
type IngredientNode struct {
	Vertex     int
	SourceEdge int
	Ingredient common.WeightedIngredient
}

// RecipeNode 食譜頂點與相關邊
type RecipeNode struct {
	Vertex         int
	SinkEdge       int
	BalancedEdge   int
	MatchEdges     []int
	NutritionEdges []int
	Recipe         common.Recipe
}

// Network 每次推薦請求建立的流量網路
type Network struct {
	Source            int
	Sink              int
	PreferredMealType common.MealType
	Ingredients       []IngredientNode
	Recipes           []RecipeNode

	vertices []Vertex
	edges    []Edge
	adj      [][]int
}

// NewNetwork 創建只含來源與匯點的網路
func NewNetwork(preferred common.MealType) *Network {
	n := &Network{PreferredMealType: preferred.OrAny()}
	n.Source = n.AddVertex(KindSource, "source", -1)
	n.Sink = n.AddVertex(KindSink, "sink", -1)
	return n
}

// AddVertex 新增頂點並回傳編號
func (n *Network) AddVertex(kind VertexKind, label string, ref int) int {
	id := len(n.vertices)
	n.vertices = append(n.vertices, Vertex{ID: id, Kind: kind, Label: label, Ref: ref})
	n.adj = append(n.adj, nil)
	return id
}

// AddEdge 新增正向邊並同時建立容量為 0 的反向邊，回傳正向邊編號
func (n *Network) AddEdge(from, to int, capacity float64, role EdgeRole) int {
	id := len(n.edges)
	n.edges = append(n.edges,
		Edge{ID: id, From: from, To: to, Capacity: capacity, Role: role},
		Edge{ID: id + 1, From: to, To: from},
	)
	n.adj[from] = append(n.adj[from], id)
	n.adj[to] = append(n.adj[to], id+1)
	return id
}

// Vertex 依編號取得頂點
func (n *Network) Vertex(id int) Vertex {
	return n.vertices[id]
}

// VertexCount 頂點數
func (n *Network) VertexCount() int {
	return len(n.vertices)
}

// Edge 依編號取得邊
func (n *Network) Edge(id int) *Edge {
	return &n.edges[id]
}

// EdgeCount 邊數（含反向邊）
func (n *Network) EdgeCount() int {
	return len(n.edges)
}

// OutEdges 頂點的所有出邊編號（含反向邊）
func (n *Network) OutEdges(v int) []int {
	return n.adj[v]
}

// VerticesOf 指定種類的頂點編號
func (n *Network) VerticesOf(kind VertexKind) []int {
	var out []int
	for _, v := range n.vertices {
		if v.Kind == kind {
			out = append(out, v.ID)
		}
	}
	return out
}

// IngredientOf 頂點對應的食材，非食材頂點回傳 false
func (n *Network) IngredientOf(v int) (IngredientNode, bool) {
	if v < 0 || v >= len(n.vertices) || n.vertices[v].Kind != KindIngredient {
		return IngredientNode{}, false
	}
	return n.Ingredients[n.vertices[v].Ref], true
}

// SinkRole 食譜的匯點邊資料
func (n *Network) SinkRole(r RecipeNode) RecipeToSink {
	role, _ := n.edges[r.SinkEdge].Role.(RecipeToSink)
	return role
}

// ResetFlow 將所有邊的流量歸零
func (n *Network) ResetFlow() {
	for i := range n.edges {
		n.edges[i].Flow = 0
	}
}
