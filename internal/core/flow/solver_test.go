package flow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_ClassicNetwork(t *testing.T) {
	n := NewNetwork("")
	v := make([]int, 4)
	for i := range v {
		v[i] = n.AddVertex(KindRecipe, fmt.Sprintf("v%d", i+1), -1)
	}

	n.AddEdge(n.Source, v[0], 16, nil)
	n.AddEdge(n.Source, v[1], 13, nil)
	n.AddEdge(v[0], v[2], 12, nil)
	n.AddEdge(v[1], v[0], 4, nil)
	n.AddEdge(v[1], v[3], 14, nil)
	n.AddEdge(v[2], v[1], 9, nil)
	n.AddEdge(v[2], n.Sink, 20, nil)
	n.AddEdge(v[3], v[2], 7, nil)
	n.AddEdge(v[3], n.Sink, 4, nil)

	res := n.Solve()
	assert.InDelta(t, 23.0, res.TotalFlow, 1e-9)
	assert.False(t, res.Truncated)
	assert.Greater(t, res.AugmentingPaths, 0)

	// 容量限制與流量守恆
	for id := 0; id < n.EdgeCount(); id++ {
		e := n.Edge(id)
		assert.LessOrEqual(t, e.Flow, e.Capacity+1e-9)
		assert.InDelta(t, -e.Flow, n.Edge(id^1).Flow, 1e-9)
	}
	for _, u := range v {
		net := 0.0
		for _, id := range n.OutEdges(u) {
			net += n.Edge(id).Flow
		}
		assert.InDelta(t, 0.0, net, 1e-9)
	}
}

func TestSolve_PathCap(t *testing.T) {
	n := NewNetwork("")
	for i := 0; i < MaxAugmentingPaths+50; i++ {
		v := n.AddVertex(KindIngredient, fmt.Sprintf("i%d", i), -1)
		n.AddEdge(n.Source, v, 1, nil)
		n.AddEdge(v, n.Sink, 1, nil)
	}

	res := n.Solve()
	assert.Equal(t, MaxAugmentingPaths, res.AugmentingPaths)
	assert.InDelta(t, float64(MaxAugmentingPaths), res.TotalFlow, 1e-9)
	assert.True(t, res.Truncated)
}

func TestSolve_Degenerate(t *testing.T) {
	n := NewNetwork("")
	assert.Equal(t, Result{}, n.Solve())
	assert.Equal(t, Result{}, Solve(n, n.Source, n.Source))
	assert.Equal(t, Result{}, Solve(n, n.Source, 99))
	assert.Equal(t, Result{}, Solve(nil, 0, 1))
}

func TestAddEdgePairsReverse(t *testing.T) {
	n := NewNetwork("")
	id := n.AddEdge(n.Source, n.Sink, 3, SourceToIngredient{NormalizedQuantity: 3})
	require.Equal(t, 2, n.EdgeCount())

	fwd, rev := n.Edge(id), n.Edge(id^1)
	assert.False(t, fwd.IsReverse())
	assert.True(t, rev.IsReverse())
	assert.Equal(t, 0.0, rev.Capacity)
	assert.Nil(t, rev.Role)
	assert.Equal(t, fwd.From, rev.To)
	assert.IsType(t, SourceToIngredient{}, fwd.Role)

	n.Solve()
	assert.Equal(t, 3.0, fwd.Flow)
	n.ResetFlow()
	assert.Equal(t, 0.0, fwd.Flow)
}
