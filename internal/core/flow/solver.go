package flow

// MaxAugmentingPaths 增廣路徑數上限，超過時提前結束
const MaxAugmentingPaths = 100

// 剩餘容量視為零的誤差
const capacityEpsilon = 1e-9

// Result 最大流計算結果
type Result struct {
	TotalFlow       float64
	AugmentingPaths int
	// Truncated 因達到路徑上限而提前結束
	Truncated bool
}

// Solve 以 Edmonds–Karp（BFS 最短增廣路徑）計算 source 到 sink 的流量，結果寫回網路邊上
func Solve(n *Network, source, sink int) Result {
	var res Result
	if n == nil || source == sink || !n.valid(source) || !n.valid(sink) {
		return res
	}

	parent := make([]int, n.VertexCount())
	for {
		if res.AugmentingPaths >= MaxAugmentingPaths {
			res.Truncated = n.findPath(source, sink, parent)
			return res
		}
		if !n.findPath(source, sink, parent) {
			return res
		}

		// 找出瓶頸容量
		bottleneck := -1.0
		for v := sink; v != source; {
			e := &n.edges[parent[v]]
			if bottleneck < 0 || e.Residual() < bottleneck {
				bottleneck = e.Residual()
			}
			v = e.From
		}

		for v := sink; v != source; {
			id := parent[v]
			n.edges[id].Flow += bottleneck
			n.edges[id^1].Flow -= bottleneck
			v = n.edges[id].From
		}

		res.TotalFlow += bottleneck
		res.AugmentingPaths++
	}
}

// Solve 以網路自身的來源與匯點計算
func (n *Network) Solve() Result {
	return Solve(n, n.Source, n.Sink)
}

func (n *Network) valid(v int) bool {
	return v >= 0 && v < len(n.vertices)
}

// findPath BFS 尋找邊數最少的增廣路徑，parent 記錄抵達各頂點的邊編號
func (n *Network) findPath(source, sink int, parent []int) bool {
	for i := range parent {
		parent[i] = -1
	}
	visited := make([]bool, len(parent))
	visited[source] = true

	queue := []int{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, id := range n.adj[u] {
			e := &n.edges[id]
			if visited[e.To] || e.Residual() <= capacityEpsilon {
				continue
			}
			visited[e.To] = true
			parent[e.To] = id
			if e.To == sink {
				return true
			}
			queue = append(queue, e.To)
		}
	}
	return false
}
