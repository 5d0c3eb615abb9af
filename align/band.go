package align

import (
	"container/heap"
	"sort"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

type nodePosWithDistance struct {
	node     int
	end      bool
	distance int
}

type nodePosQueue []nodePosWithDistance

func (q nodePosQueue) Len() int            { return len(q) }
func (q nodePosQueue) Less(i, j int) bool  { return q[i].distance < q[j].distance }
func (q nodePosQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodePosQueue) Push(x interface{}) { *q = append(*q, x.(nodePosWithDistance)) }
func (q *nodePosQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// bandOrders collects the banded nodes of one column split by evaluation
// order: nodes below FirstInOrder sit on feedback cuts and go last.
type bandOrders struct {
	inOrder    map[int]bool
	outOfOrder map[int]bool
}

func newBandOrders() *bandOrders {
	return &bandOrders{inOrder: make(map[int]bool), outOfOrder: make(map[int]bool)}
}

func (a *Aligner) addToOrders(o *bandOrders, nodeIndex int) {
	if nodeIndex < a.graph.FirstInOrder {
		o.outOfOrder[nodeIndex] = true
	} else {
		o.inOrder[nodeIndex] = true
	}
}

func sortedNodes(set map[int]bool) []int {
	nodes := make([]int, 0, len(set))
	for i := range set {
		nodes = append(nodes, i)
	}
	sort.Ints(nodes)
	return nodes
}

// expandBandFromPositions grows the band by Dijkstra outward from the given
// character positions, bounded by dynamicWidth. Distances count characters:
// an edge costs one and going from the first to the last character of a
// node costs the node length minus one, so the start of the next node is
// the node length away.
func (a *Aligner) expandBandFromPositions(band []bool, startPositions map[int]bool, dynamicWidth int, orders *bandOrders) {
	queue := &nodePosQueue{}
	for startpos := range startPositions {
		nodeIndex := a.graph.IndexToNode[startpos]
		band[nodeIndex] = true
		a.addToOrders(orders, nodeIndex)
		start := a.graph.NodeStart[nodeIndex]
		end := a.graph.NodeEnd[nodeIndex]
		heap.Push(queue, nodePosWithDistance{nodeIndex, false, startpos - start})
		heap.Push(queue, nodePosWithDistance{nodeIndex, true, end - startpos - 1})
	}
	distanceAtNodeStart := make(map[int]int)
	distanceAtNodeEnd := make(map[int]int)
	for queue.Len() > 0 {
		top := heap.Pop(queue).(nodePosWithDistance)
		if top.distance > dynamicWidth {
			continue
		}
		if top.end {
			if found, ok := distanceAtNodeEnd[top.node]; ok && found <= top.distance {
				continue
			}
			distanceAtNodeEnd[top.node] = top.distance
		} else {
			if found, ok := distanceAtNodeStart[top.node]; ok && found <= top.distance {
				continue
			}
			distanceAtNodeStart[top.node] = top.distance
		}
		nodeIndex := top.node
		band[nodeIndex] = true
		a.addToOrders(orders, nodeIndex)
		size := a.graph.NodeEnd[nodeIndex] - a.graph.NodeStart[nodeIndex]
		if top.end {
			heap.Push(queue, nodePosWithDistance{nodeIndex, false, top.distance + size - 1})
			for _, neighbor := range a.graph.OutNeighbors[nodeIndex] {
				heap.Push(queue, nodePosWithDistance{neighbor, false, top.distance + 1})
			}
		} else {
			heap.Push(queue, nodePosWithDistance{nodeIndex, true, top.distance + size - 1})
			for _, neighbor := range a.graph.InNeighbors[nodeIndex] {
				heap.Push(queue, nodePosWithDistance{neighbor, true, top.distance + 1})
			}
		}
	}
}

// projectForwardAndExpandBand derives the next column's band from the
// previous column's minimum position: the position itself, its graph aware
// projection 64 characters forward, and everything within dynamicWidth of
// those.
func (a *Aligner) projectForwardAndExpandBand(band []bool, previousMinimumIndex, dynamicWidth int, orders *bandOrders) {
	nodeIndex := a.graph.IndexToNode[previousMinimumIndex]
	positions := map[int]bool{previousMinimumIndex: true}
	positions = a.graph.ProjectForward(positions, wordbits.WordSize)
	positions[previousMinimumIndex] = true
	band[nodeIndex] = true
	a.addToOrders(orders, nodeIndex)
	a.expandBandFromPositions(band, positions, dynamicWidth, orders)
}

// getFullBand is the all-nodes band used for the first dynamicRowStart rows.
func (a *Aligner) getFullBand(dynamicRowStart int) [][]bool {
	result := make([][]bool, dynamicRowStart/wordbits.WordSize)
	for i := range result {
		result[i] = make([]bool, len(a.graph.NodeStart))
		for j := range result[i] {
			result[i][j] = true
		}
	}
	return result
}

// getExtendedNodeBand is the seed band: all nodes within
// startExtensionWidth characters of nodeIndex along out edges.
func (a *Aligner) getExtendedNodeBand(nodeIndex, startExtensionWidth int) [][]bool {
	result := make([][]bool, 1)
	result[0] = make([]bool, len(a.graph.NodeStart))
	visited := make(map[int]bool)
	queue := &nodePosQueue{}
	heap.Push(queue, nodePosWithDistance{nodeIndex, true, 0})
	for queue.Len() > 0 {
		top := heap.Pop(queue).(nodePosWithDistance)
		if top.distance > startExtensionWidth {
			continue
		}
		if visited[top.node] {
			continue
		}
		result[0][top.node] = true
		visited[top.node] = true
		newDistance := top.distance + a.graph.NodeEnd[top.node] - a.graph.NodeStart[top.node]
		for _, neighbor := range a.graph.OutNeighbors[top.node] {
			heap.Push(queue, nodePosWithDistance{neighbor, true, newDistance})
		}
	}
	return result
}

// getBandOrder splits an explicit start band into the two evaluation sets.
func (a *Aligner) getBandOrder(band []bool, orders *bandOrders) {
	for i := 0; i < a.graph.FirstInOrder; i++ {
		if band[i] {
			orders.outOfOrder[i] = true
		}
	}
	for i := a.graph.FirstInOrder; i < len(band); i++ {
		if band[i] {
			orders.inOrder[i] = true
		}
	}
}
