package seqgraph

import (
	"log"
	"sort"
)

const WordSize = 64

// CycleCut is the unrolled evaluation order for one feedback node. Nodes[0]
// is the node itself, Predecessors[k] only holds indices larger than k so a
// reverse sweep over Nodes sees every predecessor before its dependent, and
// PreviousCut marks entries whose value is pinned from an earlier cut
// evaluation instead of being calculated in place.
type CycleCut struct {
	Nodes        []int
	PreviousCut  []bool
	Predecessors [][]int
}

// Graph is a finalized bidirected sequence graph flattened for alignment.
// Every external node is stored twice, forward strand at bigraph id 2*id and
// reverse complement at 2*id+1. Nodes with index below FirstInOrder sit on a
// cycle and carry a CycleCut; the rest are in topological order.
type Graph struct {
	NodeSequences  []byte
	NodeStart      []int
	NodeEnd        []int
	NodeIDs        []int
	Reverse        []bool
	InNeighbors    [][]int
	OutNeighbors   [][]int
	IndexToNode    []int
	NodeLookup     map[int]int
	ReverseNode    []int
	DummyNodeStart int
	DummyNodeEnd   int
	FirstInOrder   int
	Cuts           []CycleCut
	Finalized      bool

	buildSeqs  [][]byte
	buildIDs   []int
	buildRev   []bool
	buildLabel map[int]int // bigraph id -> build index
	buildOut   []map[int]bool
}

func New() *Graph {
	return &Graph{
		NodeLookup: make(map[int]int),
		buildLabel: make(map[int]int),
	}
}

var rcTable = [256]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}

// ReverseComplement returns the reverse complement of an ACGT sequence.
func ReverseComplement(seq []byte) []byte {
	rc := make([]byte, len(seq))
	for i, c := range seq {
		b := rcTable[c]
		if b == 0 {
			log.Fatalf("[ReverseComplement] unsupported base %c\n", c)
		}
		rc[len(seq)-1-i] = b
	}
	return rc
}

// AddNode adds both strands of an external node. seq must be nonempty ACGT.
func (g *Graph) AddNode(id int, seq []byte) {
	if g.Finalized {
		log.Fatalf("[AddNode] graph already finalized\n")
	}
	if len(seq) == 0 {
		log.Fatalf("[AddNode] node %d has empty sequence\n", id)
	}
	if _, ok := g.buildLabel[id*2]; ok {
		log.Fatalf("[AddNode] duplicate node id %d\n", id)
	}
	up := make([]byte, len(seq))
	for i, c := range seq {
		switch c {
		case 'a', 'A':
			up[i] = 'A'
		case 'c', 'C':
			up[i] = 'C'
		case 'g', 'G':
			up[i] = 'G'
		case 't', 'T':
			up[i] = 'T'
		default:
			log.Fatalf("[AddNode] node %d has unsupported base %c\n", id, c)
		}
	}
	g.addBuildNode(id*2, id, false, up)
	g.addBuildNode(id*2+1, id, true, ReverseComplement(up))
}

func (g *Graph) addBuildNode(bigraphID, id int, rev bool, seq []byte) {
	g.buildLabel[bigraphID] = len(g.buildSeqs)
	g.buildSeqs = append(g.buildSeqs, seq)
	g.buildIDs = append(g.buildIDs, id)
	g.buildRev = append(g.buildRev, rev)
	g.buildOut = append(g.buildOut, make(map[int]bool))
}

// AddEdge connects the forward strands of two external nodes and mirrors the
// edge on the reverse strands.
func (g *Graph) AddEdge(fromID, toID int) {
	g.AddEdgeOriented(fromID, false, toID, false)
}

// AddEdgeOriented connects from the given strand of fromID to the given
// strand of toID, plus the reverse complement edge.
func (g *Graph) AddEdgeOriented(fromID int, fromRev bool, toID int, toRev bool) {
	if g.Finalized {
		log.Fatalf("[AddEdgeOriented] graph already finalized\n")
	}
	a := fromID * 2
	if fromRev {
		a++
	}
	b := toID * 2
	if toRev {
		b++
	}
	ai, ok := g.buildLabel[a]
	if !ok {
		log.Fatalf("[AddEdgeOriented] unknown node id %d\n", fromID)
	}
	bi, ok := g.buildLabel[b]
	if !ok {
		log.Fatalf("[AddEdgeOriented] unknown node id %d\n", toID)
	}
	g.buildOut[ai][bi] = true
	g.buildOut[g.buildLabel[b^1]][g.buildLabel[a^1]] = true
}

// Finalize adds the dummy start and end nodes, reorders nodes so feedback
// nodes come first and the rest are topological, builds the flat arrays and
// precomputes the cycle cuts.
func (g *Graph) Finalize() {
	if g.Finalized {
		log.Fatalf("[Finalize] graph already finalized\n")
	}
	n := len(g.buildSeqs)
	if n == 0 {
		log.Fatalf("[Finalize] empty graph\n")
	}
	inDeg := make([]int, n)
	outDeg := make([]int, n)
	for i, outs := range g.buildOut {
		outDeg[i] = len(outs)
		for t := range outs {
			inDeg[t]++
		}
	}
	// dummy start feeds every head node, every tail node feeds dummy end
	dummyStart := n
	dummyEnd := n + 1
	g.buildSeqs = append(g.buildSeqs, []byte{'-'}, []byte{'-'})
	g.buildIDs = append(g.buildIDs, 0, 0)
	g.buildRev = append(g.buildRev, false, false)
	g.buildOut = append(g.buildOut, make(map[int]bool), make(map[int]bool))
	for i := 0; i < n; i++ {
		if inDeg[i] == 0 {
			g.buildOut[dummyStart][i] = true
		}
		if outDeg[i] == 0 {
			g.buildOut[i][dummyEnd] = true
		}
	}
	n += 2

	sccs := tarjan(n, g.buildOut)
	cyclic := make([]bool, n)
	for _, comp := range sccs {
		if len(comp) > 1 {
			for _, v := range comp {
				cyclic[v] = true
			}
		}
	}
	for i, outs := range g.buildOut {
		if outs[i] {
			cyclic[i] = true
		}
	}

	// tarjan emits components in reverse topological order
	order := make([]int, 0, n)
	for i := len(sccs) - 1; i >= 0; i-- {
		for _, v := range sccs[i] {
			if cyclic[v] {
				order = append(order, v)
			}
		}
	}
	g.FirstInOrder = len(order)
	for i := len(sccs) - 1; i >= 0; i-- {
		for _, v := range sccs[i] {
			if !cyclic[v] {
				order = append(order, v)
			}
		}
	}

	newIndex := make([]int, n)
	for idx, old := range order {
		newIndex[old] = idx
	}

	g.NodeStart = make([]int, n)
	g.NodeEnd = make([]int, n)
	g.NodeIDs = make([]int, n)
	g.Reverse = make([]bool, n)
	g.InNeighbors = make([][]int, n)
	g.OutNeighbors = make([][]int, n)
	g.ReverseNode = make([]int, n)
	for idx, old := range order {
		g.NodeStart[idx] = len(g.NodeSequences)
		g.NodeSequences = append(g.NodeSequences, g.buildSeqs[old]...)
		g.NodeEnd[idx] = len(g.NodeSequences)
		g.NodeIDs[idx] = g.buildIDs[old]
		g.Reverse[idx] = g.buildRev[old]
		for t := range g.buildOut[old] {
			g.OutNeighbors[idx] = append(g.OutNeighbors[idx], newIndex[t])
			g.InNeighbors[newIndex[t]] = append(g.InNeighbors[newIndex[t]], idx)
		}
	}
	for i := 0; i < n; i++ {
		sort.Ints(g.InNeighbors[i])
		sort.Ints(g.OutNeighbors[i])
	}
	g.IndexToNode = make([]int, len(g.NodeSequences))
	for i := 0; i < n; i++ {
		for p := g.NodeStart[i]; p < g.NodeEnd[i]; p++ {
			g.IndexToNode[p] = i
		}
	}
	for bigraphID, old := range g.buildLabel {
		g.NodeLookup[bigraphID] = newIndex[old]
	}
	for bigraphID, old := range g.buildLabel {
		g.ReverseNode[newIndex[old]] = newIndex[g.buildLabel[bigraphID^1]]
	}
	g.DummyNodeStart = newIndex[dummyStart]
	g.DummyNodeEnd = newIndex[dummyEnd]
	g.ReverseNode[g.DummyNodeStart] = g.DummyNodeStart
	g.ReverseNode[g.DummyNodeEnd] = g.DummyNodeEnd

	g.buildCuts()

	g.buildSeqs = nil
	g.buildIDs = nil
	g.buildRev = nil
	g.buildLabel = nil
	g.buildOut = nil
	g.Finalized = true
}

// buildCuts unrolls the predecessors of every feedback node into a DAG of
// cut copies, deep enough (2*WordSize characters) that a column evaluated
// in reverse entry order reaches its fixed point for all 64 rows. Expansion
// stops at feedback nodes whose own cut is evaluated earlier in the column
// sweep; those become pinned PreviousCut entries. Entries left unexpanded
// by the depth budget have no predecessors, so the evaluation treats them
// as sources seeded from the previous column.
func (g *Graph) buildCuts() {
	g.Cuts = make([]CycleCut, g.FirstInOrder)
	for i := 0; i < g.FirstInOrder; i++ {
		var cut CycleCut
		var budgets []int
		cut.Nodes = append(cut.Nodes, i)
		cut.PreviousCut = append(cut.PreviousCut, false)
		cut.Predecessors = append(cut.Predecessors, nil)
		budgets = append(budgets, 2*WordSize)
		layer := []int{0}
		for len(layer) > 0 {
			nextEntry := make(map[int]int)
			var nextLayer []int
			for _, k := range layer {
				if cut.PreviousCut[k] || budgets[k] <= 0 {
					continue
				}
				for _, u := range g.InNeighbors[cut.Nodes[k]] {
					idx, ok := nextEntry[u]
					if !ok {
						idx = len(cut.Nodes)
						nextEntry[u] = idx
						cut.Nodes = append(cut.Nodes, u)
						cut.PreviousCut = append(cut.PreviousCut, u < i)
						cut.Predecessors = append(cut.Predecessors, nil)
						budgets = append(budgets, budgets[k]-(g.NodeEnd[u]-g.NodeStart[u]))
						nextLayer = append(nextLayer, idx)
					} else if b := budgets[k] - (g.NodeEnd[u] - g.NodeStart[u]); b > budgets[idx] {
						budgets[idx] = b
					}
					cut.Predecessors[k] = append(cut.Predecessors[k], idx)
				}
			}
			layer = nextLayer
		}
		g.Cuts[i] = cut
	}
}

// ProjectForward returns the character positions reachable from the given
// positions by exactly distance forward steps.
func (g *Graph) ProjectForward(positions map[int]bool, distance int) map[int]bool {
	cur := make(map[int]bool, len(positions))
	for p := range positions {
		cur[p] = true
	}
	for d := 0; d < distance && len(cur) > 0; d++ {
		next := make(map[int]bool, len(cur))
		for p := range cur {
			node := g.IndexToNode[p]
			if p+1 < g.NodeEnd[node] {
				next[p+1] = true
			} else {
				for _, nb := range g.OutNeighbors[node] {
					next[g.NodeStart[nb]] = true
				}
			}
		}
		cur = next
	}
	return cur
}

// GetReversePosition maps a character position to its reverse complement
// twin position.
func (g *Graph) GetReversePosition(pos int) int {
	node := g.IndexToNode[pos]
	twin := g.ReverseNode[node]
	offset := pos - g.NodeStart[node]
	return g.NodeStart[twin] + (g.NodeEnd[node] - g.NodeStart[node] - 1 - offset)
}

// SizeInBP returns the summed length of all real node sequences, one strand.
func (g *Graph) SizeInBP() int {
	total := 0
	for i := range g.NodeStart {
		if i == g.DummyNodeStart || i == g.DummyNodeEnd || g.Reverse[i] {
			continue
		}
		total += g.NodeEnd[i] - g.NodeStart[i]
	}
	return total
}

func tarjan(n int, out []map[int]bool) [][]int {
	const unvisited = -1
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}
	var stack []int
	var sccs [][]int
	counter := 0
	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		for w := range out[v] {
			if index[w] == unvisited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}
		if lowlink[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, comp)
		}
	}
	for v := 0; v < n; v++ {
		if index[v] == unvisited {
			strongconnect(v)
		}
	}
	return sccs
}
