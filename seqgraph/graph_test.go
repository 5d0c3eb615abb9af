package seqgraph

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildTestChain(n int) *Graph {
	g := New()
	for i := 1; i <= n; i++ {
		g.AddNode(i, []byte("ACGT"))
	}
	for i := 1; i < n; i++ {
		g.AddEdge(i, i+1)
	}
	g.Finalize()
	return g
}

func TestReverseComplement(t *testing.T) {
	got := ReverseComplement([]byte("ACCGT"))
	if !bytes.Equal(got, []byte("ACGGT")) {
		t.Errorf("got %s", got)
	}
}

func TestFinalizeChain(t *testing.T) {
	g := buildTestChain(3)
	if !g.Finalized {
		t.Fatalf("graph not finalized")
	}
	if g.FirstInOrder != 0 {
		t.Errorf("chain graph has %d feedback nodes", g.FirstInOrder)
	}
	if len(g.NodeStart) != 8 {
		t.Errorf("node count %d, want 8 (both strands plus dummies)", len(g.NodeStart))
	}
	// every edge between in order nodes runs from lower to higher index
	for i := range g.NodeStart {
		for _, to := range g.OutNeighbors[i] {
			if i >= g.FirstInOrder && to >= g.FirstInOrder && to <= i {
				t.Errorf("edge %d -> %d against the topological order", i, to)
			}
		}
	}
	// forward chain is connected through the node lookup
	for i := 1; i < 3; i++ {
		from := g.NodeLookup[i*2]
		to := g.NodeLookup[(i+1)*2]
		found := false
		for _, nb := range g.OutNeighbors[from] {
			if nb == to {
				found = true
			}
		}
		if !found {
			t.Errorf("edge %d -> %d missing", i, i+1)
		}
	}
	// dummy start feeds node 1, node 3 feeds dummy end
	headFound := false
	for _, nb := range g.OutNeighbors[g.DummyNodeStart] {
		if nb == g.NodeLookup[2] {
			headFound = true
		}
	}
	if !headFound {
		t.Errorf("dummy start not connected to the head node")
	}
	if seq := g.NodeSequences[g.NodeStart[g.DummyNodeStart]]; seq != '-' {
		t.Errorf("dummy start labelled %c", seq)
	}
}

func TestFinalizeCycleCuts(t *testing.T) {
	g := New()
	g.AddNode(1, []byte("ACGTACGT"))
	g.AddNode(2, []byte("TTGGCCAA"))
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	g.Finalize()
	if g.FirstInOrder != 4 {
		t.Fatalf("FirstInOrder %d, want 4 (two strands of a two node cycle)", g.FirstInOrder)
	}
	if len(g.Cuts) != g.FirstInOrder {
		t.Fatalf("%d cuts for %d feedback nodes", len(g.Cuts), g.FirstInOrder)
	}
	for i, cut := range g.Cuts {
		if cut.Nodes[0] != i {
			t.Errorf("cut %d starts with node %d", i, cut.Nodes[0])
		}
		if cut.PreviousCut[0] {
			t.Errorf("cut %d root marked previous", i)
		}
		for k, preds := range cut.Predecessors {
			for _, p := range preds {
				if p <= k {
					t.Errorf("cut %d entry %d has predecessor %d out of order", i, k, p)
				}
				if p >= len(cut.Nodes) {
					t.Errorf("cut %d entry %d predecessor %d out of range", i, k, p)
				}
			}
			if cut.PreviousCut[k] && len(preds) > 0 {
				t.Errorf("cut %d pinned entry %d has predecessors", i, k)
			}
		}
	}
	// the first cut cannot pin anything, it is evaluated first
	for k, prev := range g.Cuts[0].PreviousCut {
		if prev {
			t.Errorf("cut 0 entry %d pinned", k)
		}
	}
	// the unroll is deep enough to cover a full word of rows
	total := 0
	for _, n := range g.Cuts[0].Nodes {
		total += g.NodeEnd[n] - g.NodeStart[n]
	}
	if total < 2*WordSize {
		t.Errorf("cut 0 unrolls only %d characters", total)
	}
}

func TestProjectForward(t *testing.T) {
	g := buildTestChain(5)
	start := g.NodeStart[g.NodeLookup[1*2]]
	expected := g.NodeStart[g.NodeLookup[2*2]] + 2
	got := g.ProjectForward(map[int]bool{start: true}, 6)
	if len(got) != 1 || !got[expected] {
		t.Errorf("projection %v, want {%d}", got, expected)
	}
	// off the end of the graph the projection dies out at the dummy node
	got = g.ProjectForward(map[int]bool{start: true}, 64)
	if len(got) != 0 {
		t.Errorf("projection past the end: %v", got)
	}
}

func TestGetReversePosition(t *testing.T) {
	g := buildTestChain(4)
	for i := range g.NodeStart {
		if i == g.DummyNodeStart || i == g.DummyNodeEnd {
			continue
		}
		for p := g.NodeStart[i]; p < g.NodeEnd[i]; p++ {
			rp := g.GetReversePosition(p)
			if g.GetReversePosition(rp) != p {
				t.Fatalf("reverse position not an involution at %d", p)
			}
			if ReverseComplement([]byte{g.NodeSequences[p]})[0] != g.NodeSequences[rp] {
				t.Fatalf("reverse position %d not the complement of %d", rp, p)
			}
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := buildTestChain(6)
	prefix := filepath.Join(t.TempDir(), "chain")
	g.Save(prefix)
	loaded := Load(prefix)
	if !reflect.DeepEqual(g.NodeSequences, loaded.NodeSequences) {
		t.Errorf("node sequences differ after round trip")
	}
	if !reflect.DeepEqual(g.NodeStart, loaded.NodeStart) || !reflect.DeepEqual(g.NodeEnd, loaded.NodeEnd) {
		t.Errorf("node ranges differ after round trip")
	}
	for i := range g.OutNeighbors {
		if len(g.OutNeighbors[i]) != len(loaded.OutNeighbors[i]) {
			t.Fatalf("node %d out degree differs after round trip", i)
		}
		for j := range g.OutNeighbors[i] {
			if g.OutNeighbors[i][j] != loaded.OutNeighbors[i][j] {
				t.Errorf("node %d out neighbor %d differs", i, j)
			}
		}
	}
	if !reflect.DeepEqual(g.NodeLookup, loaded.NodeLookup) {
		t.Errorf("node lookup differs after round trip")
	}
	if loaded.FirstInOrder != g.FirstInOrder || loaded.DummyNodeStart != g.DummyNodeStart || loaded.DummyNodeEnd != g.DummyNodeEnd {
		t.Errorf("scalar fields differ after round trip")
	}
}

func TestReadGFA(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "tiny.gfa")
	gfa := "H\tVN:Z:1.0\nS\t1\tACGT\nS\t2\tTTTT\nS\t3\tGGGG\nL\t1\t+\t2\t+\t0M\nL\t1\t+\t3\t+\t0M\nL\t2\t+\t3\t-\t0M\n"
	if err := os.WriteFile(fn, []byte(gfa), 0644); err != nil {
		t.Fatal(err)
	}
	g := ReadGFA(fn)
	g.Finalize()
	if len(g.NodeStart) != 8 {
		t.Fatalf("node count %d", len(g.NodeStart))
	}
	from := g.NodeLookup[1*2]
	to := g.NodeLookup[2*2]
	found := false
	for _, nb := range g.OutNeighbors[from] {
		if nb == to {
			found = true
		}
	}
	if !found {
		t.Errorf("link 1+ -> 2+ missing")
	}
	// the 2+ -> 3- link targets the reverse strand
	to = g.NodeLookup[3*2+1]
	found = false
	for _, nb := range g.OutNeighbors[g.NodeLookup[2*2]] {
		if nb == to {
			found = true
		}
	}
	if !found {
		t.Errorf("link 2+ -> 3- missing")
	}
}

func TestGraphvizOutput(t *testing.T) {
	g := buildTestChain(3)
	fn := filepath.Join(t.TempDir(), "graph.dot")
	g.Graphviz(fn)
	content, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(content, []byte("digraph")) {
		t.Errorf("dot output missing digraph header")
	}
	if !bytes.Contains(content, []byte("ID:1")) {
		t.Errorf("dot output missing node label")
	}
}
