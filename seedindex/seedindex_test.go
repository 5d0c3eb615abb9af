package seedindex

import (
	"testing"

	"github.com/sdwfrost/GraphAligner/seqgraph"
)

func buildTestGraph() *seqgraph.Graph {
	g := seqgraph.New()
	g.AddNode(1, []byte("ACGTACGTTT"))
	g.AddNode(2, []byte("TTACCGGTAC"))
	g.AddNode(3, []byte("GGGTTTCCCA"))
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.Finalize()
	return g
}

func TestFindSeeds(t *testing.T) {
	g := buildTestGraph()
	idx := New(g, 8)
	// the read carries node 2 verbatim in the middle
	read := []byte("AAAATTACCGGTACAAAA")
	seeds := idx.FindSeeds(read, 0)
	if len(seeds) == 0 {
		t.Fatalf("no seeds found")
	}
	for i, seed := range seeds {
		if seed.NodeID != 2 {
			t.Errorf("seed %d on node %d, want 2", i, seed.NodeID)
		}
		if seed.ReadOffset <= 0 || seed.ReadOffset >= len(read)-1 {
			t.Errorf("seed %d offset %d outside the valid range", i, seed.ReadOffset)
		}
		if i > 0 && seeds[i-1].ReadOffset > seed.ReadOffset {
			t.Errorf("seeds not ordered by read offset")
		}
	}
	// offset 4 is where node 2 starts in the read
	if seeds[0].ReadOffset != 4 {
		t.Errorf("first seed at offset %d, want 4", seeds[0].ReadOffset)
	}
}

func TestFindSeedsMaxHits(t *testing.T) {
	g := buildTestGraph()
	idx := New(g, 8)
	read := []byte("AAAATTACCGGTACAAAA")
	seeds := idx.FindSeeds(read, 1)
	if len(seeds) != 1 {
		t.Errorf("got %d seeds with maxHits 1", len(seeds))
	}
}

func TestFindSeedsNoMatch(t *testing.T) {
	g := buildTestGraph()
	idx := New(g, 8)
	seeds := idx.FindSeeds([]byte("AAAAAAAAAAAAAAAA"), 0)
	if len(seeds) != 0 {
		t.Errorf("found %d seeds in an unrelated read", len(seeds))
	}
}
