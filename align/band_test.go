package align

import "testing"

func TestProjectForwardAndExpandBand(t *testing.T) {
	g := buildChain(20, []byte("ACGT"))
	a := New(g)
	band := make([]bool, len(g.NodeStart))
	orders := newBandOrders()
	// previous minimum at the start of node 2, the projection lands 64
	// characters ahead at the start of node 18
	pos := g.NodeStart[g.NodeLookup[2*2]]
	a.projectForwardAndExpandBand(band, pos, 8, orders)
	for _, id := range []int{1, 2, 3, 17, 18, 19, 20} {
		if !band[g.NodeLookup[id*2]] {
			t.Errorf("node %d missing from the band", id)
		}
	}
	for _, id := range []int{8, 9, 10, 11, 12} {
		if band[g.NodeLookup[id*2]] {
			t.Errorf("node %d should be outside the band", id)
		}
	}
	if len(orders.outOfOrder) != 0 {
		t.Errorf("chain band has out of order nodes")
	}
	for node := range orders.inOrder {
		if !band[node] {
			t.Errorf("order set node %d not in band", node)
		}
	}
}

func TestGetExtendedNodeBand(t *testing.T) {
	g := buildChain(20, []byte("ACGT"))
	a := New(g)
	root := g.NodeLookup[5*2]
	band := a.getExtendedNodeBand(root, 10)
	if len(band) != 1 {
		t.Fatalf("seed band has %d slices", len(band))
	}
	for _, id := range []int{5, 6, 7} {
		if !band[0][g.NodeLookup[id*2]] {
			t.Errorf("node %d missing from the seed band", id)
		}
	}
	for _, id := range []int{4, 8, 9} {
		if band[0][g.NodeLookup[id*2]] {
			t.Errorf("node %d should be outside the seed band", id)
		}
	}
}

func TestGetFullBand(t *testing.T) {
	g := buildChain(3, []byte("ACGT"))
	a := New(g)
	band := a.getFullBand(128)
	if len(band) != 2 {
		t.Fatalf("full band has %d slices, want 2", len(band))
	}
	for s := range band {
		for i, in := range band[s] {
			if !in {
				t.Errorf("slice %d node %d not in full band", s, i)
			}
		}
	}
}
