package align

import "log"

// nodeSlice sparsely stores the word slice vectors of the banded nodes of
// one 64 row column, keyed by node index.
type nodeSlice struct {
	m map[int][]wordSlice
}

func newNodeSlice() *nodeSlice {
	return &nodeSlice{m: make(map[int][]wordSlice)}
}

func (s *nodeSlice) addNode(i, size int) {
	if _, ok := s.m[i]; !ok {
		s.m[i] = make([]wordSlice, size)
	}
}

func (s *nodeSlice) node(i int) []wordSlice {
	slice, ok := s.m[i]
	if !ok {
		log.Fatalf("[nodeSlice.node] node %d not in slice\n", i)
	}
	return slice
}
