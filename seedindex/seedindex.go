package seedindex

import (
	"log"
	"sort"

	"github.com/cespare/xxhash"

	"github.com/sdwfrost/GraphAligner/align"
	"github.com/sdwfrost/GraphAligner/seqgraph"
	"github.com/sdwfrost/GraphAligner/utils"
)

type seedPos struct {
	nodeID     int
	nodeOffset int
}

// Index is an exact match k-mer index over the forward strand node
// sequences of a finalized graph.
type Index struct {
	k     int
	graph *seqgraph.Graph
	hits  map[uint64][]seedPos
}

func New(graph *seqgraph.Graph, k int) *Index {
	if !graph.Finalized {
		log.Fatalf("[New] graph not finalized\n")
	}
	if k < 1 {
		log.Fatalf("[New] kmer size %d\n", k)
	}
	idx := &Index{k: k, graph: graph, hits: make(map[uint64][]seedPos)}
	for i := range graph.NodeStart {
		if i == graph.DummyNodeStart || i == graph.DummyNodeEnd || graph.Reverse[i] {
			continue
		}
		seq := graph.NodeSequences[graph.NodeStart[i]:graph.NodeEnd[i]]
		for off := 0; off+k <= len(seq); off++ {
			h := xxhash.Sum64(seq[off : off+k])
			idx.hits[h] = append(idx.hits[h], seedPos{graph.NodeIDs[i], off})
		}
	}
	return idx
}

// FindSeeds reports exact k-mer matches between the read and the indexed
// nodes as split points for the seeded aligner, ordered by read offset.
// Hash hits are verified against the node sequence before they count.
func (idx *Index) FindSeeds(read []byte, maxHits int) []align.Seed {
	var seeds []align.Seed
	for off := 1; off+idx.k <= len(read) && off < len(read)-1; off++ {
		kmer := read[off : off+idx.k]
		positions, ok := idx.hits[xxhash.Sum64(kmer)]
		if !ok {
			continue
		}
		for _, p := range positions {
			node := idx.graph.NodeLookup[p.nodeID*2]
			start := idx.graph.NodeStart[node] + p.nodeOffset
			if !utils.BytesEqual(kmer, idx.graph.NodeSequences[start:start+idx.k]) {
				continue
			}
			seeds = append(seeds, align.Seed{NodeID: p.nodeID, ReadOffset: off})
			break
		}
		if maxHits > 0 && len(seeds) >= maxHits {
			break
		}
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].ReadOffset < seeds[j].ReadOffset })
	return seeds
}
