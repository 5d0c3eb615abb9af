package align

import "log"

// uncomputedScore marks a cut end value that has not been evaluated this
// column yet. Large enough to lose every merge, small enough that advancing
// a slice seeded with it cannot overflow.
const uncomputedScore = int(^uint(0)>>1) / 2

// getCycleCutReachability flags which entries of a cut are reachable from
// the cut root through the current band, and which of those have no in-cut
// predecessor in either band and therefore start from a source slice.
func (a *Aligner) getCycleCutReachability(cycleCut, index int, currentBand, previousBand []bool, reachable, source []bool) {
	if reachable[index] {
		return
	}
	reachable[index] = true
	cut := &a.graph.Cuts[cycleCut]
	if !currentBand[cut.Nodes[index]] {
		log.Fatalf("[getCycleCutReachability] cut %d entry %d outside the band\n", cycleCut, index)
	}
	if cut.PreviousCut[index] {
		return
	}
	source[index] = true
	for _, otherIndex := range cut.Predecessors[index] {
		if previousBand[cut.Nodes[otherIndex]] {
			source[index] = false
		}
		if currentBand[cut.Nodes[otherIndex]] {
			a.getCycleCutReachability(cycleCut, otherIndex, currentBand, previousBand, reachable, source)
			source[index] = false
		}
	}
}

// cutCycles establishes fixed point end values for every feedback node in
// the band before the main sweep of the column. Cuts within 2*w of each
// other can overwrite each other's slices, so the correct end values are
// stashed in a shared map and reinstalled at the end.
func (a *Aligner) cutCycles(j int, sequence []byte, BA, BT, BC, BG uint64, currentSlice, previousSlice *nodeSlice, currentBand, previousBand []bool, bandOrderOutOfOrder []int) {
	if a.graph.FirstInOrder == 0 {
		return
	}
	for node, slice := range currentSlice.m {
		if previousBand[node] {
			prev := previousSlice.node(node)
			slice[len(slice)-1] = getSourceSliceFromScore(prev[len(prev)-1].scoreEnd)
		} else {
			slice[len(slice)-1] = getSourceSliceWithoutBefore(j)
		}
	}
	correctEndValues := make(map[int]wordSlice)
	for _, order := range bandOrderOutOfOrder {
		correctEndValues[order] = wordSlice{0, 0, uncomputedScore, uncomputedScore}
	}
	for _, i := range bandOrderOutOfOrder {
		cut := &a.graph.Cuts[i]
		if len(cut.Nodes) == 0 || cut.Nodes[0] != i {
			log.Fatalf("[cutCycles] malformed cut for node %d\n", i)
		}
		reachable := make([]bool, len(cut.Nodes))
		source := make([]bool, len(cut.Nodes))
		a.getCycleCutReachability(i, 0, currentBand, previousBand, reachable, source)
		for index := len(cut.Nodes) - 1; index >= 0; index-- {
			if !reachable[index] {
				continue
			}
			if cut.PreviousCut[index] {
				// a cut not yet evaluated this column still holds the
				// seeded value, which is dominated in every merge
				stashed, ok := correctEndValues[cut.Nodes[index]]
				if !ok {
					log.Fatalf("[cutCycles] cut %d references unseeded node %d\n", i, cut.Nodes[index])
				}
				slice := currentSlice.node(cut.Nodes[index])
				slice[len(slice)-1] = stashed
			} else {
				a.calculateNode(cut.Nodes[index], j, sequence, BA, BT, BC, BG, currentSlice, previousSlice, currentBand, previousBand, source[index])
			}
		}
		cutRootSlice := currentSlice.node(i)
		correctEndValues[i] = cutRootSlice[len(cutRootSlice)-1]
		for index := 1; index < len(cut.Nodes); index++ {
			node := cut.Nodes[index]
			if !currentBand[node] {
				continue
			}
			slice := currentSlice.node(node)
			if previousBand[node] {
				prev := previousSlice.node(node)
				slice[len(slice)-1] = getSourceSliceFromScore(prev[len(prev)-1].scoreEnd)
			} else {
				slice[len(slice)-1] = getSourceSliceWithoutBefore(j)
			}
		}
		cutRootSlice[len(cutRootSlice)-1] = correctEndValues[i]
	}
	for _, i := range bandOrderOutOfOrder {
		slice := currentSlice.node(i)
		slice[len(slice)-1] = correctEndValues[i]
	}
}
