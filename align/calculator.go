package align

import (
	"log"
	"math"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

type nodeCalculationResult struct {
	minScore       int
	minScoreIndex  int
	cellsProcessed int
}

func (a *Aligner) getEq(BA, BT, BC, BG uint64, w int) uint64 {
	switch a.graph.NodeSequences[w] {
	case 'A':
		return BA
	case 'T':
		return BT
	case 'C':
		return BC
	case 'G':
		return BG
	case '-':
		// dummy nodes never match
		return 0
	default:
		log.Fatalf("[getEq] unsupported graph character %c at %d\n", a.graph.NodeSequences[w], w)
	}
	return 0
}

func (a *Aligner) isSource(nodeIndex int, currentBand, previousBand []bool) bool {
	for _, neighbor := range a.graph.InNeighbors[nodeIndex] {
		if currentBand[neighbor] {
			return false
		}
		if previousBand[neighbor] {
			return false
		}
	}
	return true
}

// getNodeStartSlice computes the first cell of a node by merging the last
// cells of every in-neighbour and advancing once. Neighbours only in the
// previous band contribute a source slice seeded from their previous score.
func (a *Aligner) getNodeStartSlice(Eq uint64, nodeIndex int, previousSlice, currentSlice *nodeSlice, currentBand, previousBand []bool, previousEq bool) wordSlice {
	var previous, previousUp wordSlice
	foundOne := false
	foundOneUp := false
	for _, neighbor := range a.graph.InNeighbors[nodeIndex] {
		if previousBand[neighbor] {
			if !foundOneUp {
				previousUp = previousSlice.node(neighbor)[len(previousSlice.node(neighbor))-1]
				foundOneUp = true
			} else {
				competitor := previousSlice.node(neighbor)[len(previousSlice.node(neighbor))-1]
				previousUp = mergeTwoSlices(previousUp, competitor)
			}
		}
		if previousBand[neighbor] && !currentBand[neighbor] {
			competitor := getSourceSliceFromScore(previousSlice.node(neighbor)[len(previousSlice.node(neighbor))-1].scoreEnd)
			if !foundOne {
				previous = competitor
				foundOne = true
			} else {
				previous = mergeTwoSlices(previous, competitor)
			}
		}
		if !currentBand[neighbor] {
			continue
		}
		competitor := currentSlice.node(neighbor)[len(currentSlice.node(neighbor))-1]
		if !foundOne {
			previous = competitor
			foundOne = true
		} else {
			previous = mergeTwoSlices(previous, competitor)
		}
	}
	if !foundOne {
		log.Fatalf("[getNodeStartSlice] node %d has no in-neighbour in either band\n", nodeIndex)
	}
	assertSliceCorrectness(previous, previousUp, foundOneUp)
	return getNextSlice(Eq, previous, foundOneUp, previousEq, previousUp)
}

// calculateNode fills the word slice vector of one node in one column and
// reports the minimum score seen inside the node. forceSource treats the
// node as having no in-cut predecessor during cycle cut evaluation.
func (a *Aligner) calculateNode(i, j int, sequence []byte, BA, BT, BC, BG uint64, currentSlice, previousSlice *nodeSlice, currentBand, previousBand []bool, forceSource bool) nodeCalculationResult {
	result := nodeCalculationResult{minScore: math.MaxInt, minScoreIndex: 0}
	slice := currentSlice.node(i)
	oldSlice := slice
	if previousBand[i] {
		oldSlice = previousSlice.node(i)
	}
	nodeStart := a.graph.NodeStart[i]

	if forceSource || a.isSource(i, currentBand, previousBand) {
		if previousBand[i] {
			slice[0] = getSourceSliceFromScore(previousSlice.node(i)[0].scoreEnd)
		} else {
			slice[0] = getSourceSliceWithoutBefore(j)
		}
		if slice[0].scoreEnd < result.minScore {
			result.minScore = slice[0].scoreEnd
			result.minScoreIndex = nodeStart
		}
		assertSliceCorrectness(slice[0], oldSlice[0], previousBand[i])
	} else {
		Eq := a.getEq(BA, BT, BC, BG, nodeStart)
		previousEq := j == 0 || a.graph.NodeSequences[nodeStart] == sequence[j-1]
		slice[0] = a.getNodeStartSlice(Eq, i, previousSlice, currentSlice, currentBand, previousBand, previousEq)
		if previousBand[i] && slice[0].scoreBeforeStart > oldSlice[0].scoreEnd {
			slice[0] = mergeTwoSlices(getSourceSliceFromScore(oldSlice[0].scoreEnd), slice[0])
		}
		if slice[0].scoreBeforeStart > j {
			slice[0] = mergeTwoSlices(getSourceSliceWithoutBefore(j), slice[0])
		}
		if slice[0].scoreEnd < result.minScore {
			result.minScore = slice[0].scoreEnd
			result.minScoreIndex = nodeStart
		}
		assertSliceCorrectness(slice[0], oldSlice[0], previousBand[i])
		// the start cell score can differ from the best in-neighbour end
		// score by more than one because of the band
	}

	for w := 1; w < a.graph.NodeEnd[i]-nodeStart; w++ {
		Eq := a.getEq(BA, BT, BC, BG, nodeStart+w)
		previousEq := j == 0 || a.graph.NodeSequences[nodeStart+w] == sequence[j-1]
		slice[w] = getNextSlice(Eq, slice[w-1], previousBand[i], previousEq, oldSlice[w-1])

		if previousBand[i] && slice[w].scoreBeforeStart > oldSlice[w].scoreEnd {
			slice[w] = mergeTwoSlices(getSourceSliceFromScore(oldSlice[w].scoreEnd), slice[w])
		}
		if slice[w].scoreBeforeStart > j {
			slice[w] = mergeTwoSlices(getSourceSliceWithoutBefore(j), slice[w])
		}
		assertSliceCorrectness(slice[w], oldSlice[w], previousBand[i])

		if slice[w].scoreEnd <= result.minScore {
			result.minScore = slice[w].scoreEnd
			result.minScoreIndex = nodeStart + w
		}
	}
	result.cellsProcessed = (a.graph.NodeEnd[i] - nodeStart) * wordbits.WordSize
	return result
}
