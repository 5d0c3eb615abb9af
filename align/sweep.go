package align

import (
	"log"
	"math"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

// matrixSlice is the per-column record of the sweep: element 0 is the
// starting zero, element s+1 the minimum score across the banded cells of
// rows [s*64, s*64+64) and the column position achieving it.
type matrixSlice struct {
	minScorePerWordSlice      []int
	minScoreIndexPerWordSlice []int
	cellsProcessed            int
}

func (m *matrixSlice) finalMinScore() int {
	return m.minScorePerWordSlice[len(m.minScorePerWordSlice)-1]
}

// buildEqualityMasks builds the per-base equality bitvectors for 64 read
// characters starting at j. IUPAC ambiguity codes set several masks and N
// sets all four.
func buildEqualityMasks(sequence []byte, j int) (BA, BT, BC, BG uint64) {
	for i := 0; i < wordbits.WordSize && j+i < len(sequence); i++ {
		mask := uint64(1) << i
		switch sequence[j+i] {
		case 'A', 'a':
			BA |= mask
		case 'T', 't':
			BT |= mask
		case 'C', 'c':
			BC |= mask
		case 'G', 'g':
			BG |= mask
		case 'N', 'n':
			BA |= mask
			BC |= mask
			BT |= mask
			BG |= mask
		case 'R', 'r':
			BA |= mask
			BG |= mask
		case 'Y', 'y':
			BC |= mask
			BT |= mask
		case 'K', 'k':
			BG |= mask
			BT |= mask
		case 'M', 'm':
			BA |= mask
			BC |= mask
		case 'S', 's':
			BC |= mask
			BG |= mask
		case 'W', 'w':
			BA |= mask
			BT |= mask
		case 'B', 'b':
			BC |= mask
			BG |= mask
			BT |= mask
		case 'D', 'd':
			BA |= mask
			BG |= mask
			BT |= mask
		case 'H', 'h':
			BA |= mask
			BC |= mask
			BT |= mask
		case 'V', 'v':
			BA |= mask
			BC |= mask
			BG |= mask
		default:
			log.Fatalf("[buildEqualityMasks] unsupported read character %c at %d\n", sequence[j+i], j+i)
		}
	}
	return BA, BT, BC, BG
}

// processColumnNode runs the calculator for one banded node and folds its
// minimum into the column minimum. When the node minimum sits on the last
// row of the final character and the next column could extend it one
// cheaper into an out-neighbour, the routing minimum is lowered by one; the
// minimum index deliberately stays where it was.
func (a *Aligner) processColumnNode(i, j int, sequence []byte, BA, BT, BC, BG uint64, currentSlice, previousSlice *nodeSlice, currentBand, previousBand []bool, currentMinimumScore, currentMinimumIndex *int, result *matrixSlice) {
	nodeCalc := a.calculateNode(i, j, sequence, BA, BT, BC, BG, currentSlice, previousSlice, currentBand, previousBand, false)
	if nodeCalc.minScore < *currentMinimumScore {
		*currentMinimumScore = nodeCalc.minScore
		*currentMinimumIndex = nodeCalc.minScoreIndex
	}
	if nodeCalc.minScore <= *currentMinimumScore {
		if nodeCalc.minScoreIndex == a.graph.NodeEnd[i]-1 {
			slice := currentSlice.node(i)
			if slice[len(slice)-1].VP&lastBitMask != 0 {
				for _, neighbor := range a.graph.OutNeighbors[i] {
					if sequence[j+wordbits.WordSize-1] == a.graph.NodeSequences[a.graph.NodeStart[neighbor]] {
						*currentMinimumScore = nodeCalc.minScore - 1
					}
				}
			}
		}
	}
	result.cellsProcessed += nodeCalc.cellsProcessed
}

// getBitvectorSliceScoresAndFinalPosition sweeps the padded read through
// the banded DP, 64 rows per column, and records the per-column minima.
// startBand supplies explicit bands for the first columns; after that the
// band is projected forward from the previous minimum. The sweep stops
// early once the column minimum exceeds maxScore, padding the record with
// sentinel entries.
func (a *Aligner) getBitvectorSliceScoresAndFinalPosition(sequence []byte, dynamicWidth int, startBand [][]bool, maxScore float64) matrixSlice {
	result := matrixSlice{}
	result.minScorePerWordSlice = append(result.minScorePerWordSlice, 0)
	result.minScoreIndexPerWordSlice = append(result.minScoreIndexPerWordSlice, 0)

	previousSlice := newNodeSlice()
	n := len(a.graph.NodeStart)
	previousMinimumIndex := -1
	currentBand := make([]bool, n)
	previousBand := make([]bool, n)
	if len(startBand) == 0 {
		log.Fatalf("[getBitvectorSliceScoresAndFinalPosition] empty start band\n")
	}

	var previousBandOrder, previousBandOrderOutOfOrder []int

	for j := 0; j < len(sequence); j += wordbits.WordSize {
		currentSlice := newNodeSlice()
		currentMinimumScore := math.MaxInt
		currentMinimumIndex := -1
		BA, BT, BC, BG := buildEqualityMasks(sequence, j)

		slice := j / wordbits.WordSize
		orders := newBandOrders()
		if slice < len(startBand) {
			if slice > 0 {
				previousBand = currentBand
			}
			currentBand = make([]bool, n)
			copy(currentBand, startBand[slice])
			a.getBandOrder(currentBand, orders)
			if slice == 0 {
				previousBand = make([]bool, n)
				copy(previousBand, currentBand)
				previousBandOrder = sortedNodes(orders.inOrder)
				previousBandOrderOutOfOrder = sortedNodes(orders.outOfOrder)
				for _, node := range previousBandOrder {
					previousSlice.addNode(node, a.graph.NodeEnd[node]-a.graph.NodeStart[node])
				}
				for _, node := range previousBandOrderOutOfOrder {
					previousSlice.addNode(node, a.graph.NodeEnd[node]-a.graph.NodeStart[node])
				}
			}
		} else {
			currentBand, previousBand = previousBand, currentBand
			if previousMinimumIndex < 0 {
				log.Fatalf("[getBitvectorSliceScoresAndFinalPosition] no previous minimum to project from\n")
			}
			a.projectForwardAndExpandBand(currentBand, previousMinimumIndex, dynamicWidth, orders)
		}
		bandOrder := sortedNodes(orders.inOrder)
		bandOrderOutOfOrder := sortedNodes(orders.outOfOrder)
		if len(bandOrder) == 0 && len(bandOrderOutOfOrder) == 0 {
			log.Fatalf("[getBitvectorSliceScoresAndFinalPosition] empty band at row %d\n", j)
		}
		for _, i := range bandOrder {
			currentSlice.addNode(i, a.graph.NodeEnd[i]-a.graph.NodeStart[i])
		}
		for _, i := range bandOrderOutOfOrder {
			currentSlice.addNode(i, a.graph.NodeEnd[i]-a.graph.NodeStart[i])
		}
		a.cutCycles(j, sequence, BA, BT, BC, BG, currentSlice, previousSlice, currentBand, previousBand, bandOrderOutOfOrder)
		for _, i := range bandOrder {
			a.processColumnNode(i, j, sequence, BA, BT, BC, BG, currentSlice, previousSlice, currentBand, previousBand, &currentMinimumScore, &currentMinimumIndex, &result)
		}
		for _, i := range bandOrderOutOfOrder {
			a.processColumnNode(i, j, sequence, BA, BT, BC, BG, currentSlice, previousSlice, currentBand, previousBand, &currentMinimumScore, &currentMinimumIndex, &result)
		}
		for _, node := range previousBandOrder {
			previousBand[node] = false
		}
		for _, node := range previousBandOrderOutOfOrder {
			previousBand[node] = false
		}
		if currentMinimumIndex < 0 {
			log.Fatalf("[getBitvectorSliceScoresAndFinalPosition] no minimum found at row %d\n", j)
		}
		previousSlice = currentSlice
		previousMinimumIndex = currentMinimumIndex
		result.minScorePerWordSlice = append(result.minScorePerWordSlice, currentMinimumScore)
		result.minScoreIndexPerWordSlice = append(result.minScoreIndexPerWordSlice, currentMinimumIndex)
		previousBandOrder = bandOrder
		previousBandOrderOutOfOrder = bandOrderOutOfOrder
		if float64(currentMinimumScore) > maxScore {
			for i := j + wordbits.WordSize; i < len(sequence); i += wordbits.WordSize {
				result.minScorePerWordSlice = append(result.minScorePerWordSlice, len(sequence))
				result.minScoreIndexPerWordSlice = append(result.minScoreIndexPerWordSlice, 0)
			}
			break
		}
	}
	return result
}
