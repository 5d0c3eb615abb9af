package align

import (
	"fmt"
	"log"
	"os"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

// matrixPosition addresses one cell of the implicit DP matrix: a character
// position in the flattened graph and a read row.
type matrixPosition struct {
	graphChar int
	readRow   int
}

type expandoCell struct {
	position       matrixPosition
	backtraceIndex int
}

func visitedKey(p matrixPosition) uint64 {
	return uint64(p.graphChar)<<32 | uint64(uint32(p.readRow))
}

// backtrace reconstructs a minimum edit path ending at endPosition by an
// ordered breadth first search through the implicit edit graph. The
// returned trace runs from read row zero up to and including endPosition.
func (a *Aligner) backtrace(endPosition matrixPosition, sequence []byte, minScorePerWordSlice []int) (int, []matrixPosition) {
	if len(minScorePerWordSlice)*wordbits.WordSize <= len(sequence) {
		log.Fatalf("[backtrace] %d slice scores cannot cover a sequence of %d\n", len(minScorePerWordSlice), len(sequence))
	}
	scoreAtEnd := minScorePerWordSlice[len(minScorePerWordSlice)-1]
	currentDistance := 0
	var visitedExpandos []expandoCell
	var currentDistanceQueue, currentDistancePlusOneQueue []expandoCell
	currentDistanceQueue = append(currentDistanceQueue, expandoCell{endPosition, 0})
	visitedCells := make(map[uint64]bool)

	for {
		if len(currentDistanceQueue) == 0 {
			if len(currentDistancePlusOneQueue) == 0 {
				log.Fatalf("[backtrace] no expandable cells left at distance %d\n", currentDistance)
			}
			currentDistanceQueue, currentDistancePlusOneQueue = currentDistancePlusOneQueue, currentDistanceQueue
			currentDistance++
		}
		current := currentDistanceQueue[len(currentDistanceQueue)-1]
		currentDistanceQueue = currentDistanceQueue[:len(currentDistanceQueue)-1]
		w := current.position.graphChar
		j := current.position.readRow
		if j == 0 {
			visitedExpandos = append(visitedExpandos, current)
			break
		}
		sliceIndex := (j - 1) / wordbits.WordSize
		maxDistanceHere := scoreAtEnd - minScorePerWordSlice[sliceIndex]
		if currentDistance > maxDistanceHere {
			continue
		}
		if visitedCells[visitedKey(current.position)] {
			continue
		}
		visitedCells[visitedKey(current.position)] = true
		visitedExpandos = append(visitedExpandos, current)
		nodeIndex := a.graph.IndexToNode[w]
		backtraceIndexToCurrent := len(visitedExpandos) - 1
		currentDistancePlusOneQueue = append(currentDistancePlusOneQueue, expandoCell{matrixPosition{w, j - 1}, backtraceIndexToCurrent})
		diagonalEq := sequence[j-1] == 'N' || a.graph.NodeSequences[w] == sequence[j-1]
		if w == a.graph.NodeStart[nodeIndex] {
			for _, neighbor := range a.graph.InNeighbors[nodeIndex] {
				u := a.graph.NodeEnd[neighbor] - 1
				currentDistancePlusOneQueue = append(currentDistancePlusOneQueue, expandoCell{matrixPosition{u, j}, backtraceIndexToCurrent})
				if diagonalEq {
					currentDistanceQueue = append(currentDistanceQueue, expandoCell{matrixPosition{u, j - 1}, backtraceIndexToCurrent})
				} else {
					currentDistancePlusOneQueue = append(currentDistancePlusOneQueue, expandoCell{matrixPosition{u, j - 1}, backtraceIndexToCurrent})
				}
			}
		} else {
			u := w - 1
			currentDistancePlusOneQueue = append(currentDistancePlusOneQueue, expandoCell{matrixPosition{u, j}, backtraceIndexToCurrent})
			if diagonalEq {
				currentDistanceQueue = append(currentDistanceQueue, expandoCell{matrixPosition{u, j - 1}, backtraceIndexToCurrent})
			} else {
				currentDistancePlusOneQueue = append(currentDistancePlusOneQueue, expandoCell{matrixPosition{u, j - 1}, backtraceIndexToCurrent})
			}
		}
	}
	fmt.Fprintf(os.Stderr, "backtrace visited %d cells\n", len(visitedCells))
	index := len(visitedExpandos) - 1
	var result []matrixPosition
	for {
		result = append(result, visitedExpandos[index].position)
		if index == 0 {
			break
		}
		index = visitedExpandos[index].backtraceIndex
	}
	return currentDistance, result
}

// estimateCorrectnessAndBacktraceBiggestPart picks the longest run of
// likely correct slices and backtraces only that sub interval. An empty
// trace means no run of at least two slices was estimated correct.
func (a *Aligner) estimateCorrectnessAndBacktraceBiggestPart(sequence []byte, minScorePerWordSlice, minScoreIndexPerWordSlice []int) (int, []matrixPosition) {
	correctParts := estimateCorrectAlignmentViterbi(minScorePerWordSlice)
	start, end := getLargestContiguousBlock(correctParts)
	if end == start {
		return len(sequence), nil
	}
	endPos := matrixPosition{minScoreIndexPerWordSlice[end+1], (end - start + 1) * wordbits.WordSize}
	newseq := sequence[start*wordbits.WordSize : (end+1)*wordbits.WordSize]
	partials := minScorePerWordSlice[start : end+2]
	return a.backtrace(endPos, newseq, partials)
}
