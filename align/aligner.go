package align

import (
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/sdwfrost/GraphAligner/seqgraph"
	"github.com/sdwfrost/GraphAligner/wordbits"
)

// Aligner runs banded bit-parallel alignments of reads against one
// finalized graph. The graph is shared read only; every alignment owns its
// slices, bands and visited cells, so one Aligner can be used from several
// goroutines at once.
type Aligner struct {
	graph *seqgraph.Graph
}

func New(graph *seqgraph.Graph) *Aligner {
	if !graph.Finalized {
		log.Fatalf("[New] graph not finalized\n")
	}
	return &Aligner{graph: graph}
}

// padSequence appends N up to a multiple of the slice width.
func padSequence(sequence []byte) []byte {
	padding := (wordbits.WordSize - (len(sequence) % wordbits.WordSize)) % wordbits.WordSize
	padded := make([]byte, len(sequence), len(sequence)+padding)
	copy(padded, sequence)
	for i := 0; i < padding; i++ {
		padded = append(padded, 'N')
	}
	return padded
}

// AlignOneWay aligns a read starting from the full band for the first
// dynamicRowStart rows, then banding dynamically with radius dynamicWidth.
func (a *Aligner) AlignOneWay(readID string, read []byte, dynamicWidth, dynamicRowStart int) Alignment {
	timeStart := time.Now()
	if dynamicRowStart < wordbits.WordSize {
		log.Fatalf("[AlignOneWay] dynamicRowStart %d below slice width\n", dynamicRowStart)
	}
	band := a.getFullBand(dynamicRowStart)
	score, trace, cellsProcessed := a.getBacktrace(read, dynamicWidth, band)
	if score == math.MaxInt {
		return a.emptyAlignment(readID, time.Since(timeStart).Milliseconds(), cellsProcessed)
	}
	result := a.traceToAlignment(readID, read, score, trace, cellsProcessed)
	result.ElapsedMs = time.Since(timeStart).Milliseconds()
	return result
}

// AlignOneWaySeeded aligns a read by splitting it at each seed, extending
// both halves outward from the seed node and keeping the best orientation
// over all seeds.
func (a *Aligner) AlignOneWaySeeded(readID string, read []byte, dynamicWidth, dynamicRowStart int, seeds []Seed, startBandwidth int) Alignment {
	timeStart := time.Now()
	if len(seeds) == 0 {
		log.Fatalf("[AlignOneWaySeeded] no seeds\n")
	}
	var bestAlignment twoDirectionalSplitAlignment
	hasAlignment := false
	for i, seed := range seeds {
		fmt.Fprintf(os.Stderr, "seed %d/%d %d,%d\n", i, len(seeds), seed.NodeID, seed.ReadOffset)
		maxScore := float64(len(read)) * 0.4
		if hasAlignment {
			maxScore = float64(bestAlignment.maxScore())
		}
		result := a.getSplitAlignment(read, dynamicWidth, startBandwidth, seed.NodeID, seed.ReadOffset, maxScore)
		if float64(result.minScore()) > float64(len(read))*0.4 {
			continue
		}
		if !hasAlignment || result.minScore() < bestAlignment.minScore() {
			bestAlignment = result
			hasAlignment = true
		}
	}
	if !hasAlignment {
		return a.emptyAlignment(readID, time.Since(timeStart).Milliseconds(), 0)
	}
	fwScore, fwTrace, bwScore, bwTrace := a.getPiecewiseTracesFromSplit(bestAlignment, read)
	fwResult := a.traceToAlignment(readID, read, fwScore, fwTrace, 0)
	bwResult := a.traceToAlignment(readID, read, bwScore, a.reverseTrace(bwTrace), 0)
	if fwResult.Failed && bwResult.Failed {
		return a.emptyAlignment(readID, time.Since(timeStart).Milliseconds(), 0)
	}
	result := a.mergeAlignments(bwResult, fwResult)
	result.ElapsedMs = time.Since(timeStart).Milliseconds()
	return result
}

// getBacktrace pads the read, runs the sweep and backtraces the longest
// likely correct part. A score of the int maximum reports failure.
func (a *Aligner) getBacktrace(read []byte, dynamicWidth int, startBand [][]bool) (int, []matrixPosition, int) {
	sequence := padSequence(read)
	padding := len(sequence) - len(read)
	maxScore := float64(len(sequence)) * 0.4
	slice := a.getBitvectorSliceScoresAndFinalPosition(sequence, dynamicWidth, startBand, maxScore)
	fmt.Fprintf(os.Stderr, "score: %d\n", slice.finalMinScore())
	if float64(slice.finalMinScore()) > maxScore {
		return math.MaxInt, nil, slice.cellsProcessed
	}
	_, trace := a.estimateCorrectnessAndBacktraceBiggestPart(sequence, slice.minScorePerWordSlice, slice.minScoreIndexPerWordSlice)
	if len(trace) == 0 {
		return math.MaxInt, nil, slice.cellsProcessed
	}
	for len(trace) > 0 && trace[len(trace)-1].readRow > len(sequence)-padding {
		trace = trace[:len(trace)-1]
	}
	return slice.finalMinScore(), trace, slice.cellsProcessed
}

func (a *Aligner) emptyAlignment(readID string, elapsedMs int64, cellsProcessed int) Alignment {
	return Alignment{
		ReadID:         readID,
		Score:          math.MaxInt,
		Failed:         true,
		CellsProcessed: cellsProcessed,
		ElapsedMs:      elapsedMs,
	}
}

// traceToAlignment groups a trace of matrix positions into per-node
// mappings with one edit per node visit.
func (a *Aligner) traceToAlignment(readID string, sequence []byte, score int, trace []matrixPosition, cellsProcessed int) Alignment {
	result := Alignment{ReadID: readID, Score: score, CellsProcessed: cellsProcessed}
	if len(trace) == 0 {
		result.Failed = true
		return result
	}
	pos := 0
	oldNode := a.graph.IndexToNode[trace[0].graphChar]
	for oldNode == a.graph.DummyNodeStart {
		pos++
		if pos == len(trace) {
			return a.emptyAlignment(readID, 0, cellsProcessed)
		}
		oldNode = a.graph.IndexToNode[trace[pos].graphChar]
	}
	if oldNode == a.graph.DummyNodeEnd {
		return a.emptyAlignment(readID, 0, cellsProcessed)
	}
	rank := 0
	mapping := Mapping{
		NodeID:    a.graph.NodeIDs[oldNode],
		IsReverse: a.graph.Reverse[oldNode],
		Offset:    trace[pos].graphChar - a.graph.NodeStart[oldNode],
		Rank:      rank,
	}
	btNodeStart := trace[pos]
	btNodeEnd := trace[pos]
	for ; pos < len(trace); pos++ {
		if a.graph.IndexToNode[trace[pos].graphChar] == a.graph.DummyNodeEnd {
			break
		}
		if a.graph.IndexToNode[trace[pos].graphChar] == oldNode {
			btNodeEnd = trace[pos]
			continue
		}
		mapping.Edits = append(mapping.Edits, a.makeEdit(sequence, btNodeStart, btNodeEnd))
		result.Path = append(result.Path, mapping)
		oldNode = a.graph.IndexToNode[trace[pos].graphChar]
		btNodeStart = trace[pos]
		btNodeEnd = trace[pos]
		rank++
		mapping = Mapping{
			NodeID:    a.graph.NodeIDs[oldNode],
			IsReverse: a.graph.Reverse[oldNode],
			Rank:      rank,
		}
	}
	mapping.Edits = append(mapping.Edits, a.makeEdit(sequence, btNodeStart, btNodeEnd))
	result.Path = append(result.Path, mapping)
	return result
}

func (a *Aligner) makeEdit(sequence []byte, btNodeStart, btNodeEnd matrixPosition) Edit {
	hi := btNodeEnd.readRow + 1
	if hi > len(sequence) {
		hi = len(sequence)
	}
	return Edit{
		FromLen:  btNodeEnd.graphChar - btNodeStart.graphChar + 1,
		ToLen:    btNodeEnd.readRow - btNodeStart.readRow + 1,
		Sequence: string(sequence[btNodeStart.readRow:hi]),
	}
}

func posEqual(m1, m2 Mapping) bool {
	return m1.NodeID == m2.NodeID && m1.IsReverse == m2.IsReverse
}

// mergeAlignments stitches the two half alignments of a split at their
// junction, dropping the duplicated junction mapping when both halves end
// on the same node position.
func (a *Aligner) mergeAlignments(first, second Alignment) Alignment {
	if first.Failed {
		return second
	}
	if second.Failed {
		return first
	}
	finalResult := first
	finalResult.Score = first.Score + second.Score
	finalResult.CellsProcessed = first.CellsProcessed + second.CellsProcessed
	finalResult.ElapsedMs = first.ElapsedMs + second.ElapsedMs
	finalResult.Path = append([]Mapping{}, first.Path...)
	firstEndPos := first.Path[len(first.Path)-1]
	secondStartPos := second.Path[0]
	start := 0
	if posEqual(firstEndPos, secondStartPos) {
		start = 1
	} else if !a.isOutNeighbor(firstEndPos, secondStartPos) {
		fmt.Fprintf(os.Stderr, "piecewise alignments can't be merged! first end: %d %s second start: %d %s\n",
			firstEndPos.NodeID, strandString(firstEndPos.IsReverse), secondStartPos.NodeID, strandString(secondStartPos.IsReverse))
	}
	finalResult.Path = append(finalResult.Path, second.Path[start:]...)
	return finalResult
}

func strandString(reverse bool) string {
	if reverse {
		return "-"
	}
	return "+"
}

func (a *Aligner) isOutNeighbor(from, to Mapping) bool {
	fromKey := from.NodeID * 2
	if from.IsReverse {
		fromKey++
	}
	toKey := to.NodeID * 2
	if to.IsReverse {
		toKey++
	}
	fromIndex, ok := a.graph.NodeLookup[fromKey]
	if !ok {
		return false
	}
	toIndex, ok := a.graph.NodeLookup[toKey]
	if !ok {
		return false
	}
	for _, neighbor := range a.graph.OutNeighbors[fromIndex] {
		if neighbor == toIndex {
			return true
		}
	}
	return false
}
