package align

import (
	"fmt"
	"log"
	"os"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

// iupac complement, lowercase folded to uppercase
var complementTable = [256]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N',
	'a': 'T', 't': 'A', 'c': 'G', 'g': 'C', 'n': 'N',
	'R': 'Y', 'Y': 'R', 'K': 'M', 'M': 'K', 'S': 'S', 'W': 'W',
	'r': 'Y', 'y': 'R', 'k': 'M', 'm': 'K', 's': 'S', 'w': 'W',
	'B': 'V', 'V': 'B', 'D': 'H', 'H': 'D',
	'b': 'V', 'v': 'B', 'd': 'H', 'h': 'D',
}

func reverseComplement(read []byte) []byte {
	rc := make([]byte, len(read))
	for i, c := range read {
		b := complementTable[c]
		if b == 0 {
			log.Fatalf("[reverseComplement] unsupported read character %c\n", c)
		}
		rc[len(read)-1-i] = b
	}
	return rc
}

// twoDirectionalSplitAlignment holds the sweep records of the two half
// alignments running outward from a seed.
type twoDirectionalSplitAlignment struct {
	sequenceSplitIndex  int
	scoresForward       []int
	scoresBackward      []int
	minIndicesForward   []int
	minIndicesBackward  []int
	nodeSize            int
	startExtensionWidth int
}

func (s *twoDirectionalSplitAlignment) minScore() int {
	return s.scoresForward[len(s.scoresForward)-1] + s.scoresBackward[len(s.scoresBackward)-1]
}

// maxScore is only a loose pruning bound for competing seeds; the seed node
// and start extension widths are added as slack.
func (s *twoDirectionalSplitAlignment) maxScore() int {
	return s.minScore() + s.nodeSize + s.startExtensionWidth*2
}

// getSplitAlignment splits the read at the seed offset, reverse complements
// the prefix, and sweeps both halves against both strand bands of the seed
// node. The orientation with the smaller summed score wins.
func (a *Aligner) getSplitAlignment(sequence []byte, dynamicWidth, startExtensionWidth, matchBigraphNodeID, matchSequencePosition int, maxScore float64) twoDirectionalSplitAlignment {
	if matchSequencePosition <= 0 || matchSequencePosition >= len(sequence)-1 {
		log.Fatalf("[getSplitAlignment] seed offset %d outside the read\n", matchSequencePosition)
	}
	backwardPart := padSequence(reverseComplement(sequence[:matchSequencePosition]))
	forwardPart := padSequence(sequence[matchSequencePosition:])
	forwardNode, ok := a.graph.NodeLookup[matchBigraphNodeID*2]
	if !ok {
		log.Fatalf("[getSplitAlignment] unknown seed node %d\n", matchBigraphNodeID)
	}
	backwardNode, ok := a.graph.NodeLookup[matchBigraphNodeID*2+1]
	if !ok {
		log.Fatalf("[getSplitAlignment] unknown seed node %d\n", matchBigraphNodeID)
	}
	forwardBand := a.getExtendedNodeBand(forwardNode, startExtensionWidth)
	forwardSlice := a.getBitvectorSliceScoresAndFinalPosition(forwardPart, dynamicWidth, forwardBand, maxScore)
	backwardBand := a.getExtendedNodeBand(backwardNode, startExtensionWidth)
	backwardSlice := a.getBitvectorSliceScoresAndFinalPosition(backwardPart, dynamicWidth, backwardBand, maxScore)
	reverseForwardSlice := a.getBitvectorSliceScoresAndFinalPosition(forwardPart, dynamicWidth, backwardBand, maxScore)
	reverseBackwardSlice := a.getBitvectorSliceScoresAndFinalPosition(backwardPart, dynamicWidth, forwardBand, maxScore)
	firstscore := forwardSlice.finalMinScore() + backwardSlice.finalMinScore()
	secondscore := reverseForwardSlice.finalMinScore() + reverseBackwardSlice.finalMinScore()
	fmt.Fprintf(os.Stderr, "first direction score: %d\n", firstscore)
	fmt.Fprintf(os.Stderr, "other direction score: %d\n", secondscore)
	result := twoDirectionalSplitAlignment{
		sequenceSplitIndex:  matchSequencePosition,
		nodeSize:            a.graph.NodeEnd[forwardNode] - a.graph.NodeStart[forwardNode],
		startExtensionWidth: startExtensionWidth,
	}
	if firstscore < secondscore {
		result.scoresForward = forwardSlice.minScorePerWordSlice
		result.scoresBackward = backwardSlice.minScorePerWordSlice
		result.minIndicesForward = forwardSlice.minScoreIndexPerWordSlice
		result.minIndicesBackward = backwardSlice.minScoreIndexPerWordSlice
	} else {
		result.scoresForward = reverseForwardSlice.minScorePerWordSlice
		result.scoresBackward = reverseBackwardSlice.minScorePerWordSlice
		result.minIndicesForward = reverseForwardSlice.minScoreIndexPerWordSlice
		result.minIndicesBackward = reverseBackwardSlice.minScoreIndexPerWordSlice
	}
	return result
}

// getPiecewiseTracesFromSplit backtraces both halves of the chosen split
// and peels the padded tails off the traces.
func (a *Aligner) getPiecewiseTracesFromSplit(split twoDirectionalSplitAlignment, sequence []byte) (int, []matrixPosition, int, []matrixPosition) {
	startpartsize := split.sequenceSplitIndex
	endpartsize := len(sequence) - split.sequenceSplitIndex
	startpadding := (wordbits.WordSize - (startpartsize % wordbits.WordSize)) % wordbits.WordSize
	endpadding := (wordbits.WordSize - (endpartsize % wordbits.WordSize)) % wordbits.WordSize
	backtraceSequence := padSequence(sequence[split.sequenceSplitIndex:])
	backwardBacktraceSequence := padSequence(reverseComplement(sequence[:split.sequenceSplitIndex]))

	fwScore, fwTrace := a.estimateCorrectnessAndBacktraceBiggestPart(backtraceSequence, split.scoresForward, split.minIndicesForward)
	fmt.Fprintf(os.Stderr, "fw score: %d\n", fwScore)
	bwScore, bwTrace := a.estimateCorrectnessAndBacktraceBiggestPart(backwardBacktraceSequence, split.scoresBackward, split.minIndicesBackward)
	fmt.Fprintf(os.Stderr, "bw score: %d\n", bwScore)

	for len(fwTrace) > 0 && fwTrace[len(fwTrace)-1].readRow > len(backtraceSequence)-endpadding {
		fwTrace = fwTrace[:len(fwTrace)-1]
	}
	for len(bwTrace) > 0 && bwTrace[len(bwTrace)-1].readRow > len(backwardBacktraceSequence)-startpadding {
		bwTrace = bwTrace[:len(bwTrace)-1]
	}
	return fwScore, fwTrace, bwScore, bwTrace
}

// reverseTrace re-anchors a backward half trace in forward coordinates by
// reversing the row order and mapping every position through the reverse
// position map.
func (a *Aligner) reverseTrace(trace []matrixPosition) []matrixPosition {
	if len(trace) == 0 {
		return trace
	}
	reversed := make([]matrixPosition, len(trace))
	for i := range trace {
		reversed[i] = trace[len(trace)-1-i]
	}
	secondMax := reversed[0].readRow
	for i := range reversed {
		reversed[i].graphChar = a.graph.GetReversePosition(reversed[i].graphChar)
		reversed[i].readRow = secondMax - reversed[i].readRow
	}
	return reversed
}
