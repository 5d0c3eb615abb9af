package align

import (
	"log"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

const lastBitMask = uint64(1) << (wordbits.WordSize - 1)

// wordSlice holds 64 consecutive DP rows at one graph character as Myers
// style vertical delta bitvectors. Bit k of VP set means the score grows by
// one from row k to row k+1, VN means it shrinks by one. scoreBeforeStart is
// the score just above the slice, scoreEnd the score at the last row, and
// scoreEnd == scoreBeforeStart + popcount(VP) - popcount(VN) always holds.
type wordSlice struct {
	VP               uint64
	VN               uint64
	scoreEnd         int
	scoreBeforeStart int
}

// getSourceSliceWithoutBefore descends linearly from the trivial all-insert
// score at the given absolute row.
func getSourceSliceWithoutBefore(row int) wordSlice {
	return wordSlice{wordbits.AllOnes, wordbits.AllZeros, row + wordbits.WordSize, row}
}

func getSourceSliceFromScore(previousScore int) wordSlice {
	return wordSlice{wordbits.AllOnes, wordbits.AllZeros, previousScore + wordbits.WordSize, previousScore}
}

// getNextSlice advances one graph character to the right.
// http://www.gersteinlab.org/courses/452/09-spring/pdf/Myers.pdf pages 405
// and 408, extended with the scoreBeforeStart update for graph topology.
// previous is the upper-left neighbour cell, only read when
// previousInsideBand.
func getNextSlice(Eq uint64, slice wordSlice, previousInsideBand bool, previousEq bool, previous wordSlice) wordSlice {
	oldValue := slice.scoreBeforeStart
	if !previousInsideBand {
		slice.scoreBeforeStart++
	} else {
		diagonal := previous.scoreEnd
		if previous.VP&lastBitMask != 0 {
			diagonal--
		}
		if previous.VN&lastBitMask != 0 {
			diagonal++
		}
		if !previousEq {
			diagonal++
		}
		if slice.scoreBeforeStart+1 < diagonal {
			slice.scoreBeforeStart++
		} else {
			slice.scoreBeforeStart = diagonal
		}
	}
	hin := slice.scoreBeforeStart - oldValue

	Xv := Eq | slice.VN
	if hin < 0 {
		Eq |= 1
	}
	Xh := (((Eq & slice.VP) + slice.VP) ^ slice.VP) | Eq
	Ph := slice.VN | ^(Xh | slice.VP)
	Mh := slice.VP & Xh
	if Ph&lastBitMask != 0 {
		slice.scoreEnd++
	} else if Mh&lastBitMask != 0 {
		slice.scoreEnd--
	}
	Ph <<= 1
	Mh <<= 1
	if hin < 0 {
		Mh |= 1
	} else if hin > 0 {
		Ph |= 1
	}
	slice.VP = Mh | ^(Xv | Ph)
	slice.VN = Ph & Xv

	if debugChecks {
		wcvp := wordbits.PopCount(slice.VP)
		wcvn := wordbits.PopCount(slice.VN)
		if slice.scoreEnd != slice.scoreBeforeStart+wcvp-wcvn {
			log.Fatalf("[getNextSlice] scoreEnd %d != scoreBeforeStart %d + %d - %d\n", slice.scoreEnd, slice.scoreBeforeStart, wcvp, wcvn)
		}
	}

	return slice
}

// debugChecks turns on the expensive per-slice invariant checks and the
// scalar cross-validation of the bit-parallel merge.
const debugChecks = false

func assertSliceCorrectness(current, up wordSlice, previousBand bool) {
	if !debugChecks {
		return
	}
	wcvp := wordbits.PopCount(current.VP)
	wcvn := wordbits.PopCount(current.VN)
	if current.scoreEnd != current.scoreBeforeStart+wcvp-wcvn {
		log.Fatalf("[assertSliceCorrectness] scoreEnd %d != scoreBeforeStart %d + %d - %d\n", current.scoreEnd, current.scoreBeforeStart, wcvp, wcvn)
	}
	if current.scoreBeforeStart < 0 || current.scoreEnd < 0 {
		log.Fatalf("[assertSliceCorrectness] negative score %d %d\n", current.scoreBeforeStart, current.scoreEnd)
	}
	if current.scoreBeforeStart > current.scoreEnd+wordbits.WordSize || current.scoreEnd > current.scoreBeforeStart+wordbits.WordSize {
		log.Fatalf("[assertSliceCorrectness] boundary scores %d %d differ by more than %d\n", current.scoreBeforeStart, current.scoreEnd, wordbits.WordSize)
	}
	if current.VP&current.VN != 0 {
		log.Fatalf("[assertSliceCorrectness] VP and VN overlap\n")
	}
	if previousBand && current.scoreBeforeStart > up.scoreEnd {
		log.Fatalf("[assertSliceCorrectness] scoreBeforeStart %d above upper scoreEnd %d\n", current.scoreBeforeStart, up.scoreEnd)
	}
}
