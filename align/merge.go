package align

import (
	"log"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

// differenceMasks compares the DP columns implied by two slices starting
// scoreDifference apart, left lower by convention, and returns bitmaps of
// the rows where left is strictly smaller and where right is strictly
// smaller. O(log w): prefix sums are carried in eight byte lanes and the
// eight bits of each byte are drained one pass at a time.
func differenceMasks(leftVP, leftVN, rightVP, rightVN uint64, scoreDifference int) (uint64, uint64) {
	if scoreDifference < 0 {
		log.Fatalf("[differenceMasks] negative score difference %d\n", scoreDifference)
	}
	const signmask = wordbits.SignMask
	const lsbmask = wordbits.LSBMask
	const chunksize = wordbits.ChunkBits
	const allones = wordbits.AllOnes
	const allzeros = wordbits.AllZeros
	VPcommon := ^(leftVP & rightVP)
	VNcommon := ^(leftVN & rightVN)
	leftVP &= VPcommon
	leftVN &= VNcommon
	rightVP &= VPcommon
	rightVN &= VNcommon
	// left is lower everywhere
	if scoreDifference > wordbits.PopCount(rightVN)+wordbits.PopCount(leftVP) {
		return allones, allzeros
	}
	if scoreDifference == 128 && rightVN == allones && leftVP == allones {
		return allones ^ lastBitMask, allzeros
	}
	if scoreDifference == 0 && rightVN == allones && leftVP == allones {
		return allzeros, allones
	}
	byteVPVNSumLeft := wordbits.ByteVPVNSum(wordbits.BytePrefixSums(wordbits.ChunkPopCounts(leftVP), 0), wordbits.BytePrefixSums(wordbits.ChunkPopCounts(leftVN), 0))
	byteVPVNSumRight := wordbits.ByteVPVNSum(wordbits.BytePrefixSums(wordbits.ChunkPopCounts(rightVP), scoreDifference), wordbits.BytePrefixSums(wordbits.ChunkPopCounts(rightVN), 0))
	difference := byteVPVNSumLeft
	{
		// split the right-hand sums into two nonnegative vectors, one added
		// and one deducted, preserving the sign bits across the lanes.
		// smearmask is all ones in the lanes where the right-hand sum is
		// negative and so needs adding, except the sign positions which stay
		// zero
		smearmask := ((byteVPVNSumRight & signmask) >> (chunksize - 1)) * ((uint64(1) << (chunksize - 1)) - 1)
		deductions := ^smearmask & byteVPVNSumRight & ^signmask
		// byteVPVNSumRight is in two's complement so the magnitude of a
		// negative lane is the not-value + 1
		additions := (smearmask & ^byteVPVNSumRight) + (smearmask & lsbmask)
		signsBefore := difference & signmask
		// unset the sign bits so additions don't carry into other lanes
		difference &= ^signmask
		difference += additions
		// the sign bit flips when the value crossed from <0 to >=0
		difference ^= signsBefore
		signsBefore = difference & signmask
		// set the sign bits so deductions don't borrow from other lanes
		difference |= signmask
		difference -= deductions
		// sign bit 0 means the value crossed from >=0 to <0
		signsBefore ^= signmask & ^difference
		difference &= ^signmask
		difference |= signsBefore
	}
	// difference now holds the per-lane prefix sum difference (left-right)
	var resultLeftSmallerThanRight, resultRightSmallerThanLeft uint64
	for bit := 0; bit < chunksize; bit++ {
		signsBefore := difference & signmask
		difference &= ^signmask
		difference += leftVP & lsbmask
		difference += rightVN & lsbmask
		difference ^= signsBefore
		signsBefore = difference & signmask
		difference |= signmask
		difference -= leftVN & lsbmask
		difference -= rightVP & lsbmask
		signsBefore ^= signmask & ^difference
		difference &= ^signmask
		difference |= signsBefore
		leftVN >>= 1
		leftVP >>= 1
		rightVN >>= 1
		rightVP >>= 1
		// left < right where the lane is negative
		negative := difference & signmask
		resultLeftSmallerThanRight |= negative >> (chunksize - 1 - bit)
		// subtracting one clears the sign bit only in lanes that were zero
		notEqualToZero := ((difference | signmask) - lsbmask) & signmask
		resultRightSmallerThanLeft |= (notEqualToZero & ^negative) >> (chunksize - 1 - bit)
	}
	return resultLeftSmallerThanRight, resultRightSmallerThanLeft
}

// differenceMasksCellByCell is the scalar reference for differenceMasks.
func differenceMasksCellByCell(leftVP, leftVN, rightVP, rightVN uint64, scoreDifference int) (uint64, uint64) {
	leftscore := 0
	rightscore := scoreDifference
	var leftSmaller, rightSmaller uint64
	for i := 0; i < wordbits.WordSize; i++ {
		leftscore += int(leftVP & 1)
		leftscore -= int(leftVN & 1)
		rightscore += int(rightVP & 1)
		rightscore -= int(rightVN & 1)
		leftVP >>= 1
		leftVN >>= 1
		rightVP >>= 1
		rightVN >>= 1
		if leftscore < rightscore {
			leftSmaller |= uint64(1) << i
		}
		if rightscore < leftscore {
			rightSmaller |= uint64(1) << i
		}
	}
	return leftSmaller, rightSmaller
}

// mergeTwoSlices returns the rowwise minimum of two slices covering the same
// 64 rows. The bit pattern of the result does not depend on the argument
// order, so downstream ties stay broken by read row position alone.
func mergeTwoSlices(left, right wordSlice) wordSlice {
	if left.scoreBeforeStart > right.scoreBeforeStart {
		left, right = right, left
	}
	var correct wordSlice
	if debugChecks {
		correct = mergeTwoSlicesCellByCell(left, right)
	}
	var result wordSlice
	leftSmaller, rightSmaller := differenceMasks(left.VP, left.VN, right.VP, right.VN, right.scoreBeforeStart-left.scoreBeforeStart)
	mask := (rightSmaller | ((leftSmaller | rightSmaller) - (rightSmaller << 1))) & ^leftSmaller
	leftReduction := leftSmaller & (rightSmaller << 1)
	rightReduction := rightSmaller & (leftSmaller << 1)
	if rightSmaller&1 != 0 && left.scoreBeforeStart < right.scoreBeforeStart {
		rightReduction |= 1
	}
	left.VN &= ^leftReduction
	right.VN &= ^rightReduction
	result.VN = (left.VN & ^mask) | (right.VN & mask)
	result.VP = (left.VP & ^mask) | (right.VP & mask)
	result.scoreBeforeStart = left.scoreBeforeStart
	if right.scoreEnd < left.scoreEnd {
		result.scoreEnd = right.scoreEnd
	} else {
		result.scoreEnd = left.scoreEnd
	}
	if debugChecks {
		if result != correct {
			log.Fatalf("[mergeTwoSlices] bit parallel %+v != scalar %+v\n", result, correct)
		}
	}
	return result
}

// mergeTwoSlicesCellByCell is the scalar fallback merge used to cross
// validate the bit parallel one.
func mergeTwoSlicesCellByCell(left, right wordSlice) wordSlice {
	var merged wordSlice
	leftScore := left.scoreBeforeStart
	rightScore := right.scoreBeforeStart
	merged.scoreBeforeStart = leftScore
	if rightScore < leftScore {
		merged.scoreBeforeStart = rightScore
	}
	previousScore := merged.scoreBeforeStart
	for j := 0; j < wordbits.WordSize; j++ {
		mask := uint64(1) << j
		if left.VP&mask != 0 {
			leftScore++
		} else if left.VN&mask != 0 {
			leftScore--
		}
		if right.VN&mask != 0 {
			rightScore--
		} else if right.VP&mask != 0 {
			rightScore++
		}
		betterScore := leftScore
		if rightScore < betterScore {
			betterScore = rightScore
		}
		if betterScore == previousScore+1 {
			merged.VP |= mask
		} else if betterScore == previousScore-1 {
			merged.VN |= mask
		}
		previousScore = betterScore
	}
	merged.scoreEnd = previousScore
	return merged
}
