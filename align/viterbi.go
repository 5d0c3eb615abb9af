package align

import (
	"log"
	"math/big"

	"github.com/sdwfrost/GraphAligner/wordbits"
)

func powr(base *big.Rat, exponent int) *big.Rat {
	if exponent == 0 {
		return big.NewRat(1, 1)
	}
	if exponent == 1 {
		return new(big.Rat).Set(base)
	}
	part := powr(base, exponent/2)
	part.Mul(part, part)
	if exponent%2 == 1 {
		part.Mul(part, base)
	}
	return part
}

func oneMinus(p *big.Rat) *big.Rat {
	return new(big.Rat).Sub(big.NewRat(1, 1), p)
}

func maxRat(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// estimateCorrectAlignmentViterbi labels each 64 row slice as likely
// correct or likely false with a two state HMM over the per slice score
// increments. Probabilities are exact rationals so that repeated
// multiplication of tiny emissions cannot underflow.
func estimateCorrectAlignmentViterbi(scores []int) []bool {
	correctMismatchProbability := big.NewRat(15, 100) // 15% from pacbio error rate
	falseMismatchProbability := big.NewRat(50, 100)   // 50% empirically
	falseToCorrectTransitionProbability := big.NewRat(1, 100)
	correctToFalseTransitionProbability := big.NewRat(1, 100)
	correctProbability := big.NewRat(30, 100)
	falseProbability := big.NewRat(70, 100)
	var falseFromCorrectBacktrace []bool
	var correctFromCorrectBacktrace []bool
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[i-1] {
			log.Fatalf("[estimateCorrectAlignmentViterbi] decreasing slice scores %d -> %d\n", scores[i-1], scores[i])
		}
		scorediff := scores[i] - scores[i-1]
		stayCorrect := new(big.Rat).Mul(correctProbability, oneMinus(correctToFalseTransitionProbability))
		flipToCorrect := new(big.Rat).Mul(falseProbability, falseToCorrectTransitionProbability)
		flipToFalse := new(big.Rat).Mul(correctProbability, correctToFalseTransitionProbability)
		stayFalse := new(big.Rat).Mul(falseProbability, oneMinus(falseToCorrectTransitionProbability))
		correctFromCorrectBacktrace = append(correctFromCorrectBacktrace, stayCorrect.Cmp(flipToCorrect) >= 0)
		falseFromCorrectBacktrace = append(falseFromCorrectBacktrace, flipToFalse.Cmp(stayFalse) >= 0)
		newCorrectProbability := maxRat(stayCorrect, flipToCorrect)
		newFalseProbability := maxRat(flipToFalse, stayFalse)
		chooseresult := new(big.Rat).SetInt(new(big.Int).Binomial(wordbits.WordSize, int64(scorediff)))
		correctMultiplier := new(big.Rat).Mul(chooseresult, powr(correctMismatchProbability, scorediff))
		correctMultiplier.Mul(correctMultiplier, powr(oneMinus(correctMismatchProbability), wordbits.WordSize-scorediff))
		falseMultiplier := new(big.Rat).Mul(chooseresult, powr(falseMismatchProbability, scorediff))
		falseMultiplier.Mul(falseMultiplier, powr(oneMinus(falseMismatchProbability), wordbits.WordSize-scorediff))
		correctProbability = new(big.Rat).Mul(newCorrectProbability, correctMultiplier)
		falseProbability = new(big.Rat).Mul(newFalseProbability, falseMultiplier)
		normalizer := new(big.Rat).Add(correctProbability, falseProbability)
		correctProbability.Quo(correctProbability, normalizer)
		falseProbability.Quo(falseProbability, normalizer)
	}
	currentCorrect := correctProbability.Cmp(falseProbability) > 0
	result := make([]bool, len(scores)-1)
	for i := len(scores) - 2; i >= 0; i-- {
		result[i] = currentCorrect
		if currentCorrect {
			currentCorrect = correctFromCorrectBacktrace[i]
		} else {
			currentCorrect = falseFromCorrectBacktrace[i]
		}
	}
	return result
}

// getLargestContiguousBlock returns the start and end index of the longest
// run of true values.
func getLargestContiguousBlock(vec []bool) (int, int) {
	thisBlock := 0
	maxBlockSize := 0
	maxBlockEnd := 0
	for i := range vec {
		if vec[i] {
			thisBlock++
		} else {
			if thisBlock > maxBlockSize {
				maxBlockEnd = i - 1
				maxBlockSize = thisBlock - 1
			}
			thisBlock = 0
		}
	}
	if thisBlock > maxBlockSize {
		maxBlockEnd = len(vec) - 1
		maxBlockSize = thisBlock - 1
	}
	return maxBlockEnd - maxBlockSize, maxBlockEnd
}
