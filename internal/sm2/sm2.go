// Package sm2 implements the SuperMemo 2 scheduling algorithm.
package sm2

import "math"

const (
	// DefaultEaseFactor is the ease factor assigned to brand-new progress records.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3

	// CorrectThreshold is the lowest quality grade counted as a correct recall.
	CorrectThreshold = 3

	// MinQuality and MaxQuality bound the accepted quality grades.
	MinQuality = 0
	MaxQuality = 5
)

// UpdateEaseFactor calculates the new ease factor for a quality grade.
// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q)*0.02)), clamped at MinEaseFactor.
func UpdateEaseFactor(ease float64, quality int) float64 {
	if ease == 0 {
		ease = DefaultEaseFactor
	}

	q := float64(quality)
	newEase := ease + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	return math.Max(newEase, MinEaseFactor)
}

// NextInterval calculates the next review interval in days.
// The ease factor passed in is the value before this review's ease update;
// fractional days are truncated, not rounded.
// On a wrong answer (quality < 3) the interval resets to 1 day.
func NextInterval(repetitions, intervalDays int, ease float64, quality int) int {
	if quality < CorrectThreshold {
		return 1
	}

	if ease == 0 {
		ease = DefaultEaseFactor
	}

	switch repetitions {
	case 0:
		return 1
	case 1:
		return 6
	default:
		return int(float64(intervalDays) * ease)
	}
}

// NextRepetitions calculates the repetition count after a review.
// A wrong answer resets the count to zero.
func NextRepetitions(repetitions, quality int) int {
	if quality < CorrectThreshold {
		return 0
	}
	return repetitions + 1
}

// IsValidQuality reports whether a quality grade is within the accepted range.
func IsValidQuality(quality int) bool {
	return quality >= MinQuality && quality <= MaxQuality
}
