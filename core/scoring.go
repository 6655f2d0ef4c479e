package core

import "math"

// PassRatio is the share of correct answers needed to pass a quiz or test.
const PassRatio = 0.7

// RequiredCorrect returns the number of correct answers needed to pass,
// rounded up: 10 questions require 7, 3 questions require 3 (ceil(2.1) = 3).
func RequiredCorrect(total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) * PassRatio))
}

// Passed reports whether `correct` out of `total` meets the pass threshold.
func Passed(correct, total int) bool {
	return total > 0 && correct >= RequiredCorrect(total)
}
