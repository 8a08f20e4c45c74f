package signals

import "unicode/utf16"

const (
	MinInterestScore = 65
	MaxInterestScore = 97
)

// RawInterestScore is the unclamped composite score: a base from the
// prediction, a boost for positive answers, two points per high-intensity
// signal and a small per-handle variation in [-5, 4].
func RawInterestScore(handle, answer string, prediction int, sigs [SignalCount]Signal) int {
	score := 55 + prediction*2
	if _, ok := positiveAnswers[answer]; ok {
		score += 8
	}
	for _, s := range sigs {
		if s.Intensity == High {
			score += 2
		}
	}
	return score + handleVariation(handle)
}

// InterestScore clamps RawInterestScore into [MinInterestScore, MaxInterestScore].
func InterestScore(handle, answer string, prediction int, sigs [SignalCount]Signal) int {
	return clampScore(RawInterestScore(handle, answer, prediction, sigs))
}

func clampScore(v int) int {
	if v < MinInterestScore {
		return MinInterestScore
	}
	if v > MaxInterestScore {
		return MaxInterestScore
	}
	return v
}

// handleVariation sums the UTF-16 code units of the handle.
func handleVariation(handle string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(handle)) {
		sum += int(u)
	}
	return sum%10 - 5
}

// IsPositiveAnswer reports whether an answer earns the score boost.
func IsPositiveAnswer(answer string) bool {
	_, ok := positiveAnswers[answer]
	return ok
}
