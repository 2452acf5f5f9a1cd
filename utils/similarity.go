package utils

// Levenshtein returns the unit-cost edit distance between a and b, compared
// rune by rune.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// rows over b, columns over a
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = min(prev[j-1], curr[j-1], prev[j]) + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

// Similarity is 1 - distance/longest, in [0,1]. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(RuneLen(a), RuneLen(b))
	if longest == 0 {
		return 1.0
	}
	return float64(longest-Levenshtein(a, b)) / float64(longest)
}

func RuneLen(s string) int {
	return len([]rune(s))
}
