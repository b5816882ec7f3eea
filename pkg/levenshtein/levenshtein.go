// Package levenshtein computes edit distances and picks the closest of a
// set of names, for "did you mean" hints on misspelled identifiers.
package levenshtein

// Distance returns the number of single-rune insertions, deletions, and
// substitutions needed to turn a into b.
func Distance(a, b string) int {
	s1 := []rune(a)
	s2 := []rune(b)

	if len(s1) < len(s2) {
		s1, s2 = s2, s1
	}

	if len(s2) == 0 {
		return len(s1)
	}

	// One column over the shorter string.
	column := make([]int, len(s2)+1)
	for i := range column {
		column[i] = i
	}

	for _, r1 := range s1 {
		diag := column[0]
		column[0]++

		for j, r2 := range s2 {
			cost := 1
			if r1 == r2 {
				cost = 0
			}

			above := column[j+1]
			column[j+1] = min(above+1, column[j]+1, diag+cost)
			diag = above
		}
	}

	return column[len(s2)]
}

// Closest returns the candidate nearest to name whose distance is at most
// maxDistance. Ties keep the earliest candidate. An exact match is never
// a suggestion.
func Closest(name string, candidates []string, maxDistance int) (string, bool) {
	best := ""
	bestDistance := maxDistance + 1

	for _, c := range candidates {
		d := Distance(name, c)
		if d == 0 || d >= bestDistance {
			continue
		}

		best, bestDistance = c, d
	}

	return best, best != ""
}
