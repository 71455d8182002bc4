package domain

// Sequences at least this long ignore their popular runes as match anchors.
const popularMinLength = 200

// SimilarityRatio returns the Ratcliff/Obershelp ratio of a and b in [0, 1]:
// twice the number of matching runes divided by the total rune count. When b
// has 200 or more runes, runes making up more than 1% of it never start a
// matching block, though they still extend one at its edges.
func SimilarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	m := matcher{a: ra, b: rb, popular: popularRunes(rb)}
	return 2 * float64(m.matching(0, len(ra), 0, len(rb))) / float64(total)
}

func popularRunes(b []rune) map[rune]bool {
	if len(b) < popularMinLength {
		return nil
	}

	counts := make(map[rune]int)
	for _, r := range b {
		counts[r]++
	}

	limit := len(b)/100 + 1
	popular := make(map[rune]bool)
	for r, n := range counts {
		if n > limit {
			popular[r] = true
		}
	}
	return popular
}

type matcher struct {
	a, b    []rune
	popular map[rune]bool
}

func (m matcher) matching(alo, ahi, blo, bhi int) int {
	if alo >= ahi || blo >= bhi {
		return 0
	}

	i, j, size := m.longestBlock(alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}

	return size + m.matching(alo, i, blo, j) + m.matching(i+size, ahi, j+size, bhi)
}

// longestBlock finds the earliest longest block of a[alo:ahi] and b[blo:bhi]
// built from non-popular runes, then widens it over equal neighbours.
func (m matcher) longestBlock(alo, ahi, blo, bhi int) (int, int, int) {
	prev := make([]int, bhi-blo+1)
	cur := make([]int, bhi-blo+1)
	bestI, bestJ, bestSize := alo, blo, 0

	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			k := j - blo + 1
			if m.a[i] != m.b[j] || m.popular[m.b[j]] {
				cur[k] = 0
				continue
			}
			cur[k] = prev[k-1] + 1
			if cur[k] > bestSize {
				bestSize = cur[k]
				bestI = i - bestSize + 1
				bestJ = j - bestSize + 1
			}
		}
		prev, cur = cur, prev
	}

	for bestI > alo && bestJ > blo && m.a[bestI-1] == m.b[bestJ-1] {
		bestI--
		bestJ--
		bestSize++
	}
	for bestI+bestSize < ahi && bestJ+bestSize < bhi && m.a[bestI+bestSize] == m.b[bestJ+bestSize] {
		bestSize++
	}

	return bestI, bestJ, bestSize
}
