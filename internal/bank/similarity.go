package bank

import (
	"regexp"
	"strings"
)

// similarityWindow caps how much of each statement feeds the comparison.
// Long support texts diverge in their tails even for the same question;
// the opening 800 characters are what identifies it.
const similarityWindow = 800

var similaritySpaceRun = regexp.MustCompile(`\s+`)

// Similarity scores how alike two statements are, from 0 to 1. Both sides
// are lowercased, whitespace-collapsed and truncated to the comparison
// window before matching. The score is symmetric.
func Similarity(a, b string) float64 {
	ra := prepareForComparison(a)
	rb := prepareForComparison(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	m := newSequenceMatcher(ra, rb)
	return 2 * float64(m.totalMatched()) / float64(len(ra)+len(rb))
}

func prepareForComparison(text string) []rune {
	text = similaritySpaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	rs := []rune(text)
	if len(rs) > similarityWindow {
		rs = rs[:similarityWindow]
	}
	return rs
}

// sequenceMatcher finds the total length of the matching blocks between two
// rune sequences using Ratcliff/Obershelp recursive longest-common-substring
// matching.
type sequenceMatcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newSequenceMatcher(a, b []rune) *sequenceMatcher {
	m := &sequenceMatcher{
		a:   a,
		b:   b,
		b2j: make(map[rune][]int),
	}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	return m
}

func (m *sequenceMatcher) totalMatched() int {
	type span struct{ alo, ahi, blo, bhi int }
	stack := []span{{0, len(m.a), 0, len(m.b)}}

	total := 0
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, k := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		stack = append(stack,
			span{s.alo, i, s.blo, j},
			span{i + k, s.ahi, j + k, s.bhi})
	}
	return total
}

func (m *sequenceMatcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi &&
		m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}
