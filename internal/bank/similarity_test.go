package bank

import (
	"math"
	"strings"
	"testing"
)

func TestSimilarityIdenticalText(t *testing.T) {
	if got := Similarity("A água cobre o planeta.", "A água cobre o planeta."); got != 1 {
		t.Fatalf("Similarity = %v, want 1", got)
	}
}

func TestSimilarityIgnoresCaseAndWhitespace(t *testing.T) {
	if got := Similarity("Hello   World", "hello world"); got != 1 {
		t.Fatalf("Similarity = %v, want 1", got)
	}
}

func TestSimilarityKnownRatio(t *testing.T) {
	// Longest common run "bcd" of length 3 over total length 8.
	if got := Similarity("abcd", "bcde"); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("Similarity = %v, want 0.75", got)
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	a := "O Brasil colonial exportava açúcar produzido em engenhos."
	b := "O Brasil imperial exportava café produzido em fazendas."
	if x, y := Similarity(a, b), Similarity(b, a); x != y {
		t.Fatalf("not symmetric: %v != %v", x, y)
	}
}

func TestSimilarityIsSymmetricForSkewedLengths(t *testing.T) {
	// A short statement against a long repetitive one must score the same
	// in either argument order.
	long := strings.Repeat("na escala de 1 a 10 ", 13)  // 260 runes
	short := strings.Repeat("escala de ", 10)           // 100 runes
	if x, y := Similarity(long, short), Similarity(short, long); x != y {
		t.Fatalf("not symmetric: %v != %v", x, y)
	}
}

func TestSimilarityDisjointTexts(t *testing.T) {
	got := Similarity("xxxxxxxxxx", "yyyyyyyyyy")
	if got > 0.1 {
		t.Fatalf("Similarity = %v for disjoint texts", got)
	}
}

func TestSimilarityEmptyInputs(t *testing.T) {
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("Similarity(empty, empty) = %v, want 1", got)
	}
	if got := Similarity("texto", ""); got != 0 {
		t.Fatalf("Similarity(text, empty) = %v, want 0", got)
	}
}

func TestSimilarityLongIdenticalText(t *testing.T) {
	text := strings.Repeat("ab", 200)
	if got := Similarity(text, text); got != 1 {
		t.Fatalf("Similarity = %v, want 1", got)
	}
}

func TestSimilarityOnlyComparesWindow(t *testing.T) {
	base := strings.Repeat("x", similarityWindow)
	a := base + strings.Repeat("a", 500)
	b := base + strings.Repeat("b", 500)
	if got := Similarity(a, b); got != 1 {
		t.Fatalf("divergent tails should be ignored, got %v", got)
	}
}
