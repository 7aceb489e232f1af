package textnorm

import (
	"strings"
	"testing"
)

func TestStripMarkupRemovesTags(t *testing.T) {
	in := `<p>Considere a <b>função</b> f(x) = 2x.</p><br/>Qual o valor de f(3)?`
	got, hadImage, reason := StripMarkup(in)
	if hadImage {
		t.Fatal("no image expected")
	}
	if reason != ReasonNone {
		t.Fatalf("unexpected reason %q", reason)
	}
	want := "Considere a função f(x) = 2x. Qual o valor de f(3)?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStripMarkupImageOnly(t *testing.T) {
	got, hadImage, reason := StripMarkup(`<img src="figura1.png" alt="">`)
	if got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
	if !hadImage {
		t.Fatal("image reference not detected")
	}
	if reason != ReasonImageOnly {
		t.Fatalf("reason = %q, want %q", reason, ReasonImageOnly)
	}
}

func TestStripMarkupImageWithText(t *testing.T) {
	got, hadImage, reason := StripMarkup(`Observe a figura. <img src="https://cdn.example.com/q/123.jpg"> O que ela representa?`)
	if !hadImage {
		t.Fatal("image reference not detected")
	}
	if reason != ReasonNone {
		t.Fatalf("unexpected reason %q", reason)
	}
	if !strings.Contains(got, "O que ela representa?") {
		t.Fatalf("text lost: %q", got)
	}
	if strings.Contains(got, "cdn.example.com") {
		t.Fatalf("image URL not removed: %q", got)
	}
}

func TestStripMarkupEmptyInput(t *testing.T) {
	if _, _, reason := StripMarkup("   "); reason != ReasonEmptyInput {
		t.Fatalf("reason = %q, want %q", reason, ReasonEmptyInput)
	}
}

func TestStripMarkupStrippedEmpty(t *testing.T) {
	_, hadImage, reason := StripMarkup(`<div><span></span></div>`)
	if hadImage {
		t.Fatal("no image expected")
	}
	if reason != ReasonStrippedEmpty {
		t.Fatalf("reason = %q, want %q", reason, ReasonStrippedEmpty)
	}
}

func TestStripMarkupDropsBoilerplate(t *testing.T) {
	in := `O gráfico mostra a inflação anual. Disponível em: https://exemplo.com/grafico. Acesso em 10 mar. 2024. (Fonte: IBGE)`
	got, _, _ := StripMarkup(in)
	for _, banned := range []string{"Disponível", "Acesso em", "Fonte"} {
		if strings.Contains(got, banned) {
			t.Fatalf("boilerplate %q survived: %q", banned, got)
		}
	}
	if !strings.Contains(got, "O gráfico mostra a inflação anual.") {
		t.Fatalf("content lost: %q", got)
	}
}

func TestStripMarkupDropsAdaptedCredit(t *testing.T) {
	got, _, _ := StripMarkup(`A charge ironiza o cenário político. (Adaptado de revista Veja, 2003)`)
	if strings.Contains(got, "Adaptado") {
		t.Fatalf("adapted credit survived: %q", got)
	}
	if !strings.Contains(got, "A charge ironiza o cenário político.") {
		t.Fatalf("content lost: %q", got)
	}
}

func TestStripMarkupUnescapesEntities(t *testing.T) {
	got, _, _ := StripMarkup(`2 &lt; 3 &amp; 4 &gt; 1`)
	want := "2 < 3 & 4 > 1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
