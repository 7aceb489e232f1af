package bank

import "testing"

const sampleStatement = "A Revolução Industrial transformou as relações de trabalho. " +
	"Sobre esse processo histórico europeu, assinale a alternativa correta."

func TestBuildStrategiesOrderAndSubjects(t *testing.T) {
	strategies := BuildStrategies(sampleStatement, 4)
	if len(strategies) == 0 {
		t.Fatal("expected strategies")
	}

	// The open sentence and 7-word variants repeat the subject-filtered search
	// texts, so dedupe keeps only the earlier, more selective attempts.
	wantOrder := []string{"subject+sentence", "subject+7words", "open+question", "open+5words"}
	if len(strategies) != len(wantOrder) {
		t.Fatalf("got %d strategies, want %d: %+v", len(strategies), len(wantOrder), strategies)
	}
	for i, s := range strategies {
		if s.Name != wantOrder[i] {
			t.Fatalf("strategy %d = %q, want %q", i, s.Name, wantOrder[i])
		}
		if s.Mode != ModeEvery {
			t.Fatalf("strategy %q mode = %q", s.Name, s.Mode)
		}
	}

	if strategies[0].SubjectID != 4 || strategies[2].SubjectID != 0 {
		t.Fatalf("subject filters wrong: %+v", strategies)
	}
}

func TestBuildStrategiesWithoutSubject(t *testing.T) {
	for _, s := range BuildStrategies(sampleStatement, 0) {
		if s.SubjectID != 0 {
			t.Fatalf("unexpected subject filter in %+v", s)
		}
		if s.Name == "subject+sentence" || s.Name == "subject+7words" {
			t.Fatalf("subject strategy without a subject: %+v", s)
		}
	}
}

func TestBuildStrategiesDeduplicatesSearchText(t *testing.T) {
	// Seven-word statement: the first sentence and the 7-word bag differ only
	// in punctuation, but the 5-word bag is a distinct prefix.
	strategies := BuildStrategies("A fotossíntese ocorre dentro dos cloroplastos celulares.", 1)
	seen := make(map[string]bool)
	for _, s := range strategies {
		if seen[s.Text] {
			t.Fatalf("duplicate search text %q", s.Text)
		}
		seen[s.Text] = true
	}
}

func TestBuildStrategiesRejectsTinyStatements(t *testing.T) {
	if got := BuildStrategies("x = 2", 1); got != nil {
		t.Fatalf("expected no strategies, got %+v", got)
	}
}

func TestSubjectID(t *testing.T) {
	if id, ok := SubjectID(12); !ok || id != 6 {
		t.Fatalf("SubjectID(12) = %d, %v", id, ok)
	}
	if _, ok := SubjectID(999); ok {
		t.Fatal("unmapped category should report ok=false")
	}
}
