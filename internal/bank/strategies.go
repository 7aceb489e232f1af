package bank

import (
	"taglift/internal/textnorm"
)

// Match modes understood by the bank's text search.
const (
	ModeEvery = "EVERY" // all words must appear
	ModeSome  = "SOME"  // any word may appear
)

// minStrategyChars is the shortest search text worth sending. Shorter terms
// match half the bank and drown the similarity scoring in noise.
const minStrategyChars = 8

// Strategy is one search attempt: the text to send, an optional subject
// filter, and the match mode.
type Strategy struct {
	Name      string
	Text      string
	SubjectID int64 // 0 means no subject filter
	Mode      string
}

// BuildStrategies derives the ordered search attempts for a cleaned
// statement. Subject-filtered searches on the first sentence come first
// because they are the most selective; progressively broader fallbacks
// follow. Duplicate search texts are dropped, keeping the earliest (most
// selective) strategy.
func BuildStrategies(cleaned string, subjectID int64) []Strategy {
	firstSentence := textnorm.FirstSentence(cleaned)
	sevenWords := textnorm.WordBag(cleaned, 7)
	fiveWords := textnorm.WordBag(cleaned, 5)
	lastSentence := textnorm.LastSentence(cleaned)

	if len(firstSentence) < minStrategyChars && len(sevenWords) < minStrategyChars {
		return nil
	}

	used := make(map[string]bool)
	var strategies []Strategy
	add := func(name, text string, subject int64) {
		if len(text) < minStrategyChars || used[text] {
			return
		}
		used[text] = true
		strategies = append(strategies, Strategy{
			Name:      name,
			Text:      text,
			SubjectID: subject,
			Mode:      ModeEvery,
		})
	}

	if subjectID != 0 {
		add("subject+sentence", firstSentence, subjectID)
		add("subject+7words", sevenWords, subjectID)
	}
	add("open+sentence", firstSentence, 0)
	add("open+7words", sevenWords, 0)
	if lastSentence != "" && lastSentence != firstSentence {
		add("open+question", lastSentence, 0)
	}
	add("open+5words", fiveWords, 0)

	return strategies
}
