package textnorm

import (
	"regexp"
	"strings"
)

const (
	maxSentenceWords = 20
	minLastWords     = 5
	minUsefulChars   = 20
)

var (
	// Lead-in instructions that precede the actual question. These carry no
	// discriminating content and are shared by thousands of statements.
	noisePrefixPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*texto\s+(?:[ivx]+|\d+)\s*[:.-]?\s*`),
		regexp.MustCompile(`(?i)^\s*leia\s+o\s+texto[^.:]*[:.]\s*`),
		regexp.MustCompile(`(?i)^\s*leia\s+(?:o|a|os|as)\s+\w+[^.:]*[:.]\s*`),
		regexp.MustCompile(`(?i)^\s*observe\s+[^.:]*[:.]\s*`),
		regexp.MustCompile(`(?i)^\s*analise\s+[^.:]*[:.]\s*`),
		regexp.MustCompile(`(?i)^\s*considere\s+[^.:]*[:.]\s*`),
	}

	// Image credits left over after markup stripping, e.g. "Charge de ...".
	creditPrefixPattern = regexp.MustCompile(`(?i)^\s*(?:charge|foto|imagem|ilustra[çc][ãa]o|gravura|tirinha|cartum)\b[^.\n]*[.\n]\s*`)

	// "Texto I", "Texto 2:" markers appear mid-statement whenever a question
	// interleaves several support texts.
	textMarkerPattern = regexp.MustCompile(`(?i)\btexto\s+(?:[ivx]+|\d+)\b\s*[:.-]?\s*`)

	// Bibliographic references that appear anywhere in the body, not only as
	// a prefix. The patterns themselves live alongside StripMarkup.
	referencePatterns = []*regexp.Regexp{
		availablePattern,
		sourceCreditPattern,
		adaptedPattern,
		textMarkerPattern,
	}

	sentenceEndPattern = regexp.MustCompile(`[.!?]+[\s\n]+|[.!?]+$`)
	wordPattern        = regexp.MustCompile(`[\p{L}\p{N}]+(?:['-][\p{L}\p{N}]+)*`)
)

// CleanStatement removes lead-in noise (text markers, reading instructions,
// image credits) and bibliographic references from a stripped statement. When
// cleaning would leave too little text to search on, the original statement
// is returned unchanged.
func CleanStatement(statement string) string {
	cleaned := strings.TrimSpace(statement)
	for {
		before := cleaned
		for _, p := range referencePatterns {
			cleaned = p.ReplaceAllString(cleaned, " ")
		}
		for _, p := range noisePrefixPatterns {
			cleaned = p.ReplaceAllString(cleaned, "")
		}
		cleaned = creditPrefixPattern.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == before {
			break
		}
	}
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	if len(cleaned) <= minUsefulChars {
		return strings.TrimSpace(statement)
	}
	return cleaned
}

// FirstSentence returns the first sentence of the statement, capped at 20
// words. Statements without sentence punctuation yield their first 20 words.
func FirstSentence(statement string) string {
	sentences := splitSentences(statement)
	if len(sentences) == 0 {
		return ""
	}
	return capWords(sentences[0], maxSentenceWords)
}

// LastSentence returns the last sentence carrying at least 5 words, capped at
// 20 words. Trailing fragments like "Assinale:" are skipped.
func LastSentence(statement string) string {
	sentences := splitSentences(statement)
	for i := len(sentences) - 1; i >= 0; i-- {
		if len(wordPattern.FindAllString(sentences[i], -1)) >= minLastWords {
			return capWords(sentences[i], maxSentenceWords)
		}
	}
	return ""
}

// WordBag returns the first n words of the statement joined by single spaces.
// Accented letters are kept; punctuation is dropped.
func WordBag(statement string, n int) string {
	words := wordPattern.FindAllString(statement, -1)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func splitSentences(statement string) []string {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil
	}
	parts := sentenceEndPattern.Split(statement, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func capWords(sentence string, n int) string {
	words := strings.Fields(sentence)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
