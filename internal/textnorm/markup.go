package textnorm

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// EmptyReason explains why StripMarkup produced an empty statement.
type EmptyReason string

const (
	ReasonNone          EmptyReason = ""
	ReasonEmptyInput    EmptyReason = "empty-input"
	ReasonImageOnly     EmptyReason = "image-only"
	ReasonStrippedEmpty EmptyReason = "stripped-empty"
)

var (
	imgTagPattern   = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	imageURLPattern = regexp.MustCompile(`(?i)\bhttps?://\S+\.(?:png|jpe?g|gif|bmp|svg|webp)\b\S*`)
	scriptPattern   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	stylePattern    = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	breakPattern    = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>|</tr>`)

	// Bibliographic boilerplate appended to statements by the source system.
	// "Disponível em: <url>. Acesso em <date>." and "(Fonte: ...)" credits
	// carry no searchable content and skew similarity scores. These may sit
	// anywhere in the body, so CleanStatement strips them too.
	sourceCreditPattern = regexp.MustCompile(`(?i)\(\s*fonte\s*:?[^)]*\)`)
	availablePattern    = regexp.MustCompile(`(?i)dispon[ií]vel em:?\s*\S+(\s*\.?\s*acesso em:?[^.]*\.?)?`)
	adaptedPattern      = regexp.MustCompile(`(?i)\(\s*(?:adaptad[oa]|extra[ií]d[oa])\b[^)]*\)`)

	whitespaceRun = regexp.MustCompile(`[ \t]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)

	stripPolicy = bluemonday.StrictPolicy()
)

// StripMarkup removes HTML markup and bibliographic boilerplate from a raw
// statement. It reports whether the statement referenced an image, and when
// the result is empty, why.
func StripMarkup(raw string) (string, bool, EmptyReason) {
	if strings.TrimSpace(raw) == "" {
		return "", false, ReasonEmptyInput
	}

	hadImage := imgTagPattern.MatchString(raw) || imageURLPattern.MatchString(raw)

	text := scriptPattern.ReplaceAllString(raw, " ")
	text = stylePattern.ReplaceAllString(text, " ")
	text = imgTagPattern.ReplaceAllString(text, " ")
	text = imageURLPattern.ReplaceAllString(text, " ")
	text = breakPattern.ReplaceAllString(text, " ")

	text = stripPolicy.Sanitize(text)
	text = html.UnescapeString(text)

	text = sourceCreditPattern.ReplaceAllString(text, " ")
	text = availablePattern.ReplaceAllString(text, " ")
	text = adaptedPattern.ReplaceAllString(text, " ")

	text = collapseWhitespace(text)
	if text == "" {
		if hadImage {
			return "", true, ReasonImageOnly
		}
		return "", false, ReasonStrippedEmpty
	}
	return text, hadImage, ReasonNone
}

func collapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
