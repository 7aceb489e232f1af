package bank

import "strings"

// classificationLevels is the hierarchy the bank attaches to a question,
// from subject down to sub-item.
var classificationLevels = []string{"MATERIA", "DIVISAO", "TOPICO", "ITEM", "SUBITEM"}

// Record is a bank question with its classification paths resolved.
type Record struct {
	ID    int64    `json:"id"`
	Text  string   `json:"text"`
	Paths []string `json:"paths"`
}

// classificationPaths formats every classification attached to a question.
// Empty paths are dropped.
func classificationPaths(classifications []map[string]any) []string {
	var paths []string
	for _, c := range classifications {
		if path := formatClassification(c); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// formatClassification renders one classification as
// "Subject > Division > Topic > Item". The bank is inconsistent about how
// each level is shaped (list of objects, plain string) and which key holds
// the display name, so every known variant is tried in order.
func formatClassification(classification map[string]any) string {
	var parts []string
	for _, level := range classificationLevels {
		switch value := classification[level].(type) {
		case []any:
			if len(value) == 0 {
				continue
			}
			switch first := value[0].(type) {
			case map[string]any:
				name := firstNonEmpty(
					stringValue(first[level]),
					stringValue(first["NOME_"+level]),
					stringValue(first["NOME"]),
					stringValue(first["DESCRICAO"]),
				)
				if name != "" {
					parts = append(parts, name)
				}
			case string:
				if first != "" {
					parts = append(parts, first)
				}
			}
		case string:
			if value != "" {
				parts = append(parts, value)
			}
		}
	}
	return strings.Join(parts, " > ")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
