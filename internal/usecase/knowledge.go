package usecase

import (
	"os"
	"strings"
)

// KnowledgePlaceholder stands in for the knowledge preamble when the resource
// cannot be read.
const KnowledgePlaceholder = "No hay información adicional de contexto disponible."

// LoadKnowledge reads the contextual knowledge preamble once at startup. A
// missing, unreadable or empty file yields the placeholder, never an error.
func LoadKnowledge(path string) (text string, loaded bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return KnowledgePlaceholder, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return KnowledgePlaceholder, false
	}
	text = strings.TrimSpace(string(raw))
	if text == "" {
		return KnowledgePlaceholder, false
	}
	return text, true
}
