package llm

import (
	"strings"

	"github.com/ppiankov/filesort/internal/model"
)

// ExtractCategory finds a category name anywhere in a free-text answer.
// Matching is a case-insensitive substring test in model.Categories order,
// so an answer naming two categories resolves to the one listed first.
func ExtractCategory(answer string) (model.Category, bool) {
	lower := strings.ToLower(answer)
	for _, category := range model.Categories {
		if strings.Contains(lower, strings.ToLower(string(category))) {
			return category, true
		}
	}
	return "", false
}
