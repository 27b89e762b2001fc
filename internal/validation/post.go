package validation

import (
	"strings"

	"quill/internal/models"
)

const maxPostLen = 20000

// PostText validates the text field of the post form and returns it
// trimmed. Whitespace-only text counts as empty.
func PostText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", models.NewValidationError("Text is required")
	}
	if len(trimmed) > maxPostLen {
		return "", models.NewValidationError("Post too long (max 20000 characters)")
	}
	return trimmed, nil
}
