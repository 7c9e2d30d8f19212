package flow

import (
	"strings"

	"github.com/Balaji0706816/nurseproject/internal/models"
)

// Render joins a row's validation line and prompt with a blank line, skipping empty parts.
func Render(row models.ContentRow) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{row.ValidationLine, row.Prompt} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
