package newsfeed

import (
	"strings"

	"github.com/selivandex/newspulse/pkg/models"
)

// NormalizeTitle lowercases and trims a title for duplicate detection.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Deduplicate keeps the first occurrence of each normalized title, preserving
// the original relative order. Idempotent.
func Deduplicate(articles []models.Article) []models.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]models.Article, 0, len(articles))

	for _, a := range articles {
		norm := NormalizeTitle(a.Title)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, a)
	}

	return out
}
