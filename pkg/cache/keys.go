package cache

import (
	"fmt"
	"strings"
)

// Key namespaces. Two features using colliding key construction would silently
// interfere, so every consumer builds keys through this file and nowhere else.
const (
	nsNews      = "news"
	nsRelated   = "related"
	nsArticles  = "articles"
	nsProcessed = "processed"
	nsAI        = "ai"
)

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// NormalizeTopic converts curly quotes to straight quotes so that quote-style
// variants of the same query always produce the same key. Idempotent.
func NormalizeTopic(topic string) string {
	return quoteReplacer.Replace(topic)
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}

// NewsKey keys a raw paginated search result set.
func NewsKey(topic, from, to, lang, country string) string {
	return join(nsNews, NormalizeTopic(topic), from, to, lang, country)
}

// RelatedKey keys a related-articles lookup for one article.
func RelatedKey(articleID string, limit int) string {
	return join(nsRelated, articleID, fmt.Sprintf("%d", limit))
}

// ArticlesKey keys the deduplicated article list for a topic window.
func ArticlesKey(topic, from, to, lang string) string {
	return join(nsArticles, NormalizeTopic(topic), from, to, lang)
}

// ProcessedKey keys a completed analysis record.
func ProcessedKey(topic, from, to, lang string) string {
	return join(nsProcessed, NormalizeTopic(topic), from, to, lang)
}

// ReportKey keys a generated narrative report.
func ReportKey(topic, from, to, lang string) string {
	return join(nsAI, "report", NormalizeTopic(topic), from, to, lang)
}

// AIKey keys an arbitrary AI collaborator result under ai:<context>:.
func AIKey(context string, params ...string) string {
	parts := append([]string{nsAI, context}, params...)
	return join(parts...)
}
