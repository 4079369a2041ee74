// Package analytics computes descriptive aggregates over a deduplicated
// article set. Every function here is pure: no I/O, no caching, and identical
// input always produces identical output.
package analytics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/selivandex/newspulse/pkg/models"
)

const (
	// DefaultKeywordLimit bounds the keyword frequency table when the caller
	// passes no limit.
	DefaultKeywordLimit = 10

	// SourceLimit bounds the top source table.
	SourceLimit = 10

	// RepresentativeLimit bounds the recency-sorted article subset fed to
	// report generation.
	RepresentativeLimit = 5

	sentimentPrecision = 4
	sharePrecision     = 4
)

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// MentionsByDay counts articles per UTC calendar date. Only observed days
// appear; the output is ordered by date string ascending.
func MentionsByDay(articles []models.Article) []models.DailyMentions {
	counts := make(map[string]int)
	for i := range articles {
		day := articles[i].PublishedAt.UTC().Format("2006-01-02")
		counts[day]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]models.DailyMentions, 0, len(days))
	for _, day := range days {
		out = append(out, models.DailyMentions{Date: day, Count: counts[day]})
	}
	return out
}

// AverageSentiment computes the arithmetic mean of each sentiment component
// across articles that carry a sentiment object. With zero sentiment-bearing
// articles the result is fully neutral rather than a division by zero.
func AverageSentiment(articles []models.Article) models.SentimentAverage {
	var positive, neutral, negative float64
	carriers := 0

	for i := range articles {
		s := articles[i].Sentiment
		if s == nil {
			continue
		}
		positive += s.Positive
		neutral += s.Neutral
		negative += s.Negative
		carriers++
	}

	if carriers == 0 {
		return models.SentimentAverage{Positive: 0, Neutral: 1, Negative: 0}
	}

	n := float64(carriers)
	return models.SentimentAverage{
		Positive: round(positive/n, sentimentPrecision),
		Neutral:  round(neutral/n, sentimentPrecision),
		Negative: round(negative/n, sentimentPrecision),
	}
}

// LeaningDistribution buckets articles into the fixed political leaning
// category set. Every category appears even with zero count; sources without
// a recognized leaning count as nonpartisan. Shares are fractions of all
// articles, rounded to four decimals, and the output is sorted by count
// descending with the canonical category order breaking ties.
func LeaningDistribution(articles []models.Article) []models.LeaningCount {
	known := make(map[string]bool, len(models.LeaningCategories))
	for _, c := range models.LeaningCategories {
		known[c] = true
	}

	counts := make(map[string]int, len(models.LeaningCategories))
	for i := range articles {
		leaning := articles[i].Source.Leaning
		if !known[leaning] {
			leaning = models.LeaningNonpartisan
		}
		counts[leaning]++
	}

	total := len(articles)
	denom := total
	if denom == 0 {
		denom = 1
	}

	out := make([]models.LeaningCount, 0, len(models.LeaningCategories))
	for _, category := range models.LeaningCategories {
		count := counts[category]
		out = append(out, models.LeaningCount{
			Leaning: category,
			Count:   count,
			Share:   round(float64(count)/float64(denom), sharePrecision),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	return out
}

// TopKeywords counts normalized keywords across all articles and returns the
// top entries by frequency. A non-positive limit falls back to the default.
func TopKeywords(articles []models.Article, limit int) []models.FrequencyCount {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	counts := make(map[string]int)
	for i := range articles {
		for _, kw := range articles[i].Keywords {
			norm := normalizeKeyword(kw)
			if norm == "" {
				continue
			}
			counts[norm]++
		}
	}

	return rankCounts(counts, limit)
}

// TopSources counts articles by source display name, falling back to the
// source id and then to a literal Unknown.
func TopSources(articles []models.Article) []models.FrequencyCount {
	counts := make(map[string]int)
	for i := range articles {
		src := articles[i].Source
		name := src.Name
		if name == "" {
			name = src.ID
		}
		if name == "" {
			name = "Unknown"
		}
		counts[name]++
	}

	return rankCounts(counts, SourceLimit)
}

// GeoDistribution counts articles by source country code, uncapped.
func GeoDistribution(articles []models.Article) []models.FrequencyCount {
	counts := make(map[string]int)
	for i := range articles {
		country := articles[i].Source.Country
		if country == "" {
			country = models.UnknownCountry
		}
		counts[country]++
	}

	return rankCounts(counts, 0)
}

// RepresentativeArticles picks the most recent articles and projects them to
// the summary shape report generation consumes.
func RepresentativeArticles(articles []models.Article) []models.ArticleSummary {
	sorted := make([]models.Article, len(articles))
	copy(sorted, articles)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	n := len(sorted)
	if n > RepresentativeLimit {
		n = RepresentativeLimit
	}

	out := make([]models.ArticleSummary, 0, n)
	for i := 0; i < n; i++ {
		a := sorted[i]
		out = append(out, models.ArticleSummary{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			Sentiment:   a.Sentiment.Score(),
			PublishedAt: a.PublishedAt,
		})
	}
	return out
}

// rankCounts turns a frequency map into a ranked table: count descending,
// key ascending on ties so the ranking is deterministic. A zero limit means
// no truncation.
func rankCounts(counts map[string]int, limit int) []models.FrequencyCount {
	out := make([]models.FrequencyCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, models.FrequencyCount{Key: key, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}
