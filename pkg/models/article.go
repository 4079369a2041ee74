package models

import "time"

// Tier represents the caller's subscription level on the upstream news API.
// It is detected per query from response metadata and decides whether
// feature-gated fields need to be sanitized.
type Tier string

const (
	TierFree    Tier = "free"
	TierPaid    Tier = "paid"
	TierUnknown Tier = "unknown"
)

// UnknownCountry is the sentinel country code for sources without geo metadata.
const UnknownCountry = "ZZ"

// Sentiment holds per-article sentiment fractions. All three are optional
// upstream; a nil *Sentiment means the article carries no sentiment at all.
type Sentiment struct {
	Positive float64 `json:"positive" db:"sentiment_positive"`
	Neutral  float64 `json:"neutral" db:"sentiment_neutral"`
	Negative float64 `json:"negative" db:"sentiment_negative"`
}

// IsEmpty reports whether the sentiment object carries no signal.
func (s *Sentiment) IsEmpty() bool {
	return s == nil || (s.Positive == 0 && s.Neutral == 0 && s.Negative == 0)
}

// Score collapses sentiment to a single scalar in [-1, 1].
func (s *Sentiment) Score() float64 {
	if s == nil {
		return 0
	}
	return s.Positive - s.Negative
}

// SourceInfo describes the outlet an article came from.
type SourceInfo struct {
	ID          string  `json:"id" db:"source_id"`
	Name        string  `json:"name" db:"source_name"`
	Country     string  `json:"country" db:"source_country"`
	Leaning     string  `json:"leaning,omitempty" db:"source_leaning"`
	SourceType  string  `json:"source_type,omitempty" db:"source_type"`
	Reliability float64 `json:"reliability,omitempty" db:"source_reliability"`
}

// Article represents one news item. Immutable once fetched: pipeline stages
// that need to alter it (tier sanitization) produce a copy.
type Article struct {
	ID          string     `json:"id" db:"external_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Content     string     `json:"content" db:"content"`
	URL         string     `json:"url" db:"url"`
	Language    string     `json:"language" db:"language"`
	Source      SourceInfo `json:"source" db:"-"`
	Sentiment   *Sentiment `json:"sentiment,omitempty" db:"-"`
	Keywords    []string   `json:"keywords,omitempty" db:"keywords"`
	Topics      []string   `json:"topics,omitempty" db:"topics"`
	PublishedAt time.Time  `json:"published_at" db:"published_at"`
}
