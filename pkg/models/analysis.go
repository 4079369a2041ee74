package models

import "time"

// Political leaning categories. The distribution always reports exactly this
// set, in this canonical order, regardless of observed counts.
const (
	LeaningLeft        = "left"
	LeaningCenterLeft  = "center_left"
	LeaningCenter      = "center"
	LeaningCenterRight = "center_right"
	LeaningRight       = "right"
	LeaningFarLeft     = "far_left"
	LeaningFarRight    = "far_right"
	LeaningNonpartisan = "nonpartisan"
)

// LeaningCategories lists all recognized political leaning categories.
var LeaningCategories = []string{
	LeaningLeft,
	LeaningCenterLeft,
	LeaningCenter,
	LeaningCenterRight,
	LeaningRight,
	LeaningFarLeft,
	LeaningFarRight,
	LeaningNonpartisan,
}

// DailyMentions is one day's article count, keyed by UTC date string.
type DailyMentions struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SentimentAverage holds averaged sentiment fractions across a set of articles.
type SentimentAverage struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// LeaningCount is one political leaning bucket with its share of all articles.
type LeaningCount struct {
	Leaning string  `json:"leaning"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"`
}

// FrequencyCount is a generic ranked frequency table row.
type FrequencyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ArticleSummary is the projection of an Article used in the representative
// article list fed to report generation.
type ArticleSummary struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Sentiment   float64   `json:"sentiment"`
	PublishedAt time.Time `json:"published_at"`
}

// Entities groups named entities extracted from topic coverage.
type Entities struct {
	Organizations []string `json:"organizations"`
	People        []string `json:"people"`
	Locations     []string `json:"locations"`
}

// AnalysisRecord is the aggregate output for one (topic, date range, language)
// tuple. It is a pure function of the deduplicated article set: recomputing
// from the same articles yields identical output.
type AnalysisRecord struct {
	Topic           string           `json:"topic"`
	StartDate       string           `json:"start_date"`
	EndDate         string           `json:"end_date"`
	Language        string           `json:"language"`
	TotalMentions   int              `json:"total_mentions"`
	MentionsByDay   []DailyMentions  `json:"mentions_by_day"`
	Sentiment       SentimentAverage `json:"sentiment"`
	Leanings        []LeaningCount   `json:"political_leaning_distribution"`
	TopKeywords     []FrequencyCount `json:"top_keywords"`
	TopSources      []FrequencyCount `json:"top_sources"`
	Geography       []FrequencyCount `json:"geographic_distribution"`
	Entities        Entities         `json:"entities"`
	RecentArticles  []ArticleSummary `json:"recent_articles"`
	Tier            Tier             `json:"api_tier"`
}
