package reports

import (
	"fmt"
	"strings"

	"github.com/selivandex/newspulse/internal/adapters/ai"
	"github.com/selivandex/newspulse/internal/analytics"
	"github.com/selivandex/newspulse/pkg/models"
)

const reportSystemPrompt = `You are a media analyst. Write a concise narrative
report on the news coverage described by the data below. Cover volume trends,
sentiment, political balance of sources, geography, and notable entities.
Plain prose, no bullet lists, no preamble.`

// buildReportMessages flattens an analysis record into the role-tagged
// message list the completion API expects.
func buildReportMessages(record *models.AnalysisRecord) []ai.Message {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Topic: %s\n", record.Topic)
	fmt.Fprintf(&sb, "Window: %s to %s (%s)\n", record.StartDate, record.EndDate, record.Language)
	fmt.Fprintf(&sb, "Total mentions: %d\n\n", record.TotalMentions)

	if len(record.MentionsByDay) > 0 {
		sb.WriteString("Mentions by day:\n")
		for _, dm := range record.MentionsByDay {
			fmt.Fprintf(&sb, "  %s: %d\n", dm.Date, dm.Count)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Average sentiment: positive %.4f, neutral %.4f, negative %.4f\n\n",
		record.Sentiment.Positive, record.Sentiment.Neutral, record.Sentiment.Negative)

	sb.WriteString("Political leaning of sources:\n")
	for _, lc := range record.Leanings {
		if lc.Count == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %s: %d (%.1f%%)\n", lc.Leaning, lc.Count, lc.Share*100)
	}
	sb.WriteString("\n")

	writeFrequencyTable(&sb, "Top keywords", record.TopKeywords, analytics.DefaultKeywordLimit)
	writeFrequencyTable(&sb, "Top sources", record.TopSources, analytics.SourceLimit)
	writeFrequencyTable(&sb, "Coverage by country", record.Geography, 0)

	writeEntityList(&sb, "Organizations", record.Entities.Organizations)
	writeEntityList(&sb, "People", record.Entities.People)
	writeEntityList(&sb, "Locations", record.Entities.Locations)

	if len(record.RecentArticles) > 0 {
		sb.WriteString("\nMost recent coverage:\n")
		limit := len(record.RecentArticles)
		if limit > analytics.RepresentativeLimit {
			limit = analytics.RepresentativeLimit
		}
		for _, a := range record.RecentArticles[:limit] {
			fmt.Fprintf(&sb, "  [%s] %s - %s\n",
				a.PublishedAt.UTC().Format("2006-01-02"), a.Title, a.Source)
		}
	}

	return []ai.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

func writeFrequencyTable(sb *strings.Builder, title string, rows []models.FrequencyCount, limit int) {
	if len(rows) == 0 {
		return
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	fmt.Fprintf(sb, "%s:\n", title)
	for _, fc := range rows {
		fmt.Fprintf(sb, "  %s: %d\n", fc.Key, fc.Count)
	}
	sb.WriteString("\n")
}

func writeEntityList(sb *strings.Builder, title string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", title, strings.Join(values, ", "))
}
