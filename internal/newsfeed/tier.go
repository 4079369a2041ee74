package newsfeed

import (
	"net/http"
	"strings"

	"github.com/selivandex/newspulse/internal/adapters/newsapi"
	"github.com/selivandex/newspulse/pkg/models"
)

// GatedFieldMarker is the placeholder the upstream substitutes for
// feature-gated fields on restricted plans. The content-scan fallback below
// depends on this exact wording upstream; a change there silently breaks
// detection, so header metadata is always preferred.
const GatedFieldMarker = "AVAILABLE IN PAID PLANS"

// detectTier infers the subscription tier from the quota headers of a page
// response, falling back to scanning article bodies for the gated-field
// placeholder when headers are inconclusive.
func detectTier(headers http.Header, articles []models.Article) models.Tier {
	if headers != nil {
		switch strings.ToLower(headers.Get(newsapi.HeaderQuotaType)) {
		case "free", "trial":
			return models.TierFree
		case "":
			// Inconclusive, fall through to content scan.
		default:
			return models.TierPaid
		}
	}

	for i := range articles {
		if articleCarriesMarker(&articles[i]) {
			return models.TierFree
		}
	}

	return models.TierUnknown
}

func articleCarriesMarker(a *models.Article) bool {
	if strings.Contains(a.Content, GatedFieldMarker) {
		return true
	}
	for _, k := range a.Keywords {
		if k == GatedFieldMarker {
			return true
		}
	}
	for _, tp := range a.Topics {
		if tp == GatedFieldMarker {
			return true
		}
	}
	return false
}

// sanitizeArticle strips feature-gated placeholders from a free-tier article.
// The input is never mutated; a cleaned copy is returned.
func sanitizeArticle(a models.Article) models.Article {
	out := a

	out.Keywords = dropMarker(a.Keywords)
	out.Topics = dropMarker(a.Topics)

	if strings.Contains(out.Content, GatedFieldMarker) {
		out.Content = ""
	}

	if out.Sentiment.IsEmpty() {
		out.Sentiment = nil
	}

	// Without leaning the rest of the source metadata is upstream filler:
	// collapse to country-only.
	if out.Source.Leaning == "" {
		out.Source = models.SourceInfo{
			ID:      a.Source.ID,
			Name:    a.Source.Name,
			Country: a.Source.Country,
		}
	}

	return out
}

func dropMarker(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == GatedFieldMarker {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
