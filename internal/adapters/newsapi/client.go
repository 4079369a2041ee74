// Package newsapi is the client for the upstream article search provider.
package newsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/internal/adapters/httpx"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// Response metadata headers used for tier detection.
const (
	HeaderQuotaLimit = "X-Quota-Limit"
	HeaderQuotaType  = "X-Quota-Type"
)

// SearchRequest describes one article search query.
type SearchRequest struct {
	Query    string
	From     string // YYYY-MM-DD
	To       string // YYYY-MM-DD
	Language string
	Country  string
	PageSize int
}

// Page is one cursor page of search results plus the response metadata the
// pipeline needs for tier detection.
type Page struct {
	Articles   []models.Article
	NextCursor string
	Headers    http.Header
}

// Client is the paginated article-search client.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
}

// NewClient creates a search client. The API key must already be validated by
// config loading; an empty key here is a programming error, not a config one.
func NewClient(cfg *config.NewsAPIConfig, fetcher *httpx.Client) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    fetcher,
	}
}

type wireArticle struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Link        string   `json:"link"`
	Language    string   `json:"language"`
	Keywords    []string `json:"keywords"`
	Topics      []string `json:"topics"`
	Source      struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Leaning string  `json:"political_leaning"`
		Type    string  `json:"source_type"`
		Rank    float64 `json:"rank"`
	} `json:"source"`
	Sentiment *struct {
		Positive float64 `json:"positive"`
		Neutral  float64 `json:"neutral"`
		Negative float64 `json:"negative"`
	} `json:"sentiment"`
	PublishedAt time.Time `json:"published_date"`
}

func (w *wireArticle) toModel() models.Article {
	a := models.Article{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Content:     w.Content,
		URL:         w.Link,
		Language:    w.Language,
		Keywords:    w.Keywords,
		Topics:      w.Topics,
		PublishedAt: w.PublishedAt,
		Source: models.SourceInfo{
			ID:          w.Source.ID,
			Name:        w.Source.Name,
			Country:     w.Source.Country,
			Leaning:     w.Source.Leaning,
			SourceType:  w.Source.Type,
			Reliability: w.Source.Rank,
		},
	}
	if w.Sentiment != nil {
		a.Sentiment = &models.Sentiment{
			Positive: w.Sentiment.Positive,
			Neutral:  w.Sentiment.Neutral,
			Negative: w.Sentiment.Negative,
		}
	}
	return a
}

// SearchPage fetches one cursor page of articles. An empty cursor requests the
// first page; an empty NextCursor in the result means the set is exhausted.
func (c *Client) SearchPage(ctx context.Context, req SearchRequest, cursor string) (*Page, error) {
	params := url.Values{}
	params.Add("q", req.Query)
	params.Add("from_", req.From)
	params.Add("to_", req.To)
	params.Add("page_size", strconv.Itoa(req.PageSize))
	if req.Language != "" {
		params.Add("lang", req.Language)
	}
	if req.Country != "" {
		params.Add("countries", req.Country)
	}
	if cursor != "" {
		params.Add("cursor", cursor)
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var result struct {
		Articles   []wireArticle `json:"articles"`
		NextCursor string        `json:"next_cursor"`
	}

	headers, err := c.http.GetJSONWithHeaders(ctx, reqURL, c.authHeaders(), &result)
	if err != nil {
		return nil, fmt.Errorf("article search failed: %w", err)
	}

	articles := make([]models.Article, 0, len(result.Articles))
	for i := range result.Articles {
		articles = append(articles, result.Articles[i].toModel())
	}

	logger.Debug("fetched search page",
		zap.String("query", req.Query),
		zap.Int("count", len(articles)),
		zap.Bool("has_next", result.NextCursor != ""),
	)

	return &Page{
		Articles:   articles,
		NextCursor: result.NextCursor,
		Headers:    headers,
	}, nil
}

// RelatedArticles fetches articles related to one article, used to pad thin
// result sets.
func (c *Client) RelatedArticles(ctx context.Context, articleID string, limit int) ([]models.Article, error) {
	params := url.Values{}
	params.Add("article_id", articleID)
	params.Add("page_size", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/related?%s", c.baseURL, params.Encode())

	var result struct {
		Articles []wireArticle `json:"articles"`
	}

	if err := c.http.GetJSON(ctx, reqURL, c.authHeaders(), &result); err != nil {
		return nil, fmt.Errorf("related articles fetch failed: %w", err)
	}

	articles := make([]models.Article, 0, len(result.Articles))
	for i := range result.Articles {
		articles = append(articles, result.Articles[i].toModel())
	}

	return articles, nil
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"x-api-token": c.apiKey}
}
