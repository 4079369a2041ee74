package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/pkg/cache"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

const entitySystemPrompt = `You extract named entities from news coverage.
Respond with JSON only, in the exact shape:
{"organizations": [], "people": [], "locations": []}`

// EntityExtractor pulls organization/people/location lists out of topic
// coverage. It degrades: any call or parse failure yields empty lists, never
// an error, because entity lists are decoration on the analysis record.
type EntityExtractor struct {
	client   *openai.Client
	model    string
	maxItems int
	cache    *cache.Cache
	ttl      time.Duration
}

// NewEntityExtractor creates the extractor. A nil client (no API key
// configured) is allowed and always degrades to empty lists.
func NewEntityExtractor(cfg *config.AIConfig, store *cache.Cache, ttl time.Duration) *EntityExtractor {
	var client *openai.Client
	if cfg.EntityAPIKey != "" {
		client = openai.NewClient(cfg.EntityAPIKey)
	}

	return &EntityExtractor{
		client:   client,
		model:    cfg.EntityModel,
		maxItems: cfg.EntityMaxItems,
		cache:    store,
		ttl:      ttl,
	}
}

// Extract returns the entity lists for a topic window. Results are cached
// independently of the analysis record under the ai:entities: namespace.
func (e *EntityExtractor) Extract(ctx context.Context, topic, from, to, lang string, articles []models.Article) models.Entities {
	key := cache.AIKey("entities", cache.NormalizeTopic(topic), from, to, lang)
	if cached, ok := e.cache.Get(key); ok {
		return cached.(models.Entities)
	}

	entities, err := e.extract(ctx, topic, articles)
	if err != nil {
		logger.Warn("entity extraction degraded to empty lists",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return emptyEntities()
	}

	e.cache.Set(key, entities, e.ttl)
	return entities
}

func (e *EntityExtractor) extract(ctx context.Context, topic string, articles []models.Article) (models.Entities, error) {
	if e.client == nil {
		return models.Entities{}, fmt.Errorf("entity extraction client not configured")
	}
	if len(articles) == 0 {
		return emptyEntities(), nil
	}

	limit := e.maxItems
	if limit > len(articles) {
		limit = len(articles)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n\nHeadlines:\n", topic)
	for i := 0; i < limit; i++ {
		fmt.Fprintf(&sb, "- %s\n", articles[i].Title)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: entitySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return models.Entities{}, fmt.Errorf("entity completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Entities{}, fmt.Errorf("no choices in entity response")
	}

	var entities models.Entities
	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &entities); err != nil {
		return models.Entities{}, fmt.Errorf("failed to parse entity JSON: %w", err)
	}

	if entities.Organizations == nil {
		entities.Organizations = []string{}
	}
	if entities.People == nil {
		entities.People = []string{}
	}
	if entities.Locations == nil {
		entities.Locations = []string{}
	}

	return entities, nil
}

func emptyEntities() models.Entities {
	return models.Entities{
		Organizations: []string{},
		People:        []string{},
		Locations:     []string{},
	}
}

// stripCodeFence unwraps ```json blocks some models insist on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
