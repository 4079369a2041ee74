// Package archive persists fetched article sets to PostgreSQL so that
// historical coverage survives process restarts and cache expiry.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/database"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/models"
)

// Repository handles article persistence in the archive database.
type Repository struct {
	db *database.DB
}

// NewRepository creates an article archive repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// SaveArticles upserts an article set under the topic it was fetched for.
// Individual row failures are logged and skipped so one malformed article
// does not lose the batch.
func (r *Repository) SaveArticles(ctx context.Context, topic string, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (
			external_id, topic, title, description, content, url, language,
			source_id, source_name, source_country, source_leaning,
			source_type, source_reliability,
			sentiment_positive, sentiment_neutral, sentiment_negative,
			keywords, topics, published_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		ON CONFLICT (external_id) DO UPDATE SET
			topic = EXCLUDED.topic,
			sentiment_positive = EXCLUDED.sentiment_positive,
			sentiment_neutral = EXCLUDED.sentiment_neutral,
			sentiment_negative = EXCLUDED.sentiment_negative,
			keywords = EXCLUDED.keywords,
			topics = EXCLUDED.topics
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, a := range articles {
		var positive, neutral, negative *float64
		if a.Sentiment != nil {
			positive = &a.Sentiment.Positive
			neutral = &a.Sentiment.Neutral
			negative = &a.Sentiment.Negative
		}

		_, err := stmt.ExecContext(ctx,
			a.ID,
			topic,
			a.Title,
			a.Description,
			a.Content,
			a.URL,
			a.Language,
			a.Source.ID,
			a.Source.Name,
			a.Source.Country,
			a.Source.Leaning,
			a.Source.SourceType,
			a.Source.Reliability,
			positive,
			neutral,
			negative,
			pq.Array(a.Keywords),
			pq.Array(a.Topics),
			a.PublishedAt,
			time.Now().UTC(),
		)
		if err != nil {
			logger.Warn("failed to save article",
				zap.String("id", a.ID),
				zap.Error(err),
			)
			continue
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logger.Debug("saved articles to archive",
		zap.String("topic", topic),
		zap.Int("total", len(articles)),
		zap.Int("saved", saved),
	)

	return nil
}

// GetRecent returns archived articles for a topic published within the
// given window, newest first.
func (r *Repository) GetRecent(ctx context.Context, topic string, since time.Duration, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = 100
	}
	cutoff := time.Now().UTC().Add(-since)

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT
			external_id, title, description, content, url, language,
			source_id, source_name, source_country, source_leaning,
			source_type, source_reliability,
			sentiment_positive, sentiment_neutral, sentiment_negative,
			keywords, topics, published_at
		FROM articles
		WHERE topic = $1 AND published_at > $2
		ORDER BY published_at DESC
		LIMIT $3
	`, topic, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]models.Article, 0)
	for rows.Next() {
		var a models.Article
		var positive, neutral, negative *float64
		var keywords, topics pq.StringArray

		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Description,
			&a.Content,
			&a.URL,
			&a.Language,
			&a.Source.ID,
			&a.Source.Name,
			&a.Source.Country,
			&a.Source.Leaning,
			&a.Source.SourceType,
			&a.Source.Reliability,
			&positive,
			&neutral,
			&negative,
			&keywords,
			&topics,
			&a.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		if positive != nil || neutral != nil || negative != nil {
			a.Sentiment = &models.Sentiment{}
			if positive != nil {
				a.Sentiment.Positive = *positive
			}
			if neutral != nil {
				a.Sentiment.Neutral = *neutral
			}
			if negative != nil {
				a.Sentiment.Negative = *negative
			}
		}
		a.Keywords = keywords
		a.Topics = topics

		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// CountByTopic returns how many archived articles a topic has.
func (r *Repository) CountByTopic(ctx context.Context, topic string) (int, error) {
	var count int
	err := r.db.DB().GetContext(ctx, &count,
		`SELECT COUNT(*) FROM articles WHERE topic = $1`, topic)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
