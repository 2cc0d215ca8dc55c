package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Cache wraps Redis for chat responses and health snapshots.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	ChatResponseKey = "chat:response:%s"
	SystemHealthKey = "system:health"
)

// CacheChatResponse caches a completed chat response under the query hash.
// Degraded (error) responses are never cached by callers.
func (c *Cache) CacheChatResponse(ctx context.Context, key string, response *models.ChatResponse, expiration time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal chat response: %w", err)
	}

	return c.client.Set(ctx, fmt.Sprintf(ChatResponseKey, key), data, expiration).Err()
}

// GetCachedChatResponse retrieves a cached chat response.
func (c *Cache) GetCachedChatResponse(ctx context.Context, key string) (*models.ChatResponse, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(ChatResponseKey, key)).Result()
	if err != nil {
		return nil, err
	}

	var response models.ChatResponse
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// InvalidateChatResponse removes a cached chat response.
func (c *Cache) InvalidateChatResponse(ctx context.Context, key string) error {
	return c.client.Del(ctx, fmt.Sprintf(ChatResponseKey, key)).Err()
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal system health: %w", err)
	}

	return c.client.Set(ctx, SystemHealthKey, data, expiration).Err()
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	data, err := c.client.Get(ctx, SystemHealthKey).Result()
	if err != nil {
		return nil, err
	}

	var health []models.SystemHealth
	err = json.Unmarshal([]byte(data), &health)
	return health, err
}
