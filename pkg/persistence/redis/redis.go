// Package redis provides Redis persistence for workflow definitions.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "formflow:"

// Persistence stores each definition as a JSON string and keeps a sorted set of ids
// scored by creation time.
type Persistence struct {
	client    *redis.Client
	logger    *slog.Logger
	keyPrefix string
}

// NewPersistence connects to the Redis server at redisURL (redis://host:port/db).
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPersistenceWithClient(logger, client), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(logger *slog.Logger, client *redis.Client) *Persistence {
	return &Persistence{
		client:    client,
		logger:    logger,
		keyPrefix: defaultKeyPrefix,
	}
}

func (p *Persistence) definitionKey(id string) string {
	return p.keyPrefix + "definition:" + id
}

func (p *Persistence) indexKey() string {
	return p.keyPrefix + "definitions"
}

// Close closes the client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Definitions returns every stored definition, newest first.
func (p *Persistence) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := p.client.ZRevRange(ctx, p.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	definitions := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		definition, err := p.DefinitionByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if definition == nil {
			p.logger.WarnContext(ctx, "definition index points to missing key", "definition_id", id)

			continue
		}

		definitions = append(definitions, definition)
	}

	return definitions, nil
}

// DefinitionByID returns the definition stored under id, or nil.
func (p *Persistence) DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := p.client.Get(ctx, p.definitionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch definition %s: %w", id, err)
	}

	var definition models.WorkflowDefinition

	err = json.Unmarshal(data, &definition)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition %s: %w", id, err)
	}

	return &definition, nil
}

// SaveDefinition stores the definition and indexes it.
func (p *Persistence) SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error {
	if definition == nil || strings.TrimSpace(definition.ID) == "" {
		id := ""
		if definition != nil {
			id = definition.ID
		}

		return persistence.NewDefinitionError("SaveDefinition", id, persistence.ErrInvalidDefinition)
	}

	now := time.Now().UTC()
	if definition.CreatedAt.IsZero() {
		definition.CreatedAt = now
	}

	definition.UpdatedAt = now

	data, err := json.Marshal(definition)
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", definition.ID, err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.definitionKey(definition.ID), data, 0)
	pipe.ZAdd(ctx, p.indexKey(), redis.Z{Score: float64(definition.CreatedAt.UnixNano()), Member: definition.ID})

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save definition %s: %w", definition.ID, err)
	}

	return nil
}

// DeleteDefinition removes the definition and its index entry.
func (p *Persistence) DeleteDefinition(ctx context.Context, id string) error {
	pipe := p.client.TxPipeline()
	deleted := pipe.Del(ctx, p.definitionKey(id))
	pipe.ZRem(ctx, p.indexKey(), id)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewDefinitionError("DeleteDefinition", id, persistence.ErrDefinitionNotFound)
	}

	return nil
}
