package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type shortRepository struct {
	client *redis.Client
}

func NewShortRepository(client *redis.Client) repository.ShortRepository {
	return &shortRepository{client: client}
}

func (r *shortRepository) List(ctx context.Context) ([]model.Short, error) {
	values, err := r.client.HVals(ctx, keyShorts).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list shorts: %w", err)
	}

	shorts := make([]model.Short, 0, len(values))
	for _, v := range values {
		var s model.Short
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			continue
		}
		shorts = append(shorts, s)
	}

	sort.Slice(shorts, func(i, j int) bool {
		return shorts[i].CreatedAt.After(shorts[j].CreatedAt)
	})
	return shorts, nil
}

func (r *shortRepository) Create(ctx context.Context, short *model.Short) error {
	raw, err := json.Marshal(short)
	if err != nil {
		return fmt.Errorf("failed to encode short: %w", err)
	}
	if err := r.client.HSet(ctx, keyShorts, short.ID, raw).Err(); err != nil {
		return fmt.Errorf("failed to store short: %w", err)
	}
	return nil
}

func (r *shortRepository) Update(ctx context.Context, id string, patch model.ShortPatch) (*model.Short, error) {
	raw, err := r.client.HGet(ctx, keyShorts, id).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound("short", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read short: %w", err)
	}

	var short model.Short
	if err := json.Unmarshal(raw, &short); err != nil {
		return nil, fmt.Errorf("failed to decode short: %w", err)
	}

	if patch.Topic != nil {
		short.Topic = *patch.Topic
	}
	if patch.Subtopic != nil {
		short.Subtopic = *patch.Subtopic
	}
	if patch.Hook != nil {
		short.Hook = *patch.Hook
	}
	if patch.Notes != nil {
		short.Notes = *patch.Notes
	}
	if patch.Status != nil {
		short.Status = *patch.Status
	}
	short.UpdatedAt = time.Now().UTC()

	updated, err := json.Marshal(short)
	if err != nil {
		return nil, fmt.Errorf("failed to encode short: %w", err)
	}
	if err := r.client.HSet(ctx, keyShorts, id, updated).Err(); err != nil {
		return nil, fmt.Errorf("failed to store short: %w", err)
	}
	return &short, nil
}

// Delete removes the item and reports how many records were removed.
// Deleting an absent id is not an error; it reports zero.
func (r *shortRepository) Delete(ctx context.Context, id string) (int, error) {
	n, err := r.client.HDel(ctx, keyShorts, id).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete short: %w", err)
	}
	return int(n), nil
}
