package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
)

type subscriptionRepository struct {
	client *redis.Client
}

func NewSubscriptionRepository(client *redis.Client) repository.SubscriptionRepository {
	return &subscriptionRepository{client: client}
}

// SubscriptionID derives the stable hash id for a push endpoint, so
// re-subscribing the same endpoint overwrites instead of duplicating.
func SubscriptionID(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return hex.EncodeToString(sum[:])
}

func (r *subscriptionRepository) Add(ctx context.Context, sub model.PushSubscription) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	if err := r.client.HSet(ctx, keySubscriptions, SubscriptionID(sub.Endpoint), raw).Err(); err != nil {
		return fmt.Errorf("failed to store subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) ListAll(ctx context.Context) ([]model.PushSubscription, error) {
	values, err := r.client.HVals(ctx, keySubscriptions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs := make([]model.PushSubscription, 0, len(values))
	for _, v := range values {
		var sub model.PushSubscription
		if err := json.Unmarshal([]byte(v), &sub); err != nil {
			// A corrupt entry should not take the whole fan-out down.
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *subscriptionRepository) Remove(ctx context.Context, sub model.PushSubscription) error {
	if err := r.client.HDel(ctx, keySubscriptions, SubscriptionID(sub.Endpoint)).Err(); err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.HLen(ctx, keySubscriptions).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return int(n), nil
}
