package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/empezz5-crypto/mdmoney/internal/config"
)

// Key layout. Everything is a JSON document: one singleton schedule string,
// the rest are hashes of id -> document.
const (
	keySchedule      = "push:schedule:default"
	keySubscriptions = "push:subscriptions"
	keyShorts        = "shorts"
	keyAccounts      = "accounts"
	keyAccountIndex  = "accounts:by_number"
	keyTransactions  = "transactions"
	keyTxIndex       = "transactions:by_txid"
	keyBudgets       = "budgets"
	keyBudgetIndex   = "budgets:by_period"
)

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = cfg.MaxRetries
	opts.MinRetryBackoff = cfg.RetryBackoff
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
