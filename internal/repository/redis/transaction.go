package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type transactionRepository struct {
	client *redis.Client
}

func NewTransactionRepository(client *redis.Client) repository.TransactionRepository {
	return &transactionRepository{client: client}
}

func (r *transactionRepository) List(ctx context.Context, filter model.TransactionFilter, limit int) ([]model.Transaction, error) {
	values, err := r.client.HVals(ctx, keyTransactions).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]model.Transaction, 0, len(values))
	for _, v := range values {
		var tx model.Transaction
		if err := json.Unmarshal([]byte(v), &tx); err != nil {
			continue
		}
		if matches(tx, filter) {
			txs = append(txs, tx)
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].TransactionDate.After(txs[j].TransactionDate)
	})
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func matches(tx model.Transaction, f model.TransactionFilter) bool {
	if f.AccountNumber != "" && tx.AccountNumber != f.AccountNumber {
		return false
	}
	if f.StartDate != nil && tx.TransactionDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.TransactionDate.After(*f.EndDate) {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.TransactionType != "" && tx.TransactionType != f.TransactionType {
		return false
	}
	return true
}

func (r *transactionRepository) Upsert(ctx context.Context, tx *model.Transaction) (bool, error) {
	id, err := r.client.HGet(ctx, keyTxIndex, tx.TransactionID).Result()
	created := false
	switch {
	case err == redis.Nil:
		id = uuid.New().String()
		created = true
	case err != nil:
		return false, fmt.Errorf("failed to resolve transaction id: %w", err)
	default:
		// Existing record keeps any category set by the user.
		raw, err := r.client.HGet(ctx, keyTransactions, id).Bytes()
		if err == nil {
			var existing model.Transaction
			if json.Unmarshal(raw, &existing) == nil && existing.Category != "" {
				tx.Category = existing.Category
			}
		}
	}
	tx.ID = id

	raw, err := json.Marshal(tx)
	if err != nil {
		return false, fmt.Errorf("failed to encode transaction: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, keyTxIndex, tx.TransactionID, id)
	pipe.HSet(ctx, keyTransactions, id, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to store transaction: %w", err)
	}
	return created, nil
}

func (r *transactionRepository) SetCategory(ctx context.Context, id, category string) (*model.Transaction, error) {
	raw, err := r.client.HGet(ctx, keyTransactions, id).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound("transaction", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}

	var tx model.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	tx.Category = category

	updated, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	if err := r.client.HSet(ctx, keyTransactions, id, updated).Err(); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}
	return &tx, nil
}
