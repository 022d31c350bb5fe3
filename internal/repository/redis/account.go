package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type accountRepository struct {
	client *redis.Client
}

func NewAccountRepository(client *redis.Client) repository.AccountRepository {
	return &accountRepository{client: client}
}

func (r *accountRepository) ListActive(ctx context.Context) ([]model.Account, error) {
	values, err := r.client.HVals(ctx, keyAccounts).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]model.Account, 0, len(values))
	for _, v := range values {
		var a model.Account
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			continue
		}
		if a.IsActive {
			accounts = append(accounts, a)
		}
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*model.Account, error) {
	raw, err := r.client.HGet(ctx, keyAccounts, id).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound("account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}

	var account model.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	id, err := r.client.HGet(ctx, keyAccountIndex, accountNumber).Result()
	if err == redis.Nil {
		return nil, apperrors.NotFound("account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account number: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	// HSetNX on the number index doubles as the uniqueness check.
	created, err := r.client.HSetNX(ctx, keyAccountIndex, account.AccountNumber, account.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to index account: %w", err)
	}
	if !created {
		return apperrors.Conflict("account number already registered", nil)
	}

	raw, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	if err := r.client.HSet(ctx, keyAccounts, account.ID, raw).Err(); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	exists, err := r.client.HExists(ctx, keyAccounts, account.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return apperrors.NotFound("account", nil)
	}

	raw, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	if err := r.client.HSet(ctx, keyAccounts, account.ID, raw).Err(); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	return nil
}
