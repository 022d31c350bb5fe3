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

type budgetRepository struct {
	client *redis.Client
}

func NewBudgetRepository(client *redis.Client) repository.BudgetRepository {
	return &budgetRepository{client: client}
}

func periodKey(year, month int, category string) string {
	return fmt.Sprintf("%04d:%02d:%s", year, month, category)
}

func (r *budgetRepository) List(ctx context.Context, year, month int) ([]model.Budget, error) {
	values, err := r.client.HVals(ctx, keyBudgets).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	budgets := make([]model.Budget, 0, len(values))
	for _, v := range values {
		var b model.Budget
		if err := json.Unmarshal([]byte(v), &b); err != nil {
			continue
		}
		if year != 0 && b.Year != year {
			continue
		}
		if month != 0 && b.Month != month {
			continue
		}
		budgets = append(budgets, b)
	}

	// Newest period first, categories alphabetical within a period.
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Year != budgets[j].Year {
			return budgets[i].Year > budgets[j].Year
		}
		if budgets[i].Month != budgets[j].Month {
			return budgets[i].Month > budgets[j].Month
		}
		return budgets[i].Category < budgets[j].Category
	})
	return budgets, nil
}

func (r *budgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	created, err := r.client.HSetNX(ctx, keyBudgetIndex, periodKey(budget.Year, budget.Month, budget.Category), budget.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to index budget: %w", err)
	}
	if !created {
		return apperrors.Conflict("budget already registered for this period and category", nil)
	}

	raw, err := json.Marshal(budget)
	if err != nil {
		return fmt.Errorf("failed to encode budget: %w", err)
	}
	if err := r.client.HSet(ctx, keyBudgets, budget.ID, raw).Err(); err != nil {
		return fmt.Errorf("failed to store budget: %w", err)
	}
	return nil
}

func (r *budgetRepository) Get(ctx context.Context, id string) (*model.Budget, error) {
	raw, err := r.client.HGet(ctx, keyBudgets, id).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound("budget", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read budget: %w", err)
	}

	var budget model.Budget
	if err := json.Unmarshal(raw, &budget); err != nil {
		return nil, fmt.Errorf("failed to decode budget: %w", err)
	}
	return &budget, nil
}

func (r *budgetRepository) Update(ctx context.Context, budget *model.Budget) (*model.Budget, error) {
	existing, err := r.Get(ctx, budget.ID)
	if err != nil {
		return nil, err
	}

	// Re-index when the unique period triple moved.
	if existing.Year != budget.Year || existing.Month != budget.Month || existing.Category != budget.Category {
		created, err := r.client.HSetNX(ctx, keyBudgetIndex, periodKey(budget.Year, budget.Month, budget.Category), budget.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to index budget: %w", err)
		}
		if !created {
			return nil, apperrors.Conflict("budget already registered for this period and category", nil)
		}
		r.client.HDel(ctx, keyBudgetIndex, periodKey(existing.Year, existing.Month, existing.Category))
	}

	raw, err := json.Marshal(budget)
	if err != nil {
		return nil, fmt.Errorf("failed to encode budget: %w", err)
	}
	if err := r.client.HSet(ctx, keyBudgets, budget.ID, raw).Err(); err != nil {
		return nil, fmt.Errorf("failed to store budget: %w", err)
	}
	return budget, nil
}

func (r *budgetRepository) Delete(ctx context.Context, id string) error {
	budget, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HDel(ctx, keyBudgets, id)
	pipe.HDel(ctx, keyBudgetIndex, periodKey(budget.Year, budget.Month, budget.Category))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}
