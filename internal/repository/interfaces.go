package repository

import (
	"context"

	"github.com/empezz5-crypto/mdmoney/internal/model"
)

// ScheduleRepository is the durable record of the daily notification
// schedule. Get never fails with "not found"; absence is the defaulted state.
type ScheduleRepository interface {
	Get(ctx context.Context) (model.Schedule, error)
	// Update merges the patch into the persisted document (absent fields keep
	// their value) and returns the resulting record.
	Update(ctx context.Context, patch model.SchedulePatch) (model.Schedule, error)
	// MarkSent atomically sets lastSentOn to date only if it differs, and
	// reports whether this caller won the claim. The claim is what makes the
	// daily gate safe under concurrent tick triggers.
	MarkSent(ctx context.Context, date string) (bool, error)
	// ClearSent releases a claim taken by MarkSent, restoring the previous
	// lastSentOn value. Used when dispatch fails outright after a won claim.
	ClearSent(ctx context.Context, date, previous string) error
}

// SubscriptionRepository is the durable set of push subscriptions, keyed by
// a stable id derived from the endpoint. All operations are idempotent.
type SubscriptionRepository interface {
	Add(ctx context.Context, sub model.PushSubscription) error
	ListAll(ctx context.Context) ([]model.PushSubscription, error)
	Remove(ctx context.Context, sub model.PushSubscription) error
	Count(ctx context.Context) (int, error)
}

type ShortRepository interface {
	List(ctx context.Context) ([]model.Short, error)
	Create(ctx context.Context, short *model.Short) error
	Update(ctx context.Context, id string, patch model.ShortPatch) (*model.Short, error)
	Delete(ctx context.Context, id string) (int, error)
}

type AccountRepository interface {
	ListActive(ctx context.Context) ([]model.Account, error)
	Get(ctx context.Context, id string) (*model.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
}

type TransactionRepository interface {
	List(ctx context.Context, filter model.TransactionFilter, limit int) ([]model.Transaction, error)
	// Upsert stores the transaction keyed by its bank TransactionID and
	// reports whether a new record was created.
	Upsert(ctx context.Context, tx *model.Transaction) (bool, error)
	SetCategory(ctx context.Context, id, category string) (*model.Transaction, error)
}

type BudgetRepository interface {
	// List filters by year and month; zero means "any".
	List(ctx context.Context, year, month int) ([]model.Budget, error)
	Create(ctx context.Context, budget *model.Budget) error
	Update(ctx context.Context, budget *model.Budget) (*model.Budget, error)
	Get(ctx context.Context, id string) (*model.Budget, error)
	Delete(ctx context.Context, id string) error
}
