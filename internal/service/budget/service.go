package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
)

// CreateBudgetRequest registers one monthly budget line.
type CreateBudgetRequest struct {
	Year           int             `json:"year" binding:"required"`
	Month          int             `json:"month" binding:"required,min=1,max=12"`
	Category       string          `json:"category" binding:"required"`
	BudgetedAmount decimal.Decimal `json:"budgetedAmount" binding:"required"`
	Description    string          `json:"description"`
}

// UpdateBudgetRequest replaces mutable budget fields; zero values keep the
// stored value.
type UpdateBudgetRequest struct {
	Year           int              `json:"year"`
	Month          int              `json:"month"`
	Category       string           `json:"category"`
	BudgetedAmount *decimal.Decimal `json:"budgetedAmount"`
	Description    *string          `json:"description"`
}

type Service struct {
	budgets      repository.BudgetRepository
	transactions repository.TransactionRepository
}

func NewService(budgets repository.BudgetRepository, transactions repository.TransactionRepository) *Service {
	return &Service{budgets: budgets, transactions: transactions}
}

func (s *Service) List(ctx context.Context, year, month int) ([]model.Budget, error) {
	return s.budgets.List(ctx, year, month)
}

func (s *Service) Create(ctx context.Context, req CreateBudgetRequest) (*model.Budget, error) {
	now := time.Now().UTC()
	budget := &model.Budget{
		ID:             uuid.New().String(),
		Year:           req.Year,
		Month:          req.Month,
		Category:       req.Category,
		BudgetedAmount: req.BudgetedAmount,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateBudgetRequest) (*model.Budget, error) {
	budget, err := s.budgets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Year != 0 {
		budget.Year = req.Year
	}
	if req.Month != 0 {
		budget.Month = req.Month
	}
	if req.Category != "" {
		budget.Category = req.Category
	}
	if req.BudgetedAmount != nil {
		budget.BudgetedAmount = *req.BudgetedAmount
	}
	if req.Description != nil {
		budget.Description = *req.Description
	}
	budget.UpdatedAt = time.Now().UTC()

	return s.budgets.Update(ctx, budget)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.budgets.Delete(ctx, id)
}

// Analyze joins each budget line of the month with the month's withdrawal
// transactions in the same category: spent, remaining, usage rate, count.
func (s *Service) Analyze(ctx context.Context, year, month int) ([]model.BudgetAnalysis, error) {
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	budgets, err := s.budgets.List(ctx, year, month)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	txs, err := s.transactions.List(ctx, model.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
	}, 0)
	if err != nil {
		return nil, err
	}

	analyses := make([]model.BudgetAnalysis, 0, len(budgets))
	for _, b := range budgets {
		spent := decimal.Zero
		count := 0
		for _, tx := range txs {
			if tx.Category == b.Category && tx.TransactionType == model.TxTypeWithdrawal {
				spent = spent.Add(tx.Amount)
				count++
			}
		}

		usage := 0.0
		if !b.BudgetedAmount.IsZero() {
			rate, _ := spent.Div(b.BudgetedAmount).Mul(decimal.NewFromInt(100)).Float64()
			usage = rate
		}

		analyses = append(analyses, model.BudgetAnalysis{
			Budget:           b,
			SpentAmount:      spent,
			RemainingAmount:  b.BudgetedAmount.Sub(spent),
			UsageRate:        usage,
			TransactionCount: count,
		})
	}
	return analyses, nil
}
