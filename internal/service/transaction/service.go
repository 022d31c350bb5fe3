package transaction

import (
	"context"
	"sort"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
)

// listLimit caps a single listing, matching the dashboard's page size.
const listLimit = 1000

type Service struct {
	repo repository.TransactionRepository
}

func NewService(repo repository.TransactionRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	return s.repo.List(ctx, filter, listLimit)
}

// Summary groups transactions by (category, type) with totals and counts,
// largest total first.
func (s *Service) Summary(ctx context.Context, filter model.TransactionFilter) ([]model.TransactionSummary, error) {
	txs, err := s.repo.List(ctx, filter, 0)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		summary model.TransactionSummary
	}
	buckets := make(map[[2]string]*bucket)
	for _, tx := range txs {
		key := [2]string{tx.Category, tx.TransactionType}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{summary: model.TransactionSummary{
				Category:        tx.Category,
				TransactionType: tx.TransactionType,
			}}
			buckets[key] = b
		}
		b.summary.TotalAmount = b.summary.TotalAmount.Add(tx.Amount)
		b.summary.Count++
	}

	summaries := make([]model.TransactionSummary, 0, len(buckets))
	for _, b := range buckets {
		summaries = append(summaries, b.summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalAmount.GreaterThan(summaries[j].TotalAmount)
	})
	return summaries, nil
}

func (s *Service) SetCategory(ctx context.Context, id, category string) (*model.Transaction, error) {
	return s.repo.SetCategory(ctx, id, category)
}
