package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
)

// CreateAccountRequest registers a bank account to track.
type CreateAccountRequest struct {
	AccountNumber string          `json:"accountNumber" binding:"required"`
	AccountName   string          `json:"accountName" binding:"required"`
	BankCode      string          `json:"bankCode"`
	BankName      string          `json:"bankName"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}

// UpdateAccountRequest replaces the mutable account fields.
type UpdateAccountRequest struct {
	AccountName string           `json:"accountName"`
	BankCode    string           `json:"bankCode"`
	BankName    string           `json:"bankName"`
	Balance     *decimal.Decimal `json:"balance"`
	Currency    string           `json:"currency"`
}

type Service struct {
	repo repository.AccountRepository
}

func NewService(repo repository.AccountRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]model.Account, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*model.Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (*model.Account, error) {
	now := time.Now().UTC()
	account := &model.Account{
		ID:            uuid.New().String(),
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		BankCode:      req.BankCode,
		BankName:      req.BankName,
		Balance:       req.Balance,
		Currency:      req.Currency,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if account.BankCode == "" {
		account.BankCode = model.DefaultBankCode
	}
	if account.BankName == "" {
		account.BankName = model.DefaultBankName
	}
	if account.Currency == "" {
		account.Currency = model.DefaultCurrency
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateAccountRequest) (*model.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AccountName != "" {
		account.AccountName = req.AccountName
	}
	if req.BankCode != "" {
		account.BankCode = req.BankCode
	}
	if req.BankName != "" {
		account.BankName = req.BankName
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}
	if req.Currency != "" {
		account.Currency = req.Currency
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Deactivate soft-deletes: the account drops out of listings but its
// transaction history stays intact.
func (s *Service) Deactivate(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	account.IsActive = false
	account.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
