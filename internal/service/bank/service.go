package bank

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
)

// SyncResult reports one completed account sync.
type SyncResult struct {
	Account          *model.Account `json:"account"`
	TransactionCount int            `json:"transactionCount"`
}

// Service syncs locally registered accounts against the bank: balance
// refresh plus a rolling transaction-history window upserted by the bank's
// transaction id.
type Service struct {
	client       *Client
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	syncDays     int
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

func NewService(client *Client, accounts repository.AccountRepository, transactions repository.TransactionRepository, syncDays int, logger zerolog.Logger, m *metrics.Metrics) *Service {
	if syncDays <= 0 {
		syncDays = 90
	}
	return &Service{
		client:       client,
		accounts:     accounts,
		transactions: transactions,
		syncDays:     syncDays,
		logger:       logger,
		metrics:      m,
	}
}

// ListRemoteAccounts returns the live account list from the bank.
func (s *Service) ListRemoteAccounts(ctx context.Context) ([]BankAccount, error) {
	token, err := s.client.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListAccounts(ctx, token)
}

// Sync refreshes one registered account from the bank. The account must
// already exist locally.
func (s *Service) Sync(ctx context.Context, accountNumber string) (*SyncResult, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	token, err := s.client.AccessToken(ctx)
	if err != nil {
		s.metrics.BankSyncTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	balance, err := s.client.GetBalance(ctx, token, accountNumber)
	if err != nil {
		s.metrics.BankSyncTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.syncDays)
	bankTxs, err := s.client.GetTransactions(ctx, token, accountNumber,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		s.metrics.BankSyncTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	count := 0
	for _, btx := range bankTxs {
		tx, err := s.toTransaction(accountNumber, btx)
		if err != nil {
			s.logger.Warn().Err(err).Str("transaction_id", btx.TransactionID).Msg("skipping malformed bank transaction")
			continue
		}
		if _, err := s.transactions.Upsert(ctx, tx); err != nil {
			s.metrics.BankSyncTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		s.metrics.BankSyncTransactions.Inc()
		count++
	}

	if amount, err := decimal.NewFromString(balance.Balance); err == nil {
		account.Balance = amount
	}
	now := time.Now().UTC()
	account.LastSyncDate = &now
	account.UpdatedAt = now
	if err := s.accounts.Update(ctx, account); err != nil {
		s.metrics.BankSyncTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.metrics.BankSyncTotal.WithLabelValues("ok").Inc()
	s.logger.Info().
		Str("account", accountNumber).
		Int("transactions", count).
		Msg("account synced")
	return &SyncResult{Account: account, TransactionCount: count}, nil
}

func (s *Service) toTransaction(accountNumber string, btx BankTransaction) (*model.Transaction, error) {
	date, err := time.Parse("2006-01-02", btx.TransactionDate)
	if err != nil {
		// Some endpoints return full timestamps.
		date, err = time.Parse(time.RFC3339, btx.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("unparseable transaction date %q", btx.TransactionDate)
		}
	}

	amount, err := decimal.NewFromString(btx.Amount)
	if err != nil {
		return nil, fmt.Errorf("unparseable amount %q", btx.Amount)
	}
	balanceAfter, err := decimal.NewFromString(btx.BalanceAfter)
	if err != nil {
		return nil, fmt.Errorf("unparseable balance %q", btx.BalanceAfter)
	}

	txType := model.TxTypeWithdrawal
	if btx.TransactionType == "1" {
		txType = model.TxTypeDeposit
	}

	return &model.Transaction{
		AccountNumber:   accountNumber,
		TransactionID:   btx.TransactionID,
		TransactionDate: date,
		TransactionType: txType,
		Amount:          amount,
		BalanceAfter:    balanceAfter,
		Description:     btx.Description,
		Counterparty:    btx.Counterparty,
		Category:        model.CategoryUncategorized,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
