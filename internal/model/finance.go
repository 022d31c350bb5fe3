package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account defaults for the KB-centric deployment.
const (
	DefaultBankCode = "004"
	DefaultBankName = "KB국민은행"
	DefaultCurrency = "KRW"
)

// Transaction types as recorded by the bank.
const (
	TxTypeDeposit    = "입금"
	TxTypeWithdrawal = "출금"
	TxTypeTransfer   = "이체"
)

// Transaction categories; uncategorized is the default.
const (
	CategoryUncategorized = "미분류"
)

// Account is one registered bank account.
type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	BankCode      string          `json:"bankCode"`
	BankName      string          `json:"bankName"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	IsActive      bool            `json:"isActive"`
	LastSyncDate  *time.Time      `json:"lastSyncDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Transaction is one bank transaction, upserted by TransactionID during sync.
type Transaction struct {
	ID              string          `json:"id"`
	AccountNumber   string          `json:"accountNumber"`
	TransactionID   string          `json:"transactionId"`
	TransactionDate time.Time       `json:"transactionDate"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	Description     string          `json:"description"`
	Counterparty    string          `json:"counterparty"`
	Category        string          `json:"category"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TransactionFilter narrows transaction listings. Zero values mean "any".
type TransactionFilter struct {
	AccountNumber   string
	StartDate       *time.Time
	EndDate         *time.Time
	Category        string
	TransactionType string
}

// TransactionSummary is one (category, type) aggregation bucket.
type TransactionSummary struct {
	Category        string          `json:"category"`
	TransactionType string          `json:"transactionType"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Count           int             `json:"count"`
}

// Budget is one monthly budget line, unique per (year, month, category).
type Budget struct {
	ID             string          `json:"id"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Category       string          `json:"category"`
	BudgetedAmount decimal.Decimal `json:"budgetedAmount"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// BudgetAnalysis is a budget line joined with the month's withdrawal spend.
type BudgetAnalysis struct {
	Budget
	SpentAmount      decimal.Decimal `json:"spentAmount"`
	RemainingAmount  decimal.Decimal `json:"remainingAmount"`
	UsageRate        float64         `json:"usageRate"`
	TransactionCount int             `json:"transactionCount"`
}
