package bank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empezz5-crypto/mdmoney/internal/config"
	"github.com/empezz5-crypto/mdmoney/internal/model"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
)

type fakeAccountRepo struct {
	accounts map[string]*model.Account
	updated  *model.Account
}

func (f *fakeAccountRepo) ListActive(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccountRepo) Get(ctx context.Context, id string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.NotFound("account", nil)
}

func (f *fakeAccountRepo) GetByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	a, ok := f.accounts[accountNumber]
	if !ok {
		return nil, apperrors.NotFound("account", nil)
	}
	return a, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *model.Account) error {
	f.accounts[account.AccountNumber] = account
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *model.Account) error {
	f.accounts[account.AccountNumber] = account
	f.updated = account
	return nil
}

type fakeTxRepo struct {
	upserts []model.Transaction
}

func (f *fakeTxRepo) List(ctx context.Context, filter model.TransactionFilter, limit int) ([]model.Transaction, error) {
	return nil, nil
}

func (f *fakeTxRepo) Upsert(ctx context.Context, tx *model.Transaction) (bool, error) {
	f.upserts = append(f.upserts, *tx)
	return true, nil
}

func (f *fakeTxRepo) SetCategory(ctx context.Context, id, category string) (*model.Transaction, error) {
	return nil, apperrors.NotFound("transaction", nil)
}

// newBankServer mocks the open banking API: token, balance, history.
func newBankServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/2.0/token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.FormValue("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})
	mux.HandleFunc("/v1/account/balance", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"account_no": r.URL.Query().Get("account_no"),
			"balance":    "1500000.50",
			"currency":   "KRW",
		})
	})
	mux.HandleFunc("/v1/account/transaction", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.URL.Query().Get("start_date"))
		require.NotEmpty(t, r.URL.Query().Get("end_date"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction_list": []map[string]string{
				{
					"transaction_id":   "tx-1",
					"transaction_date": "2026-08-30",
					"transaction_type": "1",
					"amount":           "300000",
					"balance_after":    "1500000.50",
					"description":      "급여",
					"counterparty":     "회사",
				},
				{
					"transaction_id":   "tx-2",
					"transaction_date": "2026-08-31",
					"transaction_type": "2",
					"amount":           "12000",
					"balance_after":    "1488000.50",
					"description":      "점심",
					"counterparty":     "식당",
				},
				{
					// Malformed amount: skipped, not fatal.
					"transaction_id":   "tx-3",
					"transaction_date": "2026-08-31",
					"transaction_type": "2",
					"amount":           "not-a-number",
					"balance_after":    "1488000.50",
				},
			},
		})
	})
	return httptest.NewServer(mux)
}

func newTestService(t *testing.T, baseURL string, accounts *fakeAccountRepo, txs *fakeTxRepo) *Service {
	t.Helper()
	client := NewClient(config.BankConfig{
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
		TokenTTL: time.Minute,
	}, "id", "secret")
	return NewService(client, accounts, txs, 90, zerolog.Nop(), metrics.NewWith("test", prometheus.NewRegistry()))
}

func TestSyncUpsertsHistoryAndRefreshesBalance(t *testing.T) {
	server := newBankServer(t)
	defer server.Close()

	accounts := &fakeAccountRepo{accounts: map[string]*model.Account{
		"110-123": {ID: "a1", AccountNumber: "110-123", Balance: decimal.Zero, IsActive: true},
	}}
	txs := &fakeTxRepo{}
	svc := newTestService(t, server.URL, accounts, txs)

	result, err := svc.Sync(context.Background(), "110-123")

	require.NoError(t, err)
	assert.Equal(t, 2, result.TransactionCount, "malformed entries are skipped")
	require.Len(t, txs.upserts, 2)

	deposit := txs.upserts[0]
	assert.Equal(t, "tx-1", deposit.TransactionID)
	assert.Equal(t, model.TxTypeDeposit, deposit.TransactionType)
	assert.Equal(t, model.CategoryUncategorized, deposit.Category)
	assert.True(t, deposit.Amount.Equal(decimal.NewFromInt(300000)))

	withdrawal := txs.upserts[1]
	assert.Equal(t, model.TxTypeWithdrawal, withdrawal.TransactionType)

	require.NotNil(t, accounts.updated)
	assert.Equal(t, "1500000.5", accounts.updated.Balance.String())
	assert.NotNil(t, accounts.updated.LastSyncDate)
}

func TestSyncUnregisteredAccount(t *testing.T) {
	server := newBankServer(t)
	defer server.Close()

	accounts := &fakeAccountRepo{accounts: map[string]*model.Account{}}
	svc := newTestService(t, server.URL, accounts, &fakeTxRepo{})

	_, err := svc.Sync(context.Background(), "999-000")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAccessTokenRequiresCredentials(t *testing.T) {
	client := NewClient(config.BankConfig{
		BaseURL:  "http://localhost:0",
		Timeout:  time.Second,
		TokenTTL: time.Minute,
	}, "", "")

	_, err := client.AccessToken(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
}

func TestAccessTokenIsCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	}))
	defer server.Close()

	client := NewClient(config.BankConfig{
		BaseURL:  server.URL,
		Timeout:  time.Second,
		TokenTTL: time.Minute,
	}, "id", "secret")

	for i := 0; i < 3; i++ {
		token, err := client.AccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	}
	assert.Equal(t, 1, calls)
}
