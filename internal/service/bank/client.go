package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/empezz5-crypto/mdmoney/internal/config"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

const tokenCacheKey = "access_token"

// Client wraps the KB open banking REST API: client-credentials OAuth plus
// account list, balance, and transaction history lookups. Access tokens are
// cached until shortly before expiry.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	tokens       *gocache.Cache
}

func NewClient(cfg config.BankConfig, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		tokens:       gocache.New(cfg.TokenTTL, cfg.TokenTTL/2),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// BankAccount is one account as reported by the bank's list endpoint.
type BankAccount struct {
	AccountNo   string `json:"account_no"`
	AccountName string `json:"account_name"`
	BankCode    string `json:"bank_code"`
}

type accountListResponse struct {
	Accounts []BankAccount `json:"account_list"`
}

// Balance is the bank's balance snapshot for one account.
type Balance struct {
	AccountNo string `json:"account_no"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
}

// BankTransaction is one history entry. TransactionType is the bank's code:
// "1" for deposits, anything else is a withdrawal.
type BankTransaction struct {
	TransactionID   string `json:"transaction_id"`
	TransactionDate string `json:"transaction_date"`
	TransactionType string `json:"transaction_type"`
	Amount          string `json:"amount"`
	BalanceAfter    string `json:"balance_after"`
	Description     string `json:"description"`
	Counterparty    string `json:"counterparty"`
}

type transactionHistoryResponse struct {
	Transactions []BankTransaction `json:"transaction_list"`
}

// AccessToken returns a cached token or requests a fresh one.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(tokenCacheKey); ok {
		return token.(string), nil
	}

	if c.clientID == "" || c.clientSecret == "" {
		return "", apperrors.Unavailable("bank API credentials are missing", nil)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/2.0/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", fmt.Errorf("failed to obtain bank access token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("bank token response is empty")
	}

	c.tokens.SetDefault(tokenCacheKey, tok.AccessToken)
	return tok.AccessToken, nil
}

func (c *Client) ListAccounts(ctx context.Context, token string) ([]BankAccount, error) {
	req, err := c.apiRequest(ctx, token, "/v1/account/list", nil)
	if err != nil {
		return nil, err
	}

	var resp accountListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return resp.Accounts, nil
}

func (c *Client) GetBalance(ctx context.Context, token, accountNo string) (*Balance, error) {
	req, err := c.apiRequest(ctx, token, "/v1/account/balance", url.Values{"account_no": {accountNo}})
	if err != nil {
		return nil, err
	}

	var balance Balance
	if err := c.do(req, &balance); err != nil {
		return nil, fmt.Errorf("failed to read account balance: %w", err)
	}
	return &balance, nil
}

// GetTransactions lists history between startDate and endDate, both
// "YYYY-MM-DD".
func (c *Client) GetTransactions(ctx context.Context, token, accountNo, startDate, endDate string) ([]BankTransaction, error) {
	req, err := c.apiRequest(ctx, token, "/v1/account/transaction", url.Values{
		"account_no": {accountNo},
		"start_date": {startDate},
		"end_date":   {endDate},
	})
	if err != nil {
		return nil, err
	}

	var resp transactionHistoryResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to read transaction history: %w", err)
	}
	return resp.Transactions, nil
}

func (c *Client) apiRequest(ctx context.Context, token, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build bank request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bank API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
