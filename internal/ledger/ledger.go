package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/libops/payrecon/internal/domain"
	"github.com/libops/payrecon/pkg/clients"
)

// Client talks to the library billing system's REST API. Responses are
// requested as JSON; the api key rides along as a query parameter on every
// call.
type Client struct {
	http    clients.HTTPClientI
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string, httpClient clients.HTTPClientI) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type valueDesc struct {
	Value string `json:"value"`
	Desc  string `json:"desc"`
}

type userResponse struct {
	PrimaryID string `json:"primary_id"`
	FullName  string `json:"full_name"`
}

type feeTransaction struct {
	Type                  valueDesc `json:"type"`
	Amount                float64   `json:"amount"`
	ExternalTransactionID string    `json:"external_transaction_id"`
	TransactionTime       time.Time `json:"transaction_time"`
}

type fee struct {
	ID            string           `json:"id"`
	Type          valueDesc        `json:"type"`
	Status        valueDesc        `json:"status"`
	UserPrimaryID struct {
		Value string `json:"value"`
	} `json:"user_primary_id"`
	Transactions []feeTransaction `json:"transaction"`
}

type feesResponse struct {
	Fees             []fee `json:"fee"`
	TotalRecordCount int   `json:"total_record_count"`
}

func (c *Client) GetUser(ctx context.Context, userID string) (*domain.LedgerUser, error) {
	var resp userResponse
	if err := c.get(ctx, fmt.Sprintf("/users/%s", url.PathEscape(userID)), nil, &resp); err != nil {
		return nil, err
	}
	return &domain.LedgerUser{
		PrimaryID: resp.PrimaryID,
		FullName:  resp.FullName,
	}, nil
}

func (c *Client) GetFees(ctx context.Context, userID, status string) ([]domain.Fee, error) {
	var resp feesResponse
	params := url.Values{"status": {status}}
	if err := c.get(ctx, fmt.Sprintf("/users/%s/fees", url.PathEscape(userID)), params, &resp); err != nil {
		return nil, err
	}

	fees := make([]domain.Fee, 0, len(resp.Fees))
	for _, f := range resp.Fees {
		fee := domain.Fee{
			ID:      f.ID,
			Type:    f.Type.Value,
			Status:  f.Status.Value,
			OwnerID: f.UserPrimaryID.Value,
		}
		for _, ft := range f.Transactions {
			fee.Transactions = append(fee.Transactions, domain.FeeTransaction{
				Type:                  ft.Type.Value,
				Amount:                ft.Amount,
				ExternalTransactionID: ft.ExternalTransactionID,
				TransactionTime:       ft.TransactionTime,
			})
		}
		fees = append(fees, fee)
	}
	return fees, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	status, respBody, _, err := c.http.Get(c.baseURL+path+"?"+params.Encode(), headers)
	if err != nil {
		return fmt.Errorf("ledger request %s failed: %w", path, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("ledger request %s failed: status %d: %s", path, status, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("can't parse ledger response for %s: %w", path, err)
	}
	return nil
}
