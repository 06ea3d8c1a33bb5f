package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/libops/payrecon/internal/domain"
	"github.com/libops/payrecon/pkg/clients"
)

// PageSize is the gateway's transaction listing page size. Page offsets are
// 1-based.
const PageSize = 1000

// Client is a typed client for the payment gateway's JSON API: one method per
// logical operation, all sharing a single request envelope format.
type Client struct {
	http clients.HTTPClientI
	url  string
	auth merchantAuthentication
}

func New(url, apiLogin, transactionKey string, httpClient clients.HTTPClientI) *Client {
	return &Client{
		http: httpClient,
		url:  url,
		auth: merchantAuthentication{Name: apiLogin, TransactionKey: transactionKey},
	}
}

type merchantAuthentication struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type messageEntry struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type messages struct {
	ResultCode string         `json:"resultCode"`
	Message    []messageEntry `json:"message"`
}

// APIError is the gateway's explicit error envelope, distinct from transport
// failures and from empty results.
type APIError struct {
	Messages []messageEntry
}

func (e *APIError) Error() string {
	parts := make([]string, len(e.Messages))
	for i, m := range e.Messages {
		parts[i] = fmt.Sprintf("%s: %s", m.Code, m.Text)
	}
	return "gateway API error: " + strings.Join(parts, "; ")
}

type responseEnvelope struct {
	Messages messages `json:"messages"`
}

func (r responseEnvelope) result() messages { return r.Messages }

type apiResponse interface {
	result() messages
}

type paging struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type settledBatchListRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	IncludeStatistics      bool                   `json:"includeStatistics"`
	FirstSettlementDate    time.Time              `json:"firstSettlementDate"`
	LastSettlementDate     time.Time              `json:"lastSettlementDate"`
}

type batchEntry struct {
	BatchID           string    `json:"batchId"`
	SettlementTimeUTC time.Time `json:"settlementTimeUTC"`
	SettlementState   string    `json:"settlementState"`
}

type settledBatchListResponse struct {
	responseEnvelope
	BatchList []batchEntry `json:"batchList"`
}

type transactionListRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	BatchID                string                 `json:"batchId"`
	Paging                 paging                 `json:"paging"`
}

type transactionEntry struct {
	TransID           string    `json:"transId"`
	SubmitTimeUTC     time.Time `json:"submitTimeUTC"`
	TransactionStatus string    `json:"transactionStatus"`
}

type transactionListResponse struct {
	responseEnvelope
	Transactions        []transactionEntry `json:"transactions"`
	TotalNumInResultSet int                `json:"totalNumInResultSet"`
}

type transactionDetailsRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	TransID                string                 `json:"transId"`
}

type lineItem struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
}

type transactionDetails struct {
	TransID           string     `json:"transId"`
	TransactionType   string     `json:"transactionType"`
	TransactionStatus string     `json:"transactionStatus"`
	SubmitTimeUTC     time.Time  `json:"submitTimeUTC"`
	AuthAmount        float64    `json:"authAmount"`
	Customer          *struct {
		ID string `json:"id"`
	} `json:"customer"`
	Order struct {
		InvoiceNumber string `json:"invoiceNumber"`
		Description   string `json:"description"`
	} `json:"order"`
	BillTo struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"billTo"`
	LineItems []lineItem  `json:"lineItems"`
	Batch     *batchEntry `json:"batch"`
}

type transactionDetailsResponse struct {
	responseEnvelope
	Transaction transactionDetails `json:"transaction"`
}

// ListSettledBatches returns the batches settled inside [from, to]. The range
// must not exceed the gateway's 31-day window limit; callers split wider
// ranges first. An empty list is a valid result, not an error.
func (c *Client) ListSettledBatches(ctx context.Context, from, to time.Time) ([]domain.SettlementBatch, error) {
	req := settledBatchListRequest{
		MerchantAuthentication: c.auth,
		FirstSettlementDate:    from,
		LastSettlementDate:     to,
	}
	var resp settledBatchListResponse
	if err := c.do(ctx, "getSettledBatchListRequest", req, &resp); err != nil {
		return nil, err
	}

	batches := make([]domain.SettlementBatch, 0, len(resp.BatchList))
	for _, b := range resp.BatchList {
		batches = append(batches, domain.SettlementBatch{
			ID:              b.BatchID,
			SettlementTime:  b.SettlementTimeUTC,
			SettlementState: b.SettlementState,
		})
	}
	return batches, nil
}

// ListBatchTransactions returns one page of a batch's transactions plus the
// gateway's count for the page's result set.
func (c *Client) ListBatchTransactions(ctx context.Context, batchID string, page int) ([]domain.TransactionSummary, int, error) {
	req := transactionListRequest{
		MerchantAuthentication: c.auth,
		BatchID:                batchID,
		Paging:                 paging{Limit: PageSize, Offset: page},
	}
	var resp transactionListResponse
	if err := c.do(ctx, "getTransactionListRequest", req, &resp); err != nil {
		return nil, 0, err
	}

	summaries := make([]domain.TransactionSummary, 0, len(resp.Transactions))
	for _, t := range resp.Transactions {
		summaries = append(summaries, domain.TransactionSummary{
			ID:         t.TransID,
			SubmitTime: t.SubmitTimeUTC,
			Status:     t.TransactionStatus,
		})
	}
	return summaries, resp.TotalNumInResultSet, nil
}

func (c *Client) GetTransactionDetail(ctx context.Context, transactionID string) (*domain.RawTransaction, error) {
	req := transactionDetailsRequest{
		MerchantAuthentication: c.auth,
		TransID:                transactionID,
	}
	var resp transactionDetailsResponse
	if err := c.do(ctx, "getTransactionDetailsRequest", req, &resp); err != nil {
		return nil, err
	}

	d := resp.Transaction
	raw := &domain.RawTransaction{
		ID:         d.TransID,
		Type:       d.TransactionType,
		Status:     d.TransactionStatus,
		SubmitTime: d.SubmitTimeUTC,
		AuthAmount: d.AuthAmount,
		Order: domain.Order{
			InvoiceNumber: d.Order.InvoiceNumber,
			Description:   d.Order.Description,
		},
		BillTo: domain.BillTo{
			FirstName: d.BillTo.FirstName,
			LastName:  d.BillTo.LastName,
		},
	}
	if d.Customer != nil {
		raw.CustomerID = d.Customer.ID
	}
	if d.Batch != nil {
		raw.BatchID = d.Batch.BatchID
	}
	for _, li := range d.LineItems {
		raw.LineItems = append(raw.LineItems, domain.LineItem{
			ID:        li.ItemID,
			Name:      li.Name,
			UnitPrice: li.UnitPrice,
		})
	}
	return raw, nil
}

// do posts a single-key request envelope and decodes the response, folding
// the gateway's several error signals into one place: transport errors,
// non-200 statuses, and resultCode=Error envelopes all come back as errors.
func (c *Client) do(ctx context.Context, requestKey string, payload any, out apiResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{requestKey: payload})
	if err != nil {
		return fmt.Errorf("can't marshal %s: %w", requestKey, err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	status, respBody, _, err := c.http.Post(c.url, headers, body)
	if err != nil {
		return fmt.Errorf("%s failed: %w", requestKey, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s failed: unexpected status code %d", requestKey, status)
	}

	// the gateway prefixes responses with a UTF-8 BOM
	respBody = []byte(strings.TrimPrefix(string(respBody), "\ufeff"))
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("can't parse %s response: %w", requestKey, err)
	}

	if result := out.result(); result.ResultCode != "Ok" {
		return &APIError{Messages: result.Message}
	}
	return nil
}
