// Package store is the HTTP client for the record store that holds
// authoritative entity snapshots and match proposal records.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/avast/retry-go"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/castlebay/reconcile-go/cdc"
	"github.com/castlebay/reconcile-go/proposal"
)

const readAttempts = 3

// StatusError is a non-2xx response from the store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store returned %d: %s", e.StatusCode, e.Body)
}

// NotFound reports whether err is a store 404.
func NotFound(err error) bool {
	var status *StatusError
	return errors.As(err, &status) && status.StatusCode == http.StatusNotFound
}

func retryable(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode >= http.StatusInternalServerError
	}
	return true
}

type Client struct {
	config Config
	http   *http.Client
	log    *zerolog.Logger
}

func NewClient(config Config, log *zerolog.Logger) *Client {
	return &Client{
		config: config,
		http:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:    log,
	}
}

func (c *Client) do(ctx context.Context, method string, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode store request")
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build store request")
	}
	request.Header.Set("Authorization", "Bearer "+c.config.Token)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "store request failed")
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read store response")
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: response.StatusCode, Body: string(payload)}
	}

	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	return retry.Do(
		func() error {
			payload, err := c.do(ctx, http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			return errors.Wrap(json.Unmarshal(payload, target), "failed to decode store response")
		},
		retry.Attempts(readAttempts),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
	)
}

// GetAccount fetches the authoritative Account snapshot by id.
func (c *Client) GetAccount(ctx context.Context, id string) (*cdc.Account, error) {
	if id == "" {
		return nil, errors.New("account id is required to fetch an account")
	}

	var stored cdc.StoredAccount
	if err := c.get(ctx, "/entities/Account/"+id, &stored); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch account %s", id)
	}

	return cdc.AccountFromStoredFields(&stored), nil
}

// GetOrder fetches the authoritative Order snapshot by id.
func (c *Client) GetOrder(ctx context.Context, id string) (*cdc.Order, error) {
	if id == "" {
		return nil, errors.New("order id is required to fetch an order")
	}

	var stored cdc.StoredOrder
	if err := c.get(ctx, "/entities/Order/"+id, &stored); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch order %s", id)
	}

	return cdc.OrderFromStoredFields(&stored), nil
}

// SetAccountRequiresMapping updates the single mapping-required flag on an
// Account through the store's conditional update.
func (c *Client) SetAccountRequiresMapping(ctx context.Context, accountID string, required bool) error {
	if accountID == "" {
		return errors.New("account id is required to update an account")
	}

	body := map[string]any{
		c.config.Namespace.Field(cdc.FieldRequiresMapping): required,
	}

	if _, err := c.do(ctx, http.MethodPatch, "/entities/Account/"+accountID, body); err != nil {
		return errors.Wrapf(err, "failed to update account %s", accountID)
	}

	return nil
}

type createResult struct {
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// CreateProposal persists a new match proposal record and returns the
// store-assigned record id.
func (c *Client) CreateProposal(ctx context.Context, p *proposal.Proposal) (string, error) {
	object := c.config.Namespace.Field(proposal.ObjectName)
	payload := p.StorePayload(c.config.Namespace)

	response, err := c.do(ctx, http.MethodPost, "/records/"+object, payload)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create match proposal for account %s", p.AccountID)
	}

	var result createResult
	if err := json.Unmarshal(response, &result); err != nil {
		return "", errors.Wrap(err, "failed to decode create response")
	}
	if !result.Success {
		return "", errors.Errorf("store rejected match proposal: %v", result.Errors)
	}

	return result.ID, nil
}

// OpenProposal returns the account's open proposal record, or nil when every
// existing proposal is already resolved or terminal.
func (c *Client) OpenProposal(ctx context.Context, accountID string) (*proposal.Record, error) {
	path := "/proposals?accountId=" + url.QueryEscape(accountID)

	var records []proposal.Record
	if err := c.get(ctx, path, &records); err != nil {
		if NotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to query proposals for account %s", accountID)
	}

	for i := range records {
		status := records[i].Status
		if status == proposal.PendingMiddleware || status == proposal.PendingReview {
			return &records[i], nil
		}
	}

	return nil, nil
}

// GetProposal fetches a proposal record by store id.
func (c *Client) GetProposal(ctx context.Context, id string) (*proposal.Record, error) {
	if id == "" {
		return nil, errors.New("proposal id is required")
	}

	var record proposal.Record
	if err := c.get(ctx, "/proposals/"+id, &record); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch proposal %s", id)
	}

	return &record, nil
}

// UpdateProposal writes a resolved proposal's fields back to the store.
func (c *Client) UpdateProposal(ctx context.Context, id string, p *proposal.Proposal) error {
	if id == "" {
		return errors.New("proposal id is required")
	}

	if _, err := c.do(ctx, http.MethodPatch, "/proposals/"+id, p.ToRecord()); err != nil {
		return errors.Wrapf(err, "failed to update proposal %s", id)
	}

	return nil
}
