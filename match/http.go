package match

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPClient queries a matching service over HTTP. The response body is
// returned verbatim as the opaque matches payload.
type HTTPClient struct {
	base  string
	token string
	http  *http.Client
	log   *zerolog.Logger
}

func NewHTTPClient(baseURL string, token string, log *zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		base:  baseURL,
		token: token,
		http:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:   log,
	}
}

func (c *HTTPClient) LikelyMatches(ctx context.Context, query Query) (string, error) {
	c.log.Debug().
		Str("accountId", query.AccountID).
		Str("accountName", query.Name).
		Str("postalCode", query.PostalCode).
		Str("phone", query.Phone).
		Msg("requesting likely identity matches")

	body, err := json.Marshal(query)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode match query")
	}

	url := fmt.Sprintf("%s/customers/likely-matches", c.base)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to build match request")
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return "", errors.Wrap(err, "match service request failed")
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read match response")
	}

	if response.StatusCode != http.StatusOK {
		return "", errors.Errorf("match service returned %d: %s", response.StatusCode, payload)
	}

	return string(payload), nil
}
