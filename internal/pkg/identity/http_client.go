package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient asks the provider's user endpoint to validate each token.
type HTTPClient struct {
	client  *resty.Client
	anonKey string
	admin   *adminClient
}

func NewHTTPClient(baseURL, anonKey string, admin *adminClient, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  newRestyClient(baseURL, timeout),
		anonKey: anonKey,
		admin:   admin,
	}
}

func (c *HTTPClient) Name() string {
	return "http"
}

func (c *HTTPClient) Validate(ctx context.Context, token string) (*Payload, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("apikey", c.anonKey).
		SetAuthToken(token).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.IsError():
		return nil, fmt.Errorf("identity provider returned %d", code)
	}
	return ParsePayload(resp.Body())
}

func (c *HTTPClient) UpdateMetadata(ctx context.Context, externalId string, metadata map[string]any) error {
	return c.admin.updateMetadata(ctx, externalId, metadata)
}
