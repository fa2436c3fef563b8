package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	pkghttp "github.com/go-arcade/agileboard/pkg/http"
)

// adminClient performs service-role calls against the provider.
type adminClient struct {
	client     *resty.Client
	serviceKey string
}

func newAdminClient(baseURL, serviceKey string, timeout time.Duration) *adminClient {
	if baseURL == "" || serviceKey == "" {
		return nil
	}
	return &adminClient{client: newRestyClient(baseURL, timeout), serviceKey: serviceKey}
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	return pkghttp.NewClient(baseURL, timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
}

func (a *adminClient) updateMetadata(ctx context.Context, externalId string, metadata map[string]any) error {
	if a == nil {
		return fmt.Errorf("%w: admin calls need url and serviceKey", ErrNotConfigured)
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("apikey", a.serviceKey).
		SetAuthToken(a.serviceKey).
		SetPathParam("id", externalId).
		SetBody(map[string]any{"user_metadata": metadata}).
		Put("/auth/v1/admin/users/{id}")
	if err != nil {
		return fmt.Errorf("update user metadata: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update user metadata: provider returned %d", resp.StatusCode())
	}
	return nil
}
