package identity

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClient verifies provider-issued HS256 tokens locally with the
// shared JWT secret.
type TokenClient struct {
	secret []byte
	admin  *adminClient
}

func NewTokenClient(secret string, admin *adminClient) *TokenClient {
	return &TokenClient{secret: []byte(secret), admin: admin}
}

func (c *TokenClient) Name() string {
	return "token"
}

func (c *TokenClient) Validate(_ context.Context, token string) (*Payload, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	data, err := sonic.Marshal(map[string]any(claims))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return ParsePayload(data)
}

func (c *TokenClient) UpdateMetadata(ctx context.Context, externalId string, metadata map[string]any) error {
	return c.admin.updateMetadata(ctx, externalId, metadata)
}
