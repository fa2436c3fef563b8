package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/20
 * @file: payload.go
 * @description: identity provider user payload
 */

var ErrInvalidPayload = errors.New("invalid identity payload")

// Payload is the normalized user returned by a provider.
type Payload struct {
	Id       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Role returns metadata.role, or "" when absent.
func (p *Payload) Role() string {
	return p.metaString("role")
}

// Names returns the first and last name from metadata. A single full name
// is split on its first space.
func (p *Payload) Names() (string, string) {
	first, last := p.metaString("first_name"), p.metaString("last_name")
	if first != "" || last != "" {
		return first, last
	}
	full := p.metaString("full_name")
	if full == "" {
		full = p.metaString("name")
	}
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func (p *Payload) metaString(key string) string {
	if p.Metadata == nil {
		return ""
	}
	s, _ := p.Metadata[key].(string)
	return s
}

// ParsePayload normalizes the user shapes providers answer with, tried in
// order: {data:{user:{..}}}, {user:{..}}, {data:{..}} and a flat object.
func ParsePayload(data []byte) (*Payload, error) {
	var root map[string]any
	if err := sonic.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if root == nil {
		return nil, ErrInvalidPayload
	}

	obj := locateUser(root)
	p := &Payload{
		Id:    firstString(obj, "id", "sub"),
		Email: firstString(obj, "email"),
	}
	for _, key := range []string{"user_metadata", "metadata"} {
		if m, ok := obj[key].(map[string]any); ok {
			p.Metadata = m
			break
		}
	}

	if p.Id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidPayload)
	}
	if p.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidPayload)
	}
	return p, nil
}

func locateUser(root map[string]any) map[string]any {
	data, hasData := root["data"].(map[string]any)
	if hasData {
		if user, ok := data["user"].(map[string]any); ok {
			return user
		}
	}
	if user, ok := root["user"].(map[string]any); ok {
		return user
	}
	if hasData {
		return data
	}
	return root
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
