// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/internal/engine/repo/repotest"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/pkg/event"
	httpx "github.com/go-arcade/agileboard/pkg/http"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider map[string]*identity.Payload

func (p staticProvider) Validate(_ context.Context, token string) (*identity.Payload, error) {
	if payload, ok := p[token]; ok {
		return payload, nil
	}
	return nil, identity.ErrInvalidToken
}

func (p staticProvider) UpdateMetadata(context.Context, string, map[string]any) error { return nil }

func (p staticProvider) Name() string { return "static" }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	provider := staticProvider{
		"admin-token": {Id: "ext-admin", Email: "admin@example.com", Metadata: map[string]any{"role": "admin"}},
		"dev-token":   {Id: "ext-dev", Email: "dev@example.com", Metadata: map[string]any{"role": "developer"}},
	}
	repos := repo.NewRepositories(repotest.NewDB(t))
	services := service.NewServices(repos, provider, identity.Conf{}, event.NewEventBus(), metrics.NewCollectors())

	conf := &httpx.Http{}
	conf.SetDefaults()
	return NewRouter(conf, services, nil).Router()
}

type result struct {
	status int
	body   map[string]any
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) result {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, sonic.Unmarshal(raw, &out))
	}
	return result{status: resp.StatusCode, body: out}
}

func detail(t *testing.T, r result) map[string]any {
	t.Helper()
	d, ok := r.body["detail"].(map[string]any)
	require.True(t, ok, "response has no object detail: %v", r.body)
	return d
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bearerToken(tt.header), tt.header)
	}
}

func TestRouter_Unauthenticated(t *testing.T) {
	app := newTestApp(t)

	r := call(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, r.status)

	for _, token := range []string{"", "forged"} {
		r = call(t, app, http.MethodGet, "/api/v1/projects", token, "")
		assert.Equal(t, http.StatusUnauthorized, r.status)
		assert.Equal(t, "AUTHENTICATION_FAILURE", r.body["reason"])
		assert.Equal(t, "/api/v1/projects", r.body["path"])
	}

	r = call(t, app, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestRouter_Me(t *testing.T) {
	app := newTestApp(t)

	r := call(t, app, http.MethodGet, "/api/v1/auth/me", "dev-token", "")
	require.Equal(t, http.StatusOK, r.status)
	me := detail(t, r)
	assert.Equal(t, "dev@example.com", me["email"])
	assert.Equal(t, "developer", me["globalRole"])
	assert.ElementsMatch(t, []any{"view", "create-card", "assign-card"}, me["capabilities"])
}

func TestRouter_ProjectFlow(t *testing.T) {
	app := newTestApp(t)
	// provision the developer before it is referenced
	call(t, app, http.MethodGet, "/api/v1/auth/me", "dev-token", "")

	r := call(t, app, http.MethodPost, "/api/v1/projects", "dev-token", `{"name":"Apollo"}`)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "INSUFFICIENT_ROLE", r.body["reason"])

	r = call(t, app, http.MethodPost, "/api/v1/projects", "admin-token", `{"name":"Apollo","clientName":"NASA"}`)
	require.Equal(t, http.StatusOK, r.status)
	project := detail(t, r)
	assert.Equal(t, "planning", project["status"])
	projectId := project["projectId"].(string)
	base := "/api/v1/projects/" + projectId

	r = call(t, app, http.MethodGet, base, "dev-token", "")
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "NOT_A_MEMBER", r.body["reason"])

	r = call(t, app, http.MethodPost, base+"/archive", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "INVALID_TRANSITION", r.body["reason"])

	r = call(t, app, http.MethodPost, base+"/start", "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "active", detail(t, r)["status"])

	r = call(t, app, http.MethodPost, base+"/cancel", "admin-token", `{"reason":"budget cut"}`)
	require.Equal(t, http.StatusOK, r.status)

	r = call(t, app, http.MethodPost, "/api/v1/boards", "admin-token", `{"projectId":"`+projectId+`","name":"Main"}`)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "PROJECT_NOT_ACTIONABLE", r.body["reason"])

	r = call(t, app, http.MethodGet, base+"/activity?limit=1", "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Len(t, r.body["detail"], 1)

	r = call(t, app, http.MethodGet, "/api/v1/projects/missing", "admin-token", "")
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "RESOURCE_NOT_FOUND", r.body["reason"])
}

func TestRouter_BadBody(t *testing.T) {
	app := newTestApp(t)

	r := call(t, app, http.MethodPost, "/api/v1/projects", "admin-token", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "INVALID_ARGUMENT", r.body["reason"])

	r = call(t, app, http.MethodGet, "/api/v1/boards", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, r.status)
}

func TestRouter_SetRole(t *testing.T) {
	app := newTestApp(t)
	r := call(t, app, http.MethodGet, "/api/v1/auth/me", "dev-token", "")
	require.Equal(t, http.StatusOK, r.status)
	devId := detail(t, r)["userId"].(string)

	r = call(t, app, http.MethodPut, "/api/v1/users/"+devId+"/role", "dev-token", `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = call(t, app, http.MethodPut, "/api/v1/users/"+devId+"/role", "admin-token", `{"role":"product_owner"}`)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "product_owner", detail(t, r)["globalRole"])
}

func TestRouter_Notifications(t *testing.T) {
	app := newTestApp(t)

	r := call(t, app, http.MethodGet, "/api/v1/notifications?markAsRead=false", "dev-token", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Empty(t, r.body["detail"])

	r = call(t, app, http.MethodPut, "/api/v1/notifications/unknown/read", "dev-token", "")
	assert.Equal(t, http.StatusNotFound, r.status)

	r = call(t, app, http.MethodPut, "/api/v1/notifications/mark-all-read", "dev-token", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.EqualValues(t, 0, detail(t, r)["updated"])
}

func TestRouter_CardsAndProjectDelete(t *testing.T) {
	app := newTestApp(t)
	call(t, app, http.MethodGet, "/api/v1/auth/me", "dev-token", "")

	r := call(t, app, http.MethodPost, "/api/v1/projects", "admin-token", `{"name":"Gemini"}`)
	require.Equal(t, http.StatusOK, r.status)
	projectId := detail(t, r)["projectId"].(string)

	r = call(t, app, http.MethodPost, "/api/v1/boards", "admin-token", `{"projectId":"`+projectId+`","name":"Main"}`)
	require.Equal(t, http.StatusOK, r.status)
	lists := detail(t, r)["lists"].([]any)
	require.NotEmpty(t, lists)
	listId := lists[0].(map[string]any)["listId"].(string)

	r = call(t, app, http.MethodPost, "/api/v1/lists/"+listId+"/cards", "admin-token", `{"title":"Docking"}`)
	require.Equal(t, http.StatusOK, r.status)
	cardId := detail(t, r)["cardId"].(string)

	r = call(t, app, http.MethodGet, "/api/v1/cards/"+cardId, "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "Docking", detail(t, r)["title"])

	r = call(t, app, http.MethodGet, "/api/v1/lists/"+listId+"/cards", "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	assert.Len(t, r.body["detail"], 1)

	r = call(t, app, http.MethodDelete, "/api/v1/cards/"+cardId, "dev-token", "")
	assert.Equal(t, http.StatusForbidden, r.status)

	r = call(t, app, http.MethodDelete, "/api/v1/cards/"+cardId, "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	r = call(t, app, http.MethodGet, "/api/v1/cards/"+cardId, "admin-token", "")
	assert.Equal(t, http.StatusNotFound, r.status)

	r = call(t, app, http.MethodDelete, "/api/v1/projects/"+projectId, "dev-token", "")
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "INSUFFICIENT_ROLE", r.body["reason"])

	r = call(t, app, http.MethodDelete, "/api/v1/projects/"+projectId, "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	r = call(t, app, http.MethodGet, "/api/v1/projects/"+projectId, "admin-token", "")
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestRouter_Users(t *testing.T) {
	app := newTestApp(t)
	call(t, app, http.MethodGet, "/api/v1/auth/me", "dev-token", "")

	r := call(t, app, http.MethodPost, "/api/v1/users", "dev-token", `{"email":"new@example.com"}`)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = call(t, app, http.MethodPost, "/api/v1/users", "admin-token", `{"email":"boss@example.com","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "INVALID_ARGUMENT", r.body["reason"])

	r = call(t, app, http.MethodPost, "/api/v1/users", "admin-token", `{"email":"new@example.com","role":"developer"}`)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "developer", detail(t, r)["globalRole"])

	r = call(t, app, http.MethodGet, "/api/v1/users", "admin-token", "")
	require.Equal(t, http.StatusOK, r.status)
	var emails []any
	for _, u := range r.body["detail"].([]any) {
		emails = append(emails, u.(map[string]any)["email"])
	}
	assert.Contains(t, emails, "new@example.com")
	assert.Contains(t, emails, "dev@example.com")

	r = call(t, app, http.MethodPut, "/api/v1/auth/me/email-notifications", "dev-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = call(t, app, http.MethodPut, "/api/v1/auth/me/email-notifications", "dev-token", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, false, detail(t, r)["emailNotifications"])
}
