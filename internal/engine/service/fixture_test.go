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

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/internal/engine/repo/repotest"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/event"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	tokens   map[string]*identity.Payload
	metadata map[string]map[string]any
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{tokens: map[string]*identity.Payload{}, metadata: map[string]map[string]any{}}
}

func (p *fakeProvider) Validate(_ context.Context, token string) (*identity.Payload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payload, ok := p.tokens[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return payload, nil
}

func (p *fakeProvider) UpdateMetadata(_ context.Context, externalId string, metadata map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metadata[externalId] = metadata
	return nil
}

func (p *fakeProvider) Name() string { return "fake" }

type fixture struct {
	t        *testing.T
	ctx      context.Context
	repos    *repo.Repositories
	svc      *Services
	provider *fakeProvider

	mu        sync.Mutex
	published []notify.NotificationCreated
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		repos:    repo.NewRepositories(repotest.NewDB(t)),
		provider: newFakeProvider(),
	}
	bus := event.NewEventBus()
	bus.Subscribe(consts.EventNotificationCreated, func(e event.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.published = append(f.published, e.(notify.NotificationCreated))
	})
	f.svc = NewServices(f.repos, f.provider, identity.Conf{}, bus, metrics.NewCollectors())
	return f
}

func (f *fixture) events() []notify.NotificationCreated {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.NotificationCreated(nil), f.published...)
}

func (f *fixture) user(role model.Role) CurrentUser {
	f.t.Helper()
	u := &model.User{
		UserId:     id.GetUUID(),
		Email:      id.GetUUIDWithoutDashes()[:12] + "@example.com",
		FirstName:  "Test",
		LastName:   string(role),
		GlobalRole: role,
		IsActive:   true,
	}
	require.NoError(f.t, f.repos.User.Create(f.ctx, u))
	return CurrentUser{UserId: u.UserId, Email: u.Email}
}

func (f *fixture) project(createdBy CurrentUser, status model.ProjectStatus) *model.Project {
	f.t.Helper()
	p := &model.Project{
		ProjectId: id.GetUUID(),
		Name:      "Apollo",
		OwnerId:   createdBy.UserId,
		CreatedBy: createdBy.UserId,
		Status:    status,
	}
	require.NoError(f.t, f.repos.Project.Create(f.ctx, p))
	return p
}

func (f *fixture) setManager(p *model.Project, manager CurrentUser) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Project.Update(f.ctx, p.ProjectId, map[string]any{"project_manager_id": manager.UserId}))
	p.ProjectManagerId = manager.UserId
}

func (f *fixture) member(p *model.Project, u CurrentUser, role model.Role) {
	f.t.Helper()
	_, err := f.repos.ProjectMember.Upsert(f.ctx, p.ProjectId, u.UserId, role)
	require.NoError(f.t, err)
}

// board creates a board with a single list and returns both ids.
func (f *fixture) board(p *model.Project) (boardId, listId string) {
	f.t.Helper()
	b := &model.Board{BoardId: id.GetUUID(), ProjectId: p.ProjectId, Name: "board", Template: model.BoardTemplateKanban}
	l := model.BoardList{ListId: id.GetUUID(), BoardId: b.BoardId, Name: "To Do"}
	require.NoError(f.t, f.repos.Board.Create(f.ctx, b, []model.BoardList{l}))
	return b.BoardId, l.ListId
}

func (f *fixture) card(listId, assigneeId string) *model.Card {
	f.t.Helper()
	c := &model.Card{CardId: id.GetUUID(), ListId: listId, Title: "card", AssigneeId: assigneeId, IsActive: true}
	require.NoError(f.t, f.repos.Card.Create(f.ctx, c))
	return c
}

func (f *fixture) sprint(p *model.Project, status model.SprintStatus, end *time.Time) *model.Sprint {
	f.t.Helper()
	s := &model.Sprint{SprintId: id.GetUUID(), ProjectId: p.ProjectId, Name: "sprint", Status: status, EndDate: end}
	require.NoError(f.t, f.repos.Sprint.Create(f.ctx, s))
	return s
}

func (f *fixture) status(projectId string) model.ProjectStatus {
	f.t.Helper()
	p, err := f.repos.Project.Get(f.ctx, projectId)
	require.NoError(f.t, err)
	return p.Status
}

func (f *fixture) activities(projectId string) []model.ActivityLog {
	f.t.Helper()
	logs, err := f.repos.Activity.ListByProject(f.ctx, projectId, 100)
	require.NoError(f.t, err)
	return logs
}

func (f *fixture) notificationsOf(u CurrentUser) []model.Notification {
	f.t.Helper()
	ns, err := f.repos.Notification.ListByUser(f.ctx, u.UserId)
	require.NoError(f.t, err)
	return ns
}

func (f *fixture) fixClock(now time.Time) {
	f.svc.Lifecycle.now = func() time.Time { return now }
	f.svc.Sprint.now = func() time.Time { return now }
	f.svc.Milestone.now = func() time.Time { return now }
}
