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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycleOp func(f *fixture, user CurrentUser, projectId string) (*model.Project, error)

var lifecycleOps = map[statemachine.Event]lifecycleOp{
	statemachine.EventStart: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.Start(f.ctx, u, id, nil)
	},
	statemachine.EventPause: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.Pause(f.ctx, u, id, "waiting on client")
	},
	statemachine.EventResume: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.Resume(f.ctx, u, id)
	},
	statemachine.EventComplete: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.Complete(f.ctx, u, id, "")
	},
	statemachine.EventCancel: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.Cancel(f.ctx, u, id, "budget cut")
	},
	statemachine.EventObsolete: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.MarkObsolete(f.ctx, u, id, "replaced")
	},
	statemachine.EventArchive: func(f *fixture, u CurrentUser, id string) (*model.Project, error) {
		return f.svc.Lifecycle.Archive(f.ctx, u, id)
	},
}

func TestLifecycle_OnlyDefinedEdges(t *testing.T) {
	type edge struct {
		from  model.ProjectStatus
		event statemachine.Event
	}
	allowed := map[edge]model.ProjectStatus{
		{statemachine.ProjectPlanning, statemachine.EventStart}:     statemachine.ProjectActive,
		{statemachine.ProjectPlanning, statemachine.EventCancel}:    statemachine.ProjectCancelled,
		{statemachine.ProjectPlanning, statemachine.EventObsolete}:  statemachine.ProjectCancelled,
		{statemachine.ProjectActive, statemachine.EventPause}:       statemachine.ProjectOnHold,
		{statemachine.ProjectActive, statemachine.EventComplete}:    statemachine.ProjectCompleted,
		{statemachine.ProjectActive, statemachine.EventCancel}:      statemachine.ProjectCancelled,
		{statemachine.ProjectActive, statemachine.EventObsolete}:    statemachine.ProjectCancelled,
		{statemachine.ProjectOnHold, statemachine.EventResume}:      statemachine.ProjectActive,
		{statemachine.ProjectOnHold, statemachine.EventComplete}:    statemachine.ProjectCompleted,
		{statemachine.ProjectOnHold, statemachine.EventCancel}:      statemachine.ProjectCancelled,
		{statemachine.ProjectOnHold, statemachine.EventObsolete}:    statemachine.ProjectCancelled,
		{statemachine.ProjectCompleted, statemachine.EventArchive}:  statemachine.ProjectArchived,
		{statemachine.ProjectCancelled, statemachine.EventArchive}:  statemachine.ProjectArchived,
	}

	f := newFixture(t)
	admin := f.user(model.RoleAdmin)

	for _, from := range statemachine.ProjectStatuses {
		for event, op := range lifecycleOps {
			t.Run(fmt.Sprintf("%s/%s", from, event), func(t *testing.T) {
				p := f.project(admin, from)
				got, err := op(f, admin, p.ProjectId)

				want, ok := allowed[edge{from, event}]
				if !ok {
					assert.ErrorIs(t, err, core.ErrInvalidTransition)
					assert.Equal(t, from, f.status(p.ProjectId))
					assert.Empty(t, f.activities(p.ProjectId))
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, got.Status)
				assert.Equal(t, want, f.status(p.ProjectId))
				assert.Len(t, f.activities(p.ProjectId), 1)
			})
		}
	}
}

func TestLifecycle_CompleteWithActiveSprint(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)
	f.sprint(p, model.SprintActive, nil)

	_, err := f.svc.Lifecycle.Complete(f.ctx, admin, p.ProjectId, "")
	assert.ErrorIs(t, err, core.ErrActiveSprintsExist)
	assert.Equal(t, statemachine.ProjectActive, f.status(p.ProjectId))
	assert.Empty(t, f.activities(p.ProjectId))
}

func TestLifecycle_CompleteRecordsStats(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.fixClock(now)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectOnHold)
	f.sprint(p, model.SprintCompleted, nil)
	seedWork(t, f, p)

	got, err := f.svc.Lifecycle.Complete(f.ctx, admin, p.ProjectId, " handed over to support ")
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectCompleted, got.Status)
	assert.Equal(t, 100.0, got.CompletionPercentage)
	require.NotNil(t, got.ActualEndDate)
	assert.True(t, got.ActualEndDate.Equal(now))

	logs := f.activities(p.ProjectId)
	require.Len(t, logs, 1)
	assert.Equal(t, consts.ActivityProjectCompleted, logs[0].ActivityType)
	extra := decodeJSON(logs[0].ExtraData)
	require.Contains(t, extra, "stats")
	stats := extra["stats"].(map[string]any)
	assert.EqualValues(t, 53, stats["completion"])
	assert.Equal(t, "handed over to support", extra["completionNotes"])
}

func TestLifecycle_LosesConcurrentTransition(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)

	// another writer cancels the project between the read and the update
	_, err := f.svc.Lifecycle.apply(f.ctx, admin, p.ProjectId, transition{
		event:    statemachine.EventComplete,
		activity: consts.ActivityProjectCompleted,
		prepare: func(ctx context.Context, tx *repo.Repositories, p *model.Project, _ map[string]any) error {
			_, err := tx.Project.UpdateStatus(ctx, p.ProjectId, statemachine.ProjectActive, statemachine.ProjectCancelled, nil)
			return err
		},
	})
	require.ErrorIs(t, err, core.ErrInvalidTransition)
	var ce *core.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, string(statemachine.ProjectCancelled), ce.Current)
	assert.Equal(t, string(statemachine.ProjectCompleted), ce.Requested)

	assert.Equal(t, statemachine.ProjectActive, f.status(p.ProjectId))
	assert.Empty(t, f.activities(p.ProjectId))
}

func TestLifecycle_ConcurrentCompleteSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)

	const callers = 4
	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		succeeded, lost int
		unexpected      []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Lifecycle.Complete(f.ctx, admin, p.ProjectId, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, core.ErrInvalidTransition):
				lost++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, lost)
	assert.Equal(t, statemachine.ProjectCompleted, f.status(p.ProjectId))

	completed := 0
	for _, l := range f.activities(p.ProjectId) {
		if l.ActivityType == consts.ActivityProjectCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestLifecycle_SecondArchiveFails(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectCompleted)

	got, err := f.svc.Lifecycle.Archive(f.ctx, admin, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectArchived, got.Status)
	assert.NotNil(t, got.ArchivedAt)

	_, err = f.svc.Lifecycle.Archive(f.ctx, admin, p.ProjectId)
	require.ErrorIs(t, err, core.ErrInvalidTransition)
	var ce *core.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, string(statemachine.ProjectArchived), ce.Current)
	assert.Equal(t, string(statemachine.ProjectArchived), ce.Requested)
	assert.Len(t, f.activities(p.ProjectId), 1)
}

func TestLifecycle_ChangeStatusNeedsManagership(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	po := f.user(model.RoleProductOwner)
	dev := f.user(model.RoleDeveloper)
	p := f.project(admin, statemachine.ProjectPlanning)
	f.member(p, po, model.RoleProductOwner)
	f.member(p, dev, model.RoleDeveloper)

	_, err := f.svc.Lifecycle.Start(f.ctx, po, p.ProjectId, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientRole)

	_, err = f.svc.Lifecycle.Start(f.ctx, dev, p.ProjectId, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientRole)

	f.setManager(p, po)
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	got, err := f.svc.Lifecycle.Start(f.ctx, po, p.ProjectId, &start)
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectActive, got.Status)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(start))
}

func TestLifecycle_CancelNeedsReason(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)

	_, err := f.svc.Lifecycle.Cancel(f.ctx, admin, p.ProjectId, "  ")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = f.svc.Lifecycle.MarkObsolete(f.ctx, admin, p.ProjectId, "")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Equal(t, statemachine.ProjectActive, f.status(p.ProjectId))
}

func TestLifecycle_AccessIsCheckedBeforeReason(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	dev := f.user(model.RoleDeveloper)
	outsider := f.user(model.RoleMember)
	p := f.project(admin, statemachine.ProjectActive)
	f.member(p, dev, model.RoleDeveloper)

	tests := []struct {
		name string
		user CurrentUser
		want error
	}{
		{"member without managership", dev, core.ErrInsufficientRole},
		{"not a member", outsider, core.ErrNotAMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Lifecycle.Cancel(f.ctx, tt.user, p.ProjectId, "")
			assert.ErrorIs(t, err, tt.want)
			_, err = f.svc.Lifecycle.MarkObsolete(f.ctx, tt.user, p.ProjectId, " ")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLifecycle_MarkObsoleteNotifiesMembers(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	po := f.user(model.RoleProductOwner)
	dev := f.user(model.RoleDeveloper)
	gone := f.user(model.RoleDeveloper)
	p := f.project(admin, statemachine.ProjectActive)
	f.member(p, admin, model.RoleProductOwner)
	f.member(p, po, model.RoleProductOwner)
	f.member(p, dev, model.RoleDeveloper)
	f.member(p, gone, model.RoleDeveloper)
	_, err := f.repos.ProjectMember.Deactivate(f.ctx, p.ProjectId, gone.UserId)
	require.NoError(t, err)

	got, err := f.svc.Lifecycle.MarkObsolete(f.ctx, admin, p.ProjectId, "client went away")
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectCancelled, got.Status)

	logs := f.activities(p.ProjectId)
	require.Len(t, logs, 1)
	assert.Equal(t, consts.ActivityProjectMarkedObsolete, logs[0].ActivityType)

	assert.Empty(t, f.notificationsOf(admin))
	assert.Empty(t, f.notificationsOf(gone))
	for _, u := range []CurrentUser{po, dev} {
		ns := f.notificationsOf(u)
		require.Len(t, ns, 1)
		assert.Equal(t, consts.NotificationProjectObsolete, ns[0].Type)
		data := decodeJSON(ns[0].Data)
		assert.Equal(t, "Apollo", data["projectName"])
		assert.Equal(t, "client went away", data["reason"])
	}
	assert.Len(t, f.events(), 2)
}

func TestLifecycle_UpdateDates(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := f.svc.Lifecycle.UpdateDates(f.ctx, admin, p.ProjectId, UpdateDatesReq{StartDate: &start, PlannedEndDate: &end})
	require.NoError(t, err)
	require.NotNil(t, got.PlannedEndDate)
	assert.True(t, got.PlannedEndDate.Equal(end))

	logs := f.activities(p.ProjectId)
	require.Len(t, logs, 1)
	assert.Equal(t, consts.ActivityDatesUpdated, logs[0].ActivityType)
	extra := decodeJSON(logs[0].ExtraData)
	assert.Contains(t, extra, "old")
	assert.Contains(t, extra, "new")

	before := start.AddDate(0, 0, -1)
	_, err = f.svc.Lifecycle.UpdateDates(f.ctx, admin, p.ProjectId, UpdateDatesReq{PlannedEndDate: &before})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Len(t, f.activities(p.ProjectId), 1)
}

// seedWork creates 10 stories (6 done, 20 of 50 points done) and 20 tasks
// (10 done) on p.
func seedWork(t *testing.T, f *fixture, p *model.Project) {
	t.Helper()
	donePoints := []int{5, 5, 4, 2, 2, 2}
	openPoints := []int{10, 10, 5, 5}
	var first string
	add := func(status model.StoryStatus, points int) {
		s := &model.UserStory{StoryId: id.GetUUID(), ProjectId: p.ProjectId, Title: "story", Status: status, StoryPoints: points}
		require.NoError(t, f.repos.Sprint.CreateStory(f.ctx, s))
		if first == "" {
			first = s.StoryId
		}
	}
	for _, pts := range donePoints {
		add(model.StoryDone, pts)
	}
	for _, pts := range openPoints {
		add(model.StoryTodo, pts)
	}
	for i := 0; i < 20; i++ {
		status := model.TaskTodo
		if i < 10 {
			status = model.TaskDone
		}
		require.NoError(t, f.repos.Sprint.CreateTask(f.ctx, &model.Task{TaskId: id.GetUUID(), StoryId: first, Title: "task", Status: status}))
	}
}

func TestComputeCompletion(t *testing.T) {
	tests := []struct {
		name  string
		stats repo.WorkStats
		want  float64
	}{
		{"empty project", repo.WorkStats{}, 0},
		{"reference mix", repo.WorkStats{TotalStories: 10, CompletedStories: 6, TotalTasks: 20, CompletedTasks: 10, TotalPoints: 50, CompletedPoints: 20}, 53},
		{"all done", repo.WorkStats{TotalStories: 3, CompletedStories: 3, TotalTasks: 1, CompletedTasks: 1, TotalPoints: 8, CompletedPoints: 8}, 100},
		{"only stories", repo.WorkStats{TotalStories: 3, CompletedStories: 1}, 16.67},
		{"inconsistent counts clamp", repo.WorkStats{TotalStories: 1, CompletedStories: 5, TotalTasks: 1, CompletedTasks: 5, TotalPoints: 1, CompletedPoints: 5}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeCompletion(tt.stats).Completion)
		})
	}
}

func TestLifecycle_UpdateCompletion(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)
	seedWork(t, f, p)

	stats, err := f.svc.Lifecycle.UpdateCompletion(f.ctx, admin, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, 53.0, stats.Completion)
	assert.EqualValues(t, 10, stats.TotalStories)

	stored, err := f.repos.Project.Get(f.ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, 53.0, stored.CompletionPercentage)
}

func TestLifecycle_Health(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	inDays := func(d int) *time.Time {
		v := now.AddDate(0, 0, d)
		return &v
	}

	tests := []struct {
		name    string
		end     *time.Time
		setup   func(f *fixture, p *model.Project)
		want    string
		factors []string
	}{
		{"no schedule", nil, nil, RiskLow, []string{}},
		{"far deadline", inDays(30), nil, RiskLow, []string{}},
		{"close deadline", inDays(3), nil, RiskMedium, []string{"less than 7 days remaining"}},
		{"overdue", inDays(-1), nil, RiskHigh, []string{"project is past its planned end date"}},
		{"overdue sprint", inDays(30), func(f *fixture, p *model.Project) {
			f.sprint(p, model.SprintActive, inDays(-2))
		}, RiskHigh, []string{"1 overdue sprint(s)"}},
		{"overdue milestone", inDays(30), func(f *fixture, p *model.Project) {
			require.NoError(f.t, f.repos.Milestone.Create(f.ctx, &model.ProjectMilestone{
				MilestoneId: id.GetUUID(), ProjectId: p.ProjectId, Name: "beta", DueDate: *inDays(-5),
			}))
		}, RiskHigh, []string{"1 overdue milestone(s)"}},
		{"close deadline and overdue sprint", inDays(2), func(f *fixture, p *model.Project) {
			f.sprint(p, model.SprintActive, inDays(-1))
		}, RiskHigh, []string{"less than 7 days remaining", "1 overdue sprint(s)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.fixClock(now)
			admin := f.user(model.RoleAdmin)
			p := f.project(admin, statemachine.ProjectActive)
			if tt.end != nil {
				require.NoError(t, f.repos.Project.Update(f.ctx, p.ProjectId, map[string]any{"planned_end_date": *tt.end}))
			}
			if tt.setup != nil {
				tt.setup(f, p)
			}

			h, err := f.svc.Lifecycle.Health(f.ctx, admin, p.ProjectId)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.RiskLevel)
			assert.Equal(t, tt.factors, h.RiskFactors)
			assert.Equal(t, []model.ProjectStatus{statemachine.ProjectOnHold, statemachine.ProjectCompleted, statemachine.ProjectCancelled}, h.NextStatuses)

			attention, err := f.svc.Lifecycle.RequiringAttention(f.ctx, admin)
			require.NoError(t, err)
			if tt.want == RiskLow {
				assert.Empty(t, attention)
			} else {
				require.Len(t, attention, 1)
				assert.Equal(t, p.ProjectId, attention[0].ProjectId)
			}
		})
	}
}

func TestCheckActionable(t *testing.T) {
	for _, st := range statemachine.ProjectStatuses {
		err := CheckActionable(&model.Project{Status: st})
		switch st {
		case statemachine.ProjectCompleted, statemachine.ProjectCancelled, statemachine.ProjectArchived:
			assert.ErrorIs(t, err, core.ErrProjectNotActionable, st)
		default:
			assert.NoError(t, err, st)
		}
	}
}
