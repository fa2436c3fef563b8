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
	"testing"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_Create(t *testing.T) {
	f := newFixture(t)
	po := f.user(model.RoleProductOwner)
	dev := f.user(model.RoleDeveloper)

	_, err := f.svc.Project.CreateProject(f.ctx, dev, CreateProjectReq{Name: "nope"})
	assert.ErrorIs(t, err, core.ErrInsufficientRole)

	_, err = f.svc.Project.CreateProject(f.ctx, po, CreateProjectReq{Name: "  "})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	p, err := f.svc.Project.CreateProject(f.ctx, po, CreateProjectReq{Name: "Hermes", ClientName: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectPlanning, p.Status)
	assert.Equal(t, po.UserId, p.OwnerId)

	m, err := f.svc.Members.Membership(f.ctx, po.UserId, p.ProjectId)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.RoleProductOwner, m.Role)

	got, err := f.svc.Project.GetProject(f.ctx, po, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, "ACME", got.ClientName)

	_, err = f.svc.Project.GetProject(f.ctx, dev, p.ProjectId)
	assert.ErrorIs(t, err, core.ErrNotAMember)
}

func TestProject_ListAndUpdate(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	po := f.user(model.RoleProductOwner)
	p := f.project(admin, statemachine.ProjectActive)
	f.project(admin, statemachine.ProjectPlanning)
	f.member(p, po, model.RoleProductOwner)

	active, err := f.svc.Project.ListProjects(f.ctx, admin, "active")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = f.svc.Project.ListProjects(f.ctx, admin, "sleeping")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	name := "Renamed"
	got, err := f.svc.Project.UpdateProject(f.ctx, po, p.ProjectId, UpdateProjectReq{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	// manager changes need change-status
	manager := po.UserId
	_, err = f.svc.Project.UpdateProject(f.ctx, po, p.ProjectId, UpdateProjectReq{ProjectManagerId: &manager})
	assert.ErrorIs(t, err, core.ErrInsufficientRole)
	got, err = f.svc.Project.UpdateProject(f.ctx, admin, p.ProjectId, UpdateProjectReq{ProjectManagerId: &manager})
	require.NoError(t, err)
	assert.Equal(t, po.UserId, got.ProjectManagerId)
}

func TestProject_MembersAreIdempotent(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	dev := f.user(model.RoleDeveloper)
	p := f.project(admin, statemachine.ProjectActive)

	for i := 0; i < 2; i++ {
		m, err := f.svc.Project.AddMember(f.ctx, admin, p.ProjectId, AddMemberReq{UserId: dev.UserId, Role: "developer"})
		require.NoError(t, err)
		assert.True(t, m.IsActive)
	}
	members, err := f.svc.Project.ListMembers(f.ctx, admin, p.ProjectId)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, dev.Email, members[0].Email)

	require.NoError(t, f.svc.Project.RemoveMember(f.ctx, admin, p.ProjectId, dev.UserId))
	assert.ErrorIs(t, f.svc.Project.RemoveMember(f.ctx, admin, p.ProjectId, dev.UserId), core.ErrResourceNotFound)

	// re-adding reactivates the departed row with the new role
	m, err := f.svc.Project.AddMember(f.ctx, admin, p.ProjectId, AddMemberReq{UserId: dev.UserId, Role: "product_owner"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleProductOwner, m.Role)
	assert.Nil(t, m.LeftAt)

	_, err = f.svc.Project.AddMember(f.ctx, admin, p.ProjectId, AddMemberReq{UserId: dev.UserId, Role: "admin"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = f.svc.Project.AddMember(f.ctx, dev, p.ProjectId, AddMemberReq{UserId: admin.UserId, Role: "member"})
	assert.NoError(t, err, "product owner members manage members")

	added, removed := 0, 0
	for _, l := range f.activities(p.ProjectId) {
		switch l.ActivityType {
		case consts.ActivityMemberAdded:
			added++
		case consts.ActivityMemberRemoved:
			removed++
		}
	}
	assert.Equal(t, 4, added)
	assert.Equal(t, 1, removed)
}

func TestMilestones(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	f.fixClock(now)
	admin := f.user(model.RoleAdmin)
	dev := f.user(model.RoleDeveloper)
	p := f.project(admin, statemachine.ProjectActive)
	f.member(p, dev, model.RoleDeveloper)

	name, due := "beta", now.AddDate(0, 1, 0)
	_, err := f.svc.Milestone.CreateMilestone(f.ctx, dev, p.ProjectId, MilestoneReq{Name: &name, DueDate: &due})
	assert.ErrorIs(t, err, core.ErrInsufficientRole)

	m, err := f.svc.Milestone.CreateMilestone(f.ctx, admin, p.ProjectId, MilestoneReq{Name: &name, DueDate: &due})
	require.NoError(t, err)
	assert.False(t, m.IsCompleted)

	done := true
	m, err = f.svc.Milestone.UpdateMilestone(f.ctx, admin, p.ProjectId, m.MilestoneId, MilestoneReq{IsCompleted: &done})
	require.NoError(t, err)
	assert.True(t, m.IsCompleted)
	require.NotNil(t, m.CompletedAt)

	list, err := f.svc.Milestone.ListMilestones(f.ctx, dev, p.ProjectId)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other := f.project(admin, statemachine.ProjectActive)
	_, err = f.svc.Milestone.UpdateMilestone(f.ctx, admin, other.ProjectId, m.MilestoneId, MilestoneReq{IsCompleted: &done})
	assert.ErrorIs(t, err, core.ErrResourceNotFound)
}

func TestSprints_OneActiveAtATime(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)

	first, err := f.svc.Sprint.CreateSprint(f.ctx, admin, p.ProjectId, CreateSprintReq{Name: "S1"})
	require.NoError(t, err)
	second, err := f.svc.Sprint.CreateSprint(f.ctx, admin, p.ProjectId, CreateSprintReq{Name: "S2"})
	require.NoError(t, err)

	_, err = f.svc.Sprint.StartSprint(f.ctx, admin, first.SprintId)
	require.NoError(t, err)
	started, err := f.svc.Sprint.StartSprint(f.ctx, admin, second.SprintId)
	require.NoError(t, err)
	assert.Equal(t, model.SprintActive, started.Status)
	assert.NotNil(t, started.StartDate)

	reloaded, err := f.repos.Sprint.Get(f.ctx, first.SprintId)
	require.NoError(t, err)
	assert.Equal(t, model.SprintCompleted, reloaded.Status)

	_, err = f.svc.Sprint.StartSprint(f.ctx, admin, second.SprintId)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	completed, err := f.svc.Sprint.CompleteSprint(f.ctx, admin, second.SprintId)
	require.NoError(t, err)
	assert.Equal(t, model.SprintCompleted, completed.Status)

	sprints, err := f.svc.Sprint.ListSprints(f.ctx, admin, p.ProjectId)
	require.NoError(t, err)
	assert.Len(t, sprints, 2)
}

func TestSprints_StoriesDriveCompletion(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	p := f.project(admin, statemachine.ProjectActive)

	story, err := f.svc.Sprint.CreateStory(f.ctx, admin, p.ProjectId, StoryReq{Title: "login", StoryPoints: 5})
	require.NoError(t, err)
	assert.Equal(t, model.StoryBacklog, story.Status)
	task, err := f.svc.Sprint.CreateTask(f.ctx, admin, story.StoryId, TaskReq{Title: "form"})
	require.NoError(t, err)

	_, err = f.svc.Sprint.UpdateStoryStatus(f.ctx, admin, story.StoryId, model.StoryDone)
	require.NoError(t, err)
	_, err = f.svc.Sprint.UpdateTaskStatus(f.ctx, admin, task.TaskId, model.TaskDone)
	require.NoError(t, err)
	_, err = f.svc.Sprint.UpdateTaskStatus(f.ctx, admin, task.TaskId, "blocked")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	stats, err := f.svc.Lifecycle.UpdateCompletion(f.ctx, admin, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.Completion)
}

func TestSprints_AddStoryToSprint(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	viewer := f.user(model.RoleMember)
	p := f.project(admin, statemachine.ProjectActive)
	other := f.project(admin, statemachine.ProjectActive)
	f.member(p, viewer, model.RoleMember)

	sprint := f.sprint(p, model.SprintPlanning, nil)
	done := f.sprint(p, model.SprintCompleted, nil)
	backlog, err := f.svc.Sprint.CreateStory(f.ctx, admin, p.ProjectId, StoryReq{Title: "login"})
	require.NoError(t, err)
	started, err := f.svc.Sprint.CreateStory(f.ctx, admin, p.ProjectId, StoryReq{Title: "signup"})
	require.NoError(t, err)
	_, err = f.svc.Sprint.UpdateStoryStatus(f.ctx, admin, started.StoryId, model.StoryInProgress)
	require.NoError(t, err)
	foreign, err := f.svc.Sprint.CreateStory(f.ctx, admin, other.ProjectId, StoryReq{Title: "elsewhere"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		actor    CurrentUser
		sprintId string
		storyId  string
		want     error
	}{
		{"missing sprint", admin, "missing", backlog.StoryId, core.ErrResourceNotFound},
		{"missing story", admin, sprint.SprintId, "missing", core.ErrResourceNotFound},
		{"other project", admin, sprint.SprintId, foreign.StoryId, core.ErrInvalidArgument},
		{"completed sprint", admin, done.SprintId, backlog.StoryId, core.ErrInvalidArgument},
		{"viewer", viewer, sprint.SprintId, backlog.StoryId, core.ErrInsufficientRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Sprint.AddStoryToSprint(f.ctx, tt.actor, tt.sprintId, tt.storyId)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := f.svc.Sprint.AddStoryToSprint(f.ctx, admin, sprint.SprintId, backlog.StoryId)
	require.NoError(t, err)
	assert.Equal(t, sprint.SprintId, got.SprintId)
	assert.Equal(t, model.StoryTodo, got.Status)

	got, err = f.svc.Sprint.AddStoryToSprint(f.ctx, admin, sprint.SprintId, started.StoryId)
	require.NoError(t, err)
	assert.Equal(t, model.StoryInProgress, got.Status)

	stored, err := f.repos.Sprint.GetStory(f.ctx, backlog.StoryId)
	require.NoError(t, err)
	assert.Equal(t, sprint.SprintId, stored.SprintId)
	assert.Equal(t, model.StoryTodo, stored.Status)
}

func TestProject_Delete(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	owner := f.user(model.RoleProductOwner)
	co := f.user(model.RoleProductOwner)
	p := f.project(owner, statemachine.ProjectActive)
	f.member(p, owner, model.RoleProductOwner)
	f.member(p, co, model.RoleProductOwner)
	_, listId := f.board(p)
	c := f.card(listId, "")

	assert.ErrorIs(t, f.svc.Project.DeleteProject(f.ctx, co, p.ProjectId), core.ErrInsufficientRole)
	assert.ErrorIs(t, f.svc.Project.DeleteProject(f.ctx, admin, "missing"), core.ErrResourceNotFound)
	assert.ErrorIs(t, f.svc.Project.DeleteProject(f.ctx, CurrentUser{UserId: "ghost"}, p.ProjectId), core.ErrUserNotFound)

	require.NoError(t, f.svc.Project.DeleteProject(f.ctx, owner, p.ProjectId))
	_, err := f.svc.Project.GetProject(f.ctx, admin, p.ProjectId)
	assert.ErrorIs(t, err, core.ErrResourceNotFound)
	_, err = f.svc.Board.GetCard(f.ctx, admin, c.CardId)
	assert.ErrorIs(t, err, core.ErrResourceNotFound)

	logs := f.activities(p.ProjectId)
	require.NotEmpty(t, logs)
	assert.Equal(t, consts.ActivityProjectDeleted, logs[0].ActivityType)

	// admins may delete projects they do not own
	other := f.project(owner, statemachine.ProjectPlanning)
	require.NoError(t, f.svc.Project.DeleteProject(f.ctx, admin, other.ProjectId))
}

func TestNotifications_OwnerOperations(t *testing.T) {
	f := newFixture(t)
	alice := f.user(model.RoleDeveloper)
	bob := f.user(model.RoleDeveloper)

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := newNotification(alice.UserId, consts.NotificationCardComment, "hello", "card", map[string]any{"i": i})
		require.NoError(t, err)
		require.NoError(t, f.repos.Notification.Create(f.ctx, []model.Notification{n}))
		ids = append(ids, n.NotificationId)
	}

	assert.ErrorIs(t, f.svc.Notifications.MarkRead(f.ctx, bob, ids[0]), core.ErrResourceNotFound)
	assert.ErrorIs(t, f.svc.Notifications.Delete(f.ctx, bob, ids[0]), core.ErrResourceNotFound)

	require.NoError(t, f.svc.Notifications.MarkRead(f.ctx, alice, ids[0]))
	list, err := f.svc.Notifications.List(f.ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, list, 3)
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	assert.Equal(t, 2, unread, "the listing shows the state before marking")

	n, err := f.svc.Notifications.MarkAllRead(f.ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, f.svc.Notifications.Delete(f.ctx, alice, ids[1]))
	list, err = f.svc.Notifications.List(f.ctx, alice, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUserDirectory(t *testing.T) {
	f := newFixture(t)
	dev := f.user(model.RoleDeveloper)
	dir := NewUserDirectory(f.repos)

	rcpt, err := dir.Recipient(f.ctx, dev.UserId)
	require.NoError(t, err)
	assert.Equal(t, dev.Email, rcpt.Email)
	assert.Equal(t, "Test developer", rcpt.Name)

	_, err = dir.Recipient(f.ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestActivity_List(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	outsider := f.user(model.RoleMember)
	p := f.project(admin, statemachine.ProjectPlanning)

	_, err := f.svc.Lifecycle.Start(f.ctx, admin, p.ProjectId, nil)
	require.NoError(t, err)
	_, err = f.svc.Lifecycle.Pause(f.ctx, admin, p.ProjectId, "waiting on client")
	require.NoError(t, err)

	logs, err := f.svc.Activity.List(f.ctx, admin, p.ProjectId, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, consts.ActivityProjectPaused, logs[0].ActivityType)

	logs, err = f.svc.Activity.List(f.ctx, admin, p.ProjectId, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = f.svc.Activity.List(f.ctx, outsider, p.ProjectId, 0)
	assert.ErrorIs(t, err, core.ErrNotAMember)
}
