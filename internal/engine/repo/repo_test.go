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

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo/repotest"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) *Repositories {
	return NewRepositories(repotest.NewDB(t))
}

func mkUser(t *testing.T, r *Repositories, role model.Role) *model.User {
	t.Helper()
	u := &model.User{UserId: id.GetUUID(), Email: id.GetUUID() + "@example.com", GlobalRole: role, IsActive: true}
	require.NoError(t, r.User.Create(context.Background(), u))
	return u
}

func mkProject(t *testing.T, r *Repositories, createdBy string) *model.Project {
	t.Helper()
	p := &model.Project{ProjectId: id.GetUUID(), Name: "p", CreatedBy: createdBy, OwnerId: createdBy, Status: statemachine.ProjectPlanning}
	require.NoError(t, r.Project.Create(context.Background(), p))
	return p
}

func TestProjectRepo_UpdateStatusIsGuarded(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	p := mkProject(t, r, admin.UserId)

	n, err := r.Project.UpdateStatus(ctx, p.ProjectId, statemachine.ProjectPlanning, statemachine.ProjectActive, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// stale expectation loses
	n, err = r.Project.UpdateStatus(ctx, p.ProjectId, statemachine.ProjectPlanning, statemachine.ProjectCancelled, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := r.Project.Get(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectActive, got.Status)
}

func TestProjectRepo_SharesAdminPortfolio(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	po := mkUser(t, r, model.RoleProductOwner)
	dev := mkUser(t, r, model.RoleDeveloper)

	target := mkProject(t, r, admin.UserId)
	sibling := mkProject(t, r, admin.UserId)
	foreign := mkProject(t, r, po.UserId)

	ok, err := r.Project.SharesAdminPortfolio(ctx, po.UserId, target.ProjectId)
	require.NoError(t, err)
	assert.False(t, ok, "no membership yet")

	_, err = r.ProjectMember.Upsert(ctx, sibling.ProjectId, po.UserId, model.RoleProductOwner)
	require.NoError(t, err)
	_, err = r.ProjectMember.Upsert(ctx, sibling.ProjectId, dev.UserId, model.RoleDeveloper)
	require.NoError(t, err)

	ok, err = r.Project.SharesAdminPortfolio(ctx, po.UserId, target.ProjectId)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Project.SharesAdminPortfolio(ctx, dev.UserId, target.ProjectId)
	require.NoError(t, err)
	assert.False(t, ok, "developer membership does not count")

	ok, err = r.Project.SharesAdminPortfolio(ctx, po.UserId, foreign.ProjectId)
	require.NoError(t, err)
	assert.False(t, ok, "creator is not an admin")

	_, err = r.ProjectMember.Deactivate(ctx, sibling.ProjectId, po.UserId)
	require.NoError(t, err)
	ok, err = r.Project.SharesAdminPortfolio(ctx, po.UserId, target.ProjectId)
	require.NoError(t, err)
	assert.False(t, ok, "departed membership does not count")
}

func TestProjectMemberRepo_UpsertReactivates(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	dev := mkUser(t, r, model.RoleDeveloper)
	p := mkProject(t, r, admin.UserId)

	m, err := r.ProjectMember.Upsert(ctx, p.ProjectId, dev.UserId, model.RoleDeveloper)
	require.NoError(t, err)
	assert.True(t, m.IsActive)

	n, err := r.ProjectMember.Deactivate(ctx, p.ProjectId, dev.UserId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = r.ProjectMember.GetActive(ctx, p.ProjectId, dev.UserId)
	assert.True(t, IsNotFound(err))

	m, err = r.ProjectMember.Upsert(ctx, p.ProjectId, dev.UserId, model.RoleProductOwner)
	require.NoError(t, err)
	assert.True(t, m.IsActive)
	assert.Equal(t, model.RoleProductOwner, m.Role)
	assert.Nil(t, m.LeftAt)

	var rows int64
	require.NoError(t, r.DB().Model(&model.ProjectMember{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows, "re-adding keeps a single row")

	members, err := r.ProjectMember.ListActive(ctx, p.ProjectId)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, dev.Email, members[0].Email)
}

func TestSprintRepo_WorkStats(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	projectId := id.GetUUID()

	for i := 0; i < 10; i++ {
		status := model.StoryTodo
		if i < 6 {
			status = model.StoryDone
		}
		story := &model.UserStory{StoryId: id.GetUUID(), ProjectId: projectId, Title: "s", Status: status, StoryPoints: 5}
		require.NoError(t, r.Sprint.CreateStory(ctx, story))
		require.NoError(t, r.Sprint.CreateTask(ctx, &model.Task{TaskId: id.GetUUID(), StoryId: story.StoryId, Title: "t", Status: model.TaskDone}))
		require.NoError(t, r.Sprint.CreateTask(ctx, &model.Task{TaskId: id.GetUUID(), StoryId: story.StoryId, Title: "t", Status: model.TaskTodo}))
	}

	stats, err := r.Sprint.WorkStats(ctx, projectId)
	require.NoError(t, err)
	assert.Equal(t, WorkStats{
		TotalStories: 10, CompletedStories: 6,
		TotalTasks: 20, CompletedTasks: 10,
		TotalPoints: 50, CompletedPoints: 30,
	}, stats)

	empty, err := r.Sprint.WorkStats(ctx, id.GetUUID())
	require.NoError(t, err)
	assert.Equal(t, WorkStats{}, empty)
}

func TestSprintRepo_ActiveAndOverdue(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	projectId := id.GetUUID()
	past := time.Now().Add(-48 * time.Hour)

	a := &model.Sprint{SprintId: id.GetUUID(), ProjectId: projectId, Name: "a", Status: model.SprintActive, EndDate: &past}
	b := &model.Sprint{SprintId: id.GetUUID(), ProjectId: projectId, Name: "b", Status: model.SprintPlanning}
	require.NoError(t, r.Sprint.Create(ctx, a))
	require.NoError(t, r.Sprint.Create(ctx, b))

	n, err := r.Sprint.CountActive(ctx, projectId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = r.Sprint.CountOverdue(ctx, projectId, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	closed, err := r.Sprint.CompleteActive(ctx, projectId, b.SprintId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, closed)
	n, err = r.Sprint.CountActive(ctx, projectId)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBoardAndCardRepo(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	dev := id.GetUUID()

	board := &model.Board{BoardId: id.GetUUID(), ProjectId: id.GetUUID(), Name: "b", Template: model.BoardTemplateKanban}
	lists := []model.BoardList{
		{ListId: id.GetUUID(), BoardId: board.BoardId, Name: "To Do", Position: 0},
		{ListId: id.GetUUID(), BoardId: board.BoardId, Name: "Done", Position: 1},
	}
	require.NoError(t, r.Board.Create(ctx, board, lists))

	pos, err := r.Board.MaxListPosition(ctx, board.BoardId)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = r.Card.MaxPosition(ctx, lists[0].ListId)
	require.NoError(t, err)
	assert.Equal(t, -1, pos)

	require.NoError(t, r.Card.Create(ctx, &model.Card{CardId: id.GetUUID(), ListId: lists[0].ListId, Title: "c", Position: 0, AssigneeId: dev, IsActive: true}))

	n, err := r.Card.CountAssignedOnBoard(ctx, board.BoardId, dev)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = r.Card.CountAssignedInProject(ctx, board.ProjectId, dev)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = r.Card.CountAssignedOnBoard(ctx, id.GetUUID(), dev)
	require.NoError(t, err)
	assert.Zero(t, n)

	projects, err := r.Card.AssignedProjectIds(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, []string{board.ProjectId}, projects)
}

func TestNotificationRepo_Ownership(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner, other := id.GetUUID(), id.GetUUID()
	n := model.Notification{NotificationId: id.GetUUID(), UserId: owner, Content: "hi", Type: "card_assigned"}
	require.NoError(t, r.Notification.Create(ctx, []model.Notification{n}))

	_, err := r.Notification.Get(ctx, other, n.NotificationId)
	assert.True(t, IsNotFound(err))

	affected, err := r.Notification.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	deleted, err := r.Notification.Delete(ctx, other, n.NotificationId)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	deleted, err = r.Notification.Delete(ctx, owner, n.NotificationId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestTransactionRollsBack(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	p := mkProject(t, r, admin.UserId)

	err := r.Transaction(ctx, func(tx *Repositories) error {
		if _, err := tx.Project.UpdateStatus(ctx, p.ProjectId, statemachine.ProjectPlanning, statemachine.ProjectActive, nil); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := r.Project.Get(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Equal(t, statemachine.ProjectPlanning, got.Status)
}

func TestIsDuplicateKey(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	u := mkUser(t, r, model.RoleMember)
	err := r.User.Create(ctx, &model.User{UserId: id.GetUUID(), Email: u.Email, GlobalRole: model.RoleMember})
	assert.True(t, IsDuplicateKey(err))
	assert.False(t, IsDuplicateKey(nil))
}

func TestProjectRepo_DeleteCascades(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	p := mkProject(t, r, admin.UserId)
	other := mkProject(t, r, admin.UserId)

	seed := func(projectId string) (cardId, storyId, taskId string) {
		b := &model.Board{BoardId: id.GetUUID(), ProjectId: projectId, Name: "b", Template: model.BoardTemplateKanban}
		l := model.BoardList{ListId: id.GetUUID(), BoardId: b.BoardId, Name: "l"}
		require.NoError(t, r.Board.Create(ctx, b, []model.BoardList{l}))
		c := &model.Card{CardId: id.GetUUID(), ListId: l.ListId, Title: "c", IsActive: true}
		require.NoError(t, r.Card.Create(ctx, c))
		require.NoError(t, r.Comment.Create(ctx, &model.Comment{CommentId: id.GetUUID(), CardId: c.CardId, UserId: admin.UserId, Content: "hi"}))
		story := &model.UserStory{StoryId: id.GetUUID(), ProjectId: projectId, Title: "s", Status: model.StoryBacklog}
		require.NoError(t, r.Sprint.CreateStory(ctx, story))
		task := &model.Task{TaskId: id.GetUUID(), StoryId: story.StoryId, Title: "t", Status: model.TaskTodo}
		require.NoError(t, r.Sprint.CreateTask(ctx, task))
		require.NoError(t, r.Sprint.Create(ctx, &model.Sprint{SprintId: id.GetUUID(), ProjectId: projectId, Name: "sp", Status: model.SprintPlanning}))
		require.NoError(t, r.Milestone.Create(ctx, &model.ProjectMilestone{MilestoneId: id.GetUUID(), ProjectId: projectId, Name: "m", DueDate: time.Now()}))
		_, err := r.ProjectMember.Upsert(ctx, projectId, admin.UserId, model.RoleProductOwner)
		require.NoError(t, err)
		return c.CardId, story.StoryId, task.TaskId
	}
	cardId, storyId, taskId := seed(p.ProjectId)
	keptCard, keptStory, _ := seed(other.ProjectId)

	n, err := r.Project.Delete(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.Project.Get(ctx, p.ProjectId)
	assert.True(t, IsNotFound(err))
	_, err = r.Card.Get(ctx, cardId)
	assert.True(t, IsNotFound(err))
	_, err = r.Sprint.GetStory(ctx, storyId)
	assert.True(t, IsNotFound(err))
	_, err = r.Sprint.GetTask(ctx, taskId)
	assert.True(t, IsNotFound(err))

	comments, err := r.Comment.ListByCard(ctx, cardId)
	require.NoError(t, err)
	assert.Empty(t, comments)
	boards, err := r.Board.ListByProject(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Empty(t, boards)
	sprints, err := r.Sprint.ListByProject(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Empty(t, sprints)
	milestones, err := r.Milestone.ListByProject(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Empty(t, milestones)
	members, err := r.ProjectMember.ListActiveUserIds(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Empty(t, members)

	// the other project is untouched
	_, err = r.Card.Get(ctx, keptCard)
	assert.NoError(t, err)
	_, err = r.Sprint.GetStory(ctx, keptStory)
	assert.NoError(t, err)
	comments, err = r.Comment.ListByCard(ctx, keptCard)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	n, err = r.Project.Delete(ctx, p.ProjectId)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserRepo_ManagedListAndEmailPreference(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	otherAdmin := mkUser(t, r, model.RoleAdmin)

	mine := &model.User{UserId: id.GetUUID(), Email: "a-mine@example.com", GlobalRole: model.RoleDeveloper, IsActive: true, CreatedBy: admin.UserId}
	theirs := &model.User{UserId: id.GetUUID(), Email: "b-theirs@example.com", GlobalRole: model.RoleDeveloper, IsActive: true, CreatedBy: otherAdmin.UserId}
	require.NoError(t, r.User.Create(ctx, mine))
	require.NoError(t, r.User.Create(ctx, theirs))

	users, err := r.User.ListManagedBy(ctx, admin.UserId)
	require.NoError(t, err)
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserId)
	}
	assert.ElementsMatch(t, []string{admin.UserId, otherAdmin.UserId, mine.UserId}, ids)

	stored, err := r.User.Get(ctx, mine.UserId)
	require.NoError(t, err)
	assert.True(t, stored.EmailNotifications, "emails are on by default")

	_, err = r.User.UpdateEmailNotifications(ctx, mine.UserId, false)
	require.NoError(t, err)
	stored, err = r.User.Get(ctx, mine.UserId)
	require.NoError(t, err)
	assert.False(t, stored.EmailNotifications)
}

func TestCardRepo_Delete(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := mkUser(t, r, model.RoleAdmin)
	p := mkProject(t, r, admin.UserId)
	b := &model.Board{BoardId: id.GetUUID(), ProjectId: p.ProjectId, Name: "b", Template: model.BoardTemplateKanban}
	l := model.BoardList{ListId: id.GetUUID(), BoardId: b.BoardId, Name: "l"}
	require.NoError(t, r.Board.Create(ctx, b, []model.BoardList{l}))
	c := &model.Card{CardId: id.GetUUID(), ListId: l.ListId, Title: "c", IsActive: true}
	require.NoError(t, r.Card.Create(ctx, c))

	n, err := r.Card.Delete(ctx, c.CardId)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = r.Card.Delete(ctx, c.CardId)
	require.NoError(t, err)
	assert.Zero(t, n)
}
