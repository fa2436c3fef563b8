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
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/go-arcade/agileboard/pkg/log"
)

// BoardService manages boards, their lists, cards and comments.
type BoardService struct {
	repos         *repo.Repositories
	guard         *AccessGuard
	catalog       *Catalog
	members       *MembershipResolver
	notifications *NotificationService
}

func NewBoardService(repos *repo.Repositories, guard *AccessGuard, catalog *Catalog, members *MembershipResolver, notifications *NotificationService) *BoardService {
	return &BoardService{
		repos:         repos,
		guard:         guard,
		catalog:       catalog,
		members:       members,
		notifications: notifications,
	}
}

type CreateBoardReq struct {
	ProjectId   string              `json:"projectId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Template    model.BoardTemplate `json:"template"`
}

// CreateBoard creates a board with the default lists of its template.
func (s *BoardService) CreateBoard(ctx context.Context, user CurrentUser, req CreateBoardReq) (*model.Board, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, core.InvalidArgument("board name is required")
	}
	if req.Template == "" {
		req.Template = model.BoardTemplateKanban
	}
	if !req.Template.IsValid() {
		return nil, core.InvalidArgument("unknown board template " + string(req.Template))
	}

	d, err := s.guard.Require(ctx, user, ProjectResource(req.ProjectId), CapCreateBoard)
	if err != nil {
		return nil, err
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}

	board := &model.Board{
		BoardId:     id.GetUUID(),
		ProjectId:   req.ProjectId,
		Name:        req.Name,
		Description: req.Description,
		Template:    req.Template,
		CreatedBy:   user.UserId,
	}
	names := req.Template.DefaultLists()
	lists := make([]model.BoardList, 0, len(names))
	for i, name := range names {
		lists = append(lists, model.BoardList{
			ListId:   id.GetUUID(),
			BoardId:  board.BoardId,
			Name:     name,
			Position: i,
		})
	}

	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Board.Create(ctx, board, lists); err != nil {
			return core.Storage(err)
		}
		return appendActivity(ctx, tx, req.ProjectId, user.UserId, consts.ActivityBoardCreated,
			fmt.Sprintf("board %s created", board.Name),
			map[string]any{"boardId": board.BoardId, "template": board.Template})
	})
	if err != nil {
		return nil, err
	}
	board.Lists = lists
	return board, nil
}

// ListBoards returns the boards of a project the user can view.
func (s *BoardService) ListBoards(ctx context.Context, user CurrentUser, projectId string) ([]model.Board, error) {
	d, err := s.guard.Require(ctx, user, ProjectResource(projectId), CapView)
	if err != nil {
		return nil, err
	}
	boards, err := s.repos.Board.ListByProject(ctx, projectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	if d.Via != ViaAssignedCard {
		return boards, nil
	}

	visible := boards[:0]
	for _, b := range boards {
		bd, err := s.guard.Check(ctx, user, BoardResource(b.BoardId), CapView)
		if err != nil {
			return nil, err
		}
		if bd.Allowed {
			visible = append(visible, b)
		}
	}
	return visible, nil
}

// GetBoard returns the board with its lists and active cards.
func (s *BoardService) GetBoard(ctx context.Context, user CurrentUser, boardId string) (*model.Board, error) {
	if _, err := s.guard.Require(ctx, user, BoardResource(boardId), CapView); err != nil {
		return nil, err
	}
	board, err := s.repos.Board.Get(ctx, boardId)
	if err != nil {
		return nil, core.Storage(err)
	}
	lists, err := s.repos.Board.ListLists(ctx, boardId)
	if err != nil {
		return nil, core.Storage(err)
	}
	listIds := make([]string, 0, len(lists))
	for _, l := range lists {
		listIds = append(listIds, l.ListId)
	}
	cards, err := s.repos.Card.ListByLists(ctx, listIds)
	if err != nil {
		return nil, core.Storage(err)
	}
	byList := make(map[string][]model.Card, len(lists))
	for _, c := range cards {
		byList[c.ListId] = append(byList[c.ListId], c)
	}
	for i := range lists {
		lists[i].Cards = byList[lists[i].ListId]
	}
	board.Lists = lists
	return board, nil
}

// CreateList appends a list at the end of the board.
func (s *BoardService) CreateList(ctx context.Context, user CurrentUser, boardId, name string) (*model.BoardList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.InvalidArgument("list name is required")
	}
	d, err := s.guard.Require(ctx, user, BoardResource(boardId), CapCreateBoard)
	if err != nil {
		return nil, err
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}

	list := &model.BoardList{ListId: id.GetUUID(), BoardId: boardId, Name: name}
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		last, err := tx.Board.MaxListPosition(ctx, boardId)
		if err != nil {
			return core.Storage(err)
		}
		list.Position = last + 1
		return core.Storage(tx.Board.CreateList(ctx, list))
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

type CreateCardReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeId  string     `json:"assigneeId"`
	CoverColor  string     `json:"coverColor"`
	Position    *int       `json:"position"`
}

// CreateCard adds a card to a list. Developers creating an unassigned
// card are assigned to it.
func (s *BoardService) CreateCard(ctx context.Context, user CurrentUser, listId string, req CreateCardReq) (*model.Card, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, core.InvalidArgument("card title is required")
	}
	d, err := s.guard.Require(ctx, user, ListResource(listId), CapCreateCard)
	if err != nil {
		return nil, err
	}
	if err := CheckActionable(d.Project); err != nil {
		return nil, err
	}

	assignee, err := s.guard.ResolveNewCardAssignee(ctx, user, d.BoardId, req.AssigneeId)
	if err != nil {
		return nil, err
	}
	if assignee != "" {
		if err := s.guard.CheckAssignment(ctx, user, d.BoardId, assignee); err != nil {
			return nil, err
		}
	}

	card := &model.Card{
		CardId:      id.GetUUID(),
		ListId:      listId,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssigneeId:  assignee,
		CoverColor:  req.CoverColor,
		IsActive:    true,
	}
	var notifications []model.Notification
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if req.Position != nil {
			card.Position = *req.Position
		} else {
			last, err := tx.Card.MaxPosition(ctx, listId)
			if err != nil {
				return core.Storage(err)
			}
			card.Position = last + 1
		}
		if err := tx.Card.Create(ctx, card); err != nil {
			return core.Storage(err)
		}
		staged, err := s.assignmentNotice(ctx, tx, user, card)
		if err != nil {
			return err
		}
		notifications = staged
		return s.notifications.stage(ctx, tx, notifications)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.publish(notifications)
	return card, nil
}

// GetCard returns a single card the user can view.
func (s *BoardService) GetCard(ctx context.Context, user CurrentUser, cardId string) (*model.Card, error) {
	if _, err := s.guard.Require(ctx, user, CardResource(cardId), CapView); err != nil {
		return nil, err
	}
	card, err := s.repos.Card.Get(ctx, cardId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return card, nil
}

// ListCards returns the active cards of a list ordered by position.
func (s *BoardService) ListCards(ctx context.Context, user CurrentUser, listId string) ([]model.Card, error) {
	if _, err := s.guard.Require(ctx, user, ListResource(listId), CapView); err != nil {
		return nil, err
	}
	cards, err := s.repos.Card.ListByLists(ctx, []string{listId})
	if err != nil {
		return nil, core.Storage(err)
	}
	return cards, nil
}

// DeleteCard removes a card and its comments. It needs create-card on the
// card's board and a project that still accepts changes.
func (s *BoardService) DeleteCard(ctx context.Context, user CurrentUser, cardId string) error {
	d, err := s.guard.Require(ctx, user, CardResource(cardId), CapCreateCard)
	if err != nil {
		return err
	}
	if err := CheckActionable(d.Project); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		card, err := tx.Card.Get(ctx, cardId)
		if err != nil {
			if repo.IsNotFound(err) {
				return core.ResourceNotFound(string(ResourceCard), cardId)
			}
			return core.Storage(err)
		}
		if err := tx.Comment.DeleteByCard(ctx, cardId); err != nil {
			return core.Storage(err)
		}
		n, err := tx.Card.Delete(ctx, cardId)
		if err != nil {
			return core.Storage(err)
		}
		if n == 0 {
			return core.ResourceNotFound(string(ResourceCard), cardId)
		}
		return appendActivity(ctx, tx, d.Project.ProjectId, user.UserId, consts.ActivityCardDeleted,
			fmt.Sprintf("card %s deleted", card.Title),
			map[string]any{"cardId": cardId, "listId": card.ListId})
	})
}

type UpdateCardReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	CoverColor  *string    `json:"coverColor"`
	AssigneeId  *string    `json:"assigneeId"`
	ListId      *string    `json:"listId"`
	Position    *int       `json:"position"`
	IsActive    *bool      `json:"isActive"`
}

// UpdateCard edits a card. Changing the assignee needs assign-card and a
// target the user may assign to.
func (s *BoardService) UpdateCard(ctx context.Context, user CurrentUser, cardId string, req UpdateCardReq) (*model.Card, error) {
	d, err := s.guard.Require(ctx, user, CardResource(cardId), CapView)
	if err != nil {
		return nil, err
	}
	card, err := s.repos.Card.Get(ctx, cardId)
	if err != nil {
		return nil, core.Storage(err)
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, core.InvalidArgument("card title is required")
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.CoverColor != nil {
		fields["cover_color"] = *req.CoverColor
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.ListId != nil && *req.ListId != card.ListId {
		list, err := s.repos.Board.GetList(ctx, *req.ListId)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil, core.ResourceNotFound(string(ResourceList), *req.ListId)
			}
			return nil, core.Storage(err)
		}
		if list.BoardId != d.BoardId {
			return nil, core.InvalidArgument("cards can only move between lists of the same board")
		}
		fields["list_id"] = list.ListId
	}

	reassigned := req.AssigneeId != nil && *req.AssigneeId != card.AssigneeId
	if reassigned {
		if *req.AssigneeId == "" {
			if _, err := s.guard.Require(ctx, user, CardResource(cardId), CapAssignCard); err != nil {
				return nil, err
			}
		} else if err := s.guard.CheckAssignment(ctx, user, d.BoardId, *req.AssigneeId); err != nil {
			return nil, err
		}
		fields["assignee_id"] = *req.AssigneeId
	}
	if len(fields) == 0 {
		return card, nil
	}

	var (
		updated       *model.Card
		notifications []model.Notification
	)
	err = s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		if err := tx.Card.Update(ctx, cardId, fields); err != nil {
			return core.Storage(err)
		}
		card, err := tx.Card.Get(ctx, cardId)
		if err != nil {
			return core.Storage(err)
		}
		updated = card
		if !reassigned {
			return nil
		}
		staged, err := s.assignmentNotice(ctx, tx, user, card)
		if err != nil {
			return err
		}
		notifications = staged
		return s.notifications.stage(ctx, tx, notifications)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.publish(notifications)
	return updated, nil
}

// assignmentNotice builds the card_assigned notification for a card that
// was just given to someone other than the actor.
func (s *BoardService) assignmentNotice(ctx context.Context, tx *repo.Repositories, actor CurrentUser, card *model.Card) ([]model.Notification, error) {
	if card.AssigneeId == "" || card.AssigneeId == actor.UserId {
		return nil, nil
	}
	data := map[string]any{
		"cardTitle":  card.Title,
		"assignedBy": s.displayName(ctx, tx, actor),
	}
	if card.DueDate != nil {
		data["dueDate"] = card.DueDate.Format(time.DateOnly)
	}
	if list, err := tx.Board.GetList(ctx, card.ListId); err == nil {
		if board, err := tx.Board.Get(ctx, list.BoardId); err == nil {
			data["boardName"] = board.Name
		}
	}
	n, err := newNotification(card.AssigneeId, consts.NotificationCardAssigned,
		fmt.Sprintf("You have been assigned to card %q", card.Title), card.CardId, data)
	if err != nil {
		return nil, err
	}
	return []model.Notification{n}, nil
}

func (s *BoardService) displayName(ctx context.Context, tx *repo.Repositories, user CurrentUser) string {
	u, err := tx.User.Get(ctx, user.UserId)
	if err != nil {
		return user.Email
	}
	return u.FullName()
}

// AddComment comments on a card and notifies its assignee.
func (s *BoardService) AddComment(ctx context.Context, user CurrentUser, cardId, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, core.InvalidArgument("comment content is required")
	}
	if _, err := s.guard.Require(ctx, user, CardResource(cardId), CapView); err != nil {
		return nil, err
	}

	comment := &model.Comment{CommentId: id.GetUUID(), CardId: cardId, UserId: user.UserId, Content: content}
	var notifications []model.Notification
	err := s.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		card, err := tx.Card.Get(ctx, cardId)
		if err != nil {
			return core.Storage(err)
		}
		if err := tx.Comment.Create(ctx, comment); err != nil {
			return core.Storage(err)
		}
		if card.AssigneeId == "" || card.AssigneeId == user.UserId {
			return nil
		}
		n, err := newNotification(card.AssigneeId, consts.NotificationCardComment,
			fmt.Sprintf("New comment on card %q", card.Title), card.CardId,
			map[string]any{
				"cardTitle": card.Title,
				"commenter": s.displayName(ctx, tx, user),
				"comment":   content,
			})
		if err != nil {
			return err
		}
		notifications = []model.Notification{n}
		return s.notifications.stage(ctx, tx, notifications)
	})
	if err != nil {
		return nil, err
	}
	s.notifications.publish(notifications)
	return comment, nil
}

func (s *BoardService) ListComments(ctx context.Context, user CurrentUser, cardId string) ([]model.Comment, error) {
	if _, err := s.guard.Require(ctx, user, CardResource(cardId), CapView); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comment.ListByCard(ctx, cardId)
	if err != nil {
		return nil, core.Storage(err)
	}
	return comments, nil
}

// Assignee is a user a card of the board may be given to.
type Assignee struct {
	UserId    string     `json:"userId"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      model.Role `json:"role"`
}

// BoardDevelopers lists the users the caller may assign cards of the board to.
func (s *BoardService) BoardDevelopers(ctx context.Context, user CurrentUser, boardId string) ([]Assignee, error) {
	d, err := s.guard.Require(ctx, user, BoardResource(boardId), CapView)
	if err != nil {
		return nil, err
	}
	grant := s.catalog.Grant(d.Role, CapAssignCard)
	if grant == GrantNever {
		return []Assignee{}, nil
	}

	members, err := s.repos.ProjectMember.ListActive(ctx, d.Project.ProjectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	out := make([]Assignee, 0, len(members)+1)
	self := false
	for _, m := range members {
		if grant == GrantSelfOrEscalation && m.UserId != user.UserId {
			role, err := s.members.EffectiveRole(ctx, m.UserId, d.Project.ProjectId)
			if err != nil {
				log.Ctx(ctx).Warnw("resolve member role failed", "user", m.UserId, "error", err)
				continue
			}
			if role != model.RoleProductOwner {
				continue
			}
		}
		if m.UserId == user.UserId {
			self = true
		}
		out = append(out, Assignee{
			UserId:    m.UserId,
			Email:     m.Email,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Role:      m.Role,
		})
	}
	if !self {
		if u, err := s.repos.User.Get(ctx, user.UserId); err == nil {
			out = append(out, Assignee{
				UserId:    u.UserId,
				Email:     u.Email,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Role:      d.Role,
			})
		}
	}
	return out, nil
}
