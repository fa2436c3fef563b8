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

	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/log"
)

// CurrentUser is the authenticated caller as produced by the auth middleware.
type CurrentUser struct {
	UserId string `json:"userId"`
	Email  string `json:"email"`
}

type ResourceKind string

const (
	ResourceProject ResourceKind = "project"
	ResourceBoard   ResourceKind = "board"
	ResourceList    ResourceKind = "list"
	ResourceCard    ResourceKind = "card"
)

type Resource struct {
	Kind ResourceKind
	ID   string
}

func ProjectResource(projectId string) Resource { return Resource{Kind: ResourceProject, ID: projectId} }
func BoardResource(boardId string) Resource     { return Resource{Kind: ResourceBoard, ID: boardId} }
func ListResource(listId string) Resource       { return Resource{Kind: ResourceList, ID: listId} }
func CardResource(cardId string) Resource       { return Resource{Kind: ResourceCard, ID: cardId} }

// Via names the rule that granted view access.
type Via string

const (
	ViaNone         Via = ""
	ViaAdmin        Via = "admin"
	ViaMembership   Via = "membership"
	ViaCrossProject Via = "cross_project"
	ViaAssignedCard Via = "assigned_card"
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed    bool
	Reason     core.Code
	Capability Capability
	Role       model.Role
	Via        Via
	Resource   Resource

	// resolved while checking, nil when the resource does not exist
	Project *model.Project
	BoardId string
}

// Err converts a deny into its typed error. Allowed decisions return nil.
func (d *Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case core.CodeResourceNotFound:
		return core.ResourceNotFound(string(d.Resource.Kind), d.Resource.ID)
	case core.CodeInsufficientRole:
		return core.InsufficientRole(string(d.Capability), string(d.Role))
	default:
		return core.NotAMember(string(d.Capability))
	}
}

// target is a resource resolved to the project (and board) it lives in.
type target struct {
	project *model.Project
	boardId string
}

// AccessGuard decides per resource whether a user holds a capability.
type AccessGuard struct {
	repos    *repo.Repositories
	catalog  *Catalog
	members  *MembershipResolver
	observer *metrics.Collectors
}

func NewAccessGuard(repos *repo.Repositories, catalog *Catalog, members *MembershipResolver, observer *metrics.Collectors) *AccessGuard {
	return &AccessGuard{repos: repos, catalog: catalog, members: members, observer: observer}
}

// Check evaluates capability on res for user. Only infrastructure failures
// and unknown users are returned as errors; every other outcome is a
// Decision.
func (g *AccessGuard) Check(ctx context.Context, user CurrentUser, res Resource, capability Capability) (*Decision, error) {
	d := &Decision{Capability: capability, Resource: res}

	t, err := g.locate(ctx, res)
	if err != nil {
		if repo.IsNotFound(err) {
			return g.deny(ctx, user, d, core.CodeResourceNotFound), nil
		}
		return nil, core.Storage(err)
	}
	d.Project = t.project
	d.BoardId = t.boardId

	s, err := g.members.resolve(ctx, user.UserId, t.project.ProjectId)
	if err != nil {
		return nil, err
	}
	d.Role = s.role

	via, err := g.viewVia(ctx, s, t)
	if err != nil {
		return nil, err
	}
	if via == ViaNone {
		return g.deny(ctx, user, d, core.CodeNotAMember), nil
	}
	d.Via = via

	if capability == CapView {
		return g.allow(d), nil
	}

	switch g.catalog.Grant(s.role, capability) {
	case GrantAlways, GrantSelfOrEscalation:
		return g.allow(d), nil
	case GrantIfProjectRole:
		if via == ViaMembership && s.member.Role == model.RoleProductOwner {
			return g.allow(d), nil
		}
	case GrantIfProjectRoleOrPortfolio:
		if via == ViaCrossProject || (via == ViaMembership && s.member.Role == model.RoleProductOwner) {
			return g.allow(d), nil
		}
	case GrantIfProjectManager:
		if t.project.ProjectManagerId != "" && t.project.ProjectManagerId == user.UserId {
			return g.allow(d), nil
		}
	case GrantIfMemberOrAssigned:
		if via == ViaMembership || via == ViaAssignedCard {
			return g.allow(d), nil
		}
	}
	return g.deny(ctx, user, d, core.CodeInsufficientRole), nil
}

// Require is Check with a deny converted to its error.
func (g *AccessGuard) Require(ctx context.Context, user CurrentUser, res Resource, capability Capability) (*Decision, error) {
	d, err := g.Check(ctx, user, res, capability)
	if err != nil {
		return nil, err
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// viewVia walks the view rules in order and returns the first that matches.
func (g *AccessGuard) viewVia(ctx context.Context, s *standing, t *target) (Via, error) {
	if s.role == model.RoleAdmin {
		return ViaAdmin, nil
	}
	if s.member != nil {
		return ViaMembership, nil
	}

	cross, err := g.members.crossProject(ctx, s, t.project.ProjectId)
	if err != nil {
		return ViaNone, err
	}
	if cross {
		return ViaCrossProject, nil
	}

	var assigned int64
	if t.boardId != "" {
		assigned, err = g.repos.Card.CountAssignedOnBoard(ctx, t.boardId, s.user.UserId)
	} else {
		assigned, err = g.repos.Card.CountAssignedInProject(ctx, t.project.ProjectId, s.user.UserId)
	}
	if err != nil {
		return ViaNone, core.Storage(err)
	}
	if assigned > 0 {
		return ViaAssignedCard, nil
	}
	return ViaNone, nil
}

func (g *AccessGuard) locate(ctx context.Context, res Resource) (*target, error) {
	t := &target{}
	boardId := ""
	switch res.Kind {
	case ResourceProject:
		project, err := g.repos.Project.Get(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		t.project = project
		return t, nil
	case ResourceBoard:
		boardId = res.ID
	case ResourceList:
		list, err := g.repos.Board.GetList(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		boardId = list.BoardId
	case ResourceCard:
		card, err := g.repos.Card.Get(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		list, err := g.repos.Board.GetList(ctx, card.ListId)
		if err != nil {
			return nil, err
		}
		boardId = list.BoardId
	default:
		return nil, core.InvalidArgument("unknown resource kind " + string(res.Kind))
	}

	board, err := g.repos.Board.Get(ctx, boardId)
	if err != nil {
		return nil, err
	}
	project, err := g.repos.Project.Get(ctx, board.ProjectId)
	if err != nil {
		return nil, err
	}
	t.project = project
	t.boardId = board.BoardId
	return t, nil
}

// CheckAssignment enforces who user may put on a card of boardId.
func (g *AccessGuard) CheckAssignment(ctx context.Context, user CurrentUser, boardId, assigneeId string) error {
	d, err := g.Require(ctx, user, BoardResource(boardId), CapAssignCard)
	if err != nil {
		return err
	}
	if assigneeId == user.UserId {
		return nil
	}

	assignee, err := g.repos.User.Get(ctx, assigneeId)
	if err != nil {
		if repo.IsNotFound(err) {
			return core.ResourceNotFound("user", assigneeId)
		}
		return core.Storage(err)
	}

	projectId := d.Project.ProjectId
	if g.catalog.Grant(d.Role, CapAssignCard) == GrantSelfOrEscalation {
		role, err := g.members.EffectiveRole(ctx, assignee.UserId, projectId)
		if err != nil {
			return err
		}
		if role != model.RoleProductOwner {
			g.observer.ObserveAccess(string(CapAssignCard), "deny", "assignee_not_product_owner")
			return core.InsufficientRole(string(CapAssignCard), string(d.Role))
		}
		return nil
	}

	if assignee.UserId == d.Project.OwnerId || assignee.UserId == d.Project.CreatedBy {
		return nil
	}
	member, err := g.members.Membership(ctx, assignee.UserId, projectId)
	if err != nil {
		return err
	}
	if member == nil {
		return core.InvalidArgument("assignee is not part of the project")
	}
	return nil
}

// ResolveNewCardAssignee returns the assignee to store on a new card.
// Developers creating an unassigned card take it themselves.
func (g *AccessGuard) ResolveNewCardAssignee(ctx context.Context, user CurrentUser, boardId, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	board, err := g.repos.Board.Get(ctx, boardId)
	if err != nil {
		if repo.IsNotFound(err) {
			return "", core.ResourceNotFound(string(ResourceBoard), boardId)
		}
		return "", core.Storage(err)
	}
	role, err := g.members.EffectiveRole(ctx, user.UserId, board.ProjectId)
	if err != nil {
		return "", err
	}
	if role == model.RoleDeveloper {
		return user.UserId, nil
	}
	return "", nil
}

func (g *AccessGuard) allow(d *Decision) *Decision {
	d.Allowed = true
	g.observer.ObserveAccess(string(d.Capability), "allow", string(d.Via))
	return d
}

func (g *AccessGuard) deny(ctx context.Context, user CurrentUser, d *Decision, reason core.Code) *Decision {
	d.Allowed = false
	d.Reason = reason
	g.observer.ObserveAccess(string(d.Capability), "deny", string(reason))
	log.Ctx(ctx).Debugw("access denied",
		"user", user.UserId,
		"resource", d.Resource.Kind,
		"id", d.Resource.ID,
		"capability", d.Capability,
		"role", d.Role,
		"reason", reason,
	)
	return d
}

// VisibleProjects lists the projects user passes the view rule on,
// optionally restricted to statuses.
func (g *AccessGuard) VisibleProjects(ctx context.Context, user CurrentUser, statuses ...model.ProjectStatus) ([]model.Project, error) {
	u, err := g.repos.User.Get(ctx, user.UserId)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, core.UserNotFound(user.UserId)
		}
		return nil, core.Storage(err)
	}
	if u.IsAdmin() {
		projects, err := g.repos.Project.List(ctx, statuses...)
		return projects, core.Storage(err)
	}

	memberOf, err := g.repos.ProjectMember.ListActiveProjectIds(ctx, u.UserId)
	if err != nil {
		return nil, core.Storage(err)
	}
	assigned, err := g.repos.Card.AssignedProjectIds(ctx, u.UserId)
	if err != nil {
		return nil, core.Storage(err)
	}
	seen := make(map[string]struct{}, len(memberOf)+len(assigned))
	ids := make([]string, 0, len(memberOf)+len(assigned))
	for _, projectId := range append(memberOf, assigned...) {
		if _, ok := seen[projectId]; ok {
			continue
		}
		seen[projectId] = struct{}{}
		ids = append(ids, projectId)
	}

	if u.GlobalRole == model.RoleProductOwner {
		candidates, err := g.repos.Project.List(ctx, statuses...)
		if err != nil {
			return nil, core.Storage(err)
		}
		for _, p := range candidates {
			if _, ok := seen[p.ProjectId]; ok {
				continue
			}
			shares, err := g.repos.Project.SharesAdminPortfolio(ctx, u.UserId, p.ProjectId)
			if err != nil {
				return nil, core.Storage(err)
			}
			if shares {
				seen[p.ProjectId] = struct{}{}
				ids = append(ids, p.ProjectId)
			}
		}
	}

	projects, err := g.repos.Project.ListByIds(ctx, ids, statuses...)
	if err != nil {
		return nil, core.Storage(err)
	}
	return projects, nil
}
