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
	"strings"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/consts"
	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/statemachine"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"

	// projects closer than this to their planned end are medium risk
	riskWarningDays = 7
)

// requested status per event, used to report refused transitions
var eventTargets = map[statemachine.Event]model.ProjectStatus{
	statemachine.EventStart:    statemachine.ProjectActive,
	statemachine.EventPause:    statemachine.ProjectOnHold,
	statemachine.EventResume:   statemachine.ProjectActive,
	statemachine.EventComplete: statemachine.ProjectCompleted,
	statemachine.EventCancel:   statemachine.ProjectCancelled,
	statemachine.EventObsolete: statemachine.ProjectCancelled,
	statemachine.EventArchive:  statemachine.ProjectArchived,
}

// ProjectLifecycle moves projects through their status machine.
type ProjectLifecycle struct {
	repos         *repo.Repositories
	guard         *AccessGuard
	notifications *NotificationService
	observer      *metrics.Collectors
	now           func() time.Time
}

func NewProjectLifecycle(repos *repo.Repositories, guard *AccessGuard, notifications *NotificationService, observer *metrics.Collectors) *ProjectLifecycle {
	return &ProjectLifecycle{
		repos:         repos,
		guard:         guard,
		notifications: notifications,
		observer:      observer,
		now:           time.Now,
	}
}

// transition describes one lifecycle operation.
type transition struct {
	event       statemachine.Event
	activity    string
	description string
	extra       map[string]any
	// check validates the request once the caller is authorized
	check func() error
	// prepare runs inside the transaction once the edge is validated,
	// before the status update, and may add columns to it
	prepare func(ctx context.Context, tx *repo.Repositories, p *model.Project, fields map[string]any) error
	// notify builds the notifications written with the transition
	notify func(ctx context.Context, tx *repo.Repositories, p *model.Project) ([]model.Notification, error)
}

func (l *ProjectLifecycle) apply(ctx context.Context, user CurrentUser, projectId string, t transition) (*model.Project, error) {
	if _, err := l.guard.Require(ctx, user, ProjectResource(projectId), CapChangeStatus); err != nil {
		return nil, err
	}
	if t.check != nil {
		if err := t.check(); err != nil {
			return nil, err
		}
	}

	var (
		updated       *model.Project
		notifications []model.Notification
	)
	err := l.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		p, err := tx.Project.Get(ctx, projectId)
		if err != nil {
			if repo.IsNotFound(err) {
				return core.ResourceNotFound(string(ResourceProject), projectId)
			}
			return core.Storage(err)
		}

		fields := map[string]any{}
		sm := statemachine.NewProjectStateMachine(p.Status)
		sm.OnTransition(func(from, to model.ProjectStatus, _ statemachine.Event) error {
			if t.prepare != nil {
				if err := t.prepare(ctx, tx, p, fields); err != nil {
					return err
				}
			}
			rows, err := tx.Project.UpdateStatus(ctx, projectId, from, to, fields)
			if err != nil {
				return core.Storage(err)
			}
			if rows == 0 {
				// lost a concurrent transition
				current, err := tx.Project.Get(ctx, projectId)
				if err != nil {
					return core.Storage(err)
				}
				return core.InvalidTransition(string(current.Status), string(to))
			}
			return nil
		})

		from := p.Status
		if err := sm.TriggerEvent(t.event); err != nil {
			var te *statemachine.TransitionError[model.ProjectStatus]
			if errors.As(err, &te) {
				return core.InvalidTransition(string(from), string(eventTargets[t.event]))
			}
			return err
		}
		to := sm.Current()

		extra := map[string]any{"from": from, "to": to}
		for k, v := range t.extra {
			extra[k] = v
		}
		description := t.description
		if description == "" {
			description = fmt.Sprintf("project %s moved from %s to %s", p.Name, from, to)
		}
		if err := appendActivity(ctx, tx, projectId, user.UserId, t.activity, description, extra); err != nil {
			return err
		}

		if t.notify != nil {
			notifications, err = t.notify(ctx, tx, p)
			if err != nil {
				return err
			}
			if err := l.notifications.stage(ctx, tx, notifications); err != nil {
				return err
			}
		}

		updated, err = tx.Project.Get(ctx, projectId)
		return core.Storage(err)
	})
	if err != nil {
		l.observer.ObserveTransition(string(t.event), transitionResult(err))
		return nil, err
	}

	l.observer.ObserveTransition(string(t.event), "ok")
	l.notifications.publish(notifications)
	log.Ctx(ctx).Infow("project status changed",
		"project", projectId,
		"event", t.event,
		"status", updated.Status,
		"user", user.UserId,
	)
	return updated, nil
}

func transitionResult(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, core.ErrStorageFailure):
		return "error"
	default:
		return "rejected"
	}
}

// Start moves a planned project to active. A nil startDate means now.
func (l *ProjectLifecycle) Start(ctx context.Context, user CurrentUser, projectId string, startDate *time.Time) (*model.Project, error) {
	return l.apply(ctx, user, projectId, transition{
		event:    statemachine.EventStart,
		activity: consts.ActivityProjectStarted,
		prepare: func(_ context.Context, _ *repo.Repositories, _ *model.Project, fields map[string]any) error {
			start := l.now()
			if startDate != nil {
				start = *startDate
			}
			fields["start_date"] = start
			return nil
		},
	})
}

func (l *ProjectLifecycle) Pause(ctx context.Context, user CurrentUser, projectId, reason string) (*model.Project, error) {
	t := transition{event: statemachine.EventPause, activity: consts.ActivityProjectPaused}
	if reason = strings.TrimSpace(reason); reason != "" {
		t.extra = map[string]any{"reason": reason}
	}
	return l.apply(ctx, user, projectId, t)
}

func (l *ProjectLifecycle) Resume(ctx context.Context, user CurrentUser, projectId string) (*model.Project, error) {
	return l.apply(ctx, user, projectId, transition{
		event:    statemachine.EventResume,
		activity: consts.ActivityProjectResumed,
	})
}

// Complete closes a project once no sprint is running. notes are kept
// with the activity entry.
func (l *ProjectLifecycle) Complete(ctx context.Context, user CurrentUser, projectId, notes string) (*model.Project, error) {
	t := transition{
		event:    statemachine.EventComplete,
		activity: consts.ActivityProjectCompleted,
		extra:    map[string]any{},
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		t.extra["completionNotes"] = notes
	}
	t.prepare = func(ctx context.Context, tx *repo.Repositories, p *model.Project, fields map[string]any) error {
		active, err := tx.Sprint.CountActive(ctx, p.ProjectId)
		if err != nil {
			return core.Storage(err)
		}
		if active > 0 {
			return core.ActiveSprintsExist(active)
		}
		stats, err := tx.Sprint.WorkStats(ctx, p.ProjectId)
		if err != nil {
			return core.Storage(err)
		}
		t.extra["stats"] = ComputeCompletion(stats)
		fields["completion_percentage"] = 100.0
		fields["actual_end_date"] = l.now()
		return nil
	}
	return l.apply(ctx, user, projectId, t)
}

// Cancel stops a project that is not closed yet. reason is required.
func (l *ProjectLifecycle) Cancel(ctx context.Context, user CurrentUser, projectId, reason string) (*model.Project, error) {
	reason = strings.TrimSpace(reason)
	return l.apply(ctx, user, projectId, transition{
		event:    statemachine.EventCancel,
		activity: consts.ActivityProjectCancelled,
		extra:    map[string]any{"reason": reason},
		check:    requireReason(reason, "a cancellation reason is required"),
		prepare: func(_ context.Context, _ *repo.Repositories, _ *model.Project, fields map[string]any) error {
			fields["actual_end_date"] = l.now()
			return nil
		},
	})
}

func requireReason(reason, msg string) func() error {
	return func() error {
		if reason == "" {
			return core.InvalidArgument(msg)
		}
		return nil
	}
}

func (l *ProjectLifecycle) Archive(ctx context.Context, user CurrentUser, projectId string) (*model.Project, error) {
	return l.apply(ctx, user, projectId, transition{
		event:    statemachine.EventArchive,
		activity: consts.ActivityProjectArchived,
		prepare: func(_ context.Context, _ *repo.Repositories, _ *model.Project, fields map[string]any) error {
			fields["archived_at"] = l.now()
			return nil
		},
	})
}

// MarkObsolete cancels the project and tells every other active member.
func (l *ProjectLifecycle) MarkObsolete(ctx context.Context, user CurrentUser, projectId, reason string) (*model.Project, error) {
	reason = strings.TrimSpace(reason)
	return l.apply(ctx, user, projectId, transition{
		event:    statemachine.EventObsolete,
		activity: consts.ActivityProjectMarkedObsolete,
		extra:    map[string]any{"reason": reason},
		check:    requireReason(reason, "a reason is required to mark a project obsolete"),
		prepare: func(_ context.Context, _ *repo.Repositories, _ *model.Project, fields map[string]any) error {
			fields["actual_end_date"] = l.now()
			return nil
		},
		notify: func(ctx context.Context, tx *repo.Repositories, p *model.Project) ([]model.Notification, error) {
			userIds, err := tx.ProjectMember.ListActiveUserIds(ctx, p.ProjectId)
			if err != nil {
				return nil, core.Storage(err)
			}
			content := fmt.Sprintf("Project %s has been marked obsolete: %s", p.Name, reason)
			data := map[string]any{
				"projectName": p.Name,
				"clientName":  p.ClientName,
				"reason":      reason,
			}
			out := make([]model.Notification, 0, len(userIds))
			for _, userId := range userIds {
				if userId == user.UserId {
					continue
				}
				n, err := newNotification(userId, consts.NotificationProjectObsolete, content, p.ProjectId, data)
				if err != nil {
					return nil, err
				}
				out = append(out, n)
			}
			return out, nil
		},
	})
}

type UpdateDatesReq struct {
	StartDate      *time.Time `json:"startDate"`
	PlannedEndDate *time.Time `json:"plannedEndDate"`
}

// UpdateDates changes the schedule of a project and records one history
// entry with the old and new values.
func (l *ProjectLifecycle) UpdateDates(ctx context.Context, user CurrentUser, projectId string, req UpdateDatesReq) (*model.Project, error) {
	if req.StartDate == nil && req.PlannedEndDate == nil {
		return nil, core.InvalidArgument("no date to update")
	}
	if _, err := l.guard.Require(ctx, user, ProjectResource(projectId), CapChangeStatus); err != nil {
		return nil, err
	}

	var updated *model.Project
	err := l.repos.Transaction(ctx, func(tx *repo.Repositories) error {
		p, err := tx.Project.Get(ctx, projectId)
		if err != nil {
			return core.Storage(err)
		}

		start, end := p.StartDate, p.PlannedEndDate
		fields := map[string]any{}
		if req.StartDate != nil {
			start = req.StartDate
			fields["start_date"] = *req.StartDate
		}
		if req.PlannedEndDate != nil {
			end = req.PlannedEndDate
			fields["planned_end_date"] = *req.PlannedEndDate
		}
		if start != nil && end != nil && end.Before(*start) {
			return core.InvalidArgument("planned end date is before the start date")
		}

		if err := tx.Project.Update(ctx, projectId, fields); err != nil {
			return core.Storage(err)
		}
		extra := map[string]any{
			"old": map[string]any{"startDate": p.StartDate, "plannedEndDate": p.PlannedEndDate},
			"new": map[string]any{"startDate": start, "plannedEndDate": end},
		}
		if err := appendActivity(ctx, tx, projectId, user.UserId, consts.ActivityDatesUpdated,
			fmt.Sprintf("dates of project %s updated", p.Name), extra); err != nil {
			return err
		}
		updated, err = tx.Project.Get(ctx, projectId)
		return core.Storage(err)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateCompletion recomputes and stores the completion percentage.
func (l *ProjectLifecycle) UpdateCompletion(ctx context.Context, user CurrentUser, projectId string) (*CompletionStats, error) {
	if _, err := l.guard.Require(ctx, user, ProjectResource(projectId), CapView); err != nil {
		return nil, err
	}
	stats, err := l.repos.Sprint.WorkStats(ctx, projectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	completion := ComputeCompletion(stats)
	if err := l.repos.Project.Update(ctx, projectId, map[string]any{"completion_percentage": completion.Completion}); err != nil {
		return nil, core.Storage(err)
	}
	return &completion, nil
}

// CheckActionable refuses work on closed projects.
func CheckActionable(p *model.Project) error {
	if !p.Status.IsActionable() {
		return core.ProjectNotActionable(string(p.Status))
	}
	return nil
}

type ProjectHealth struct {
	ProjectId         string                   `json:"projectId"`
	Name              string                   `json:"name"`
	Status            model.ProjectStatus      `json:"status"`
	Completion        CompletionStats          `json:"completion"`
	DaysRemaining     *int                     `json:"daysRemaining"`
	IsOverdue         bool                     `json:"isOverdue"`
	ActiveSprints     int64                    `json:"activeSprints"`
	OverdueSprints    int64                    `json:"overdueSprints"`
	OverdueMilestones []model.ProjectMilestone `json:"overdueMilestones"`
	RiskLevel         string                   `json:"riskLevel"`
	RiskFactors       []string                 `json:"riskFactors"`
	NextStatuses      []model.ProjectStatus    `json:"nextStatuses"`
}

// Health summarizes progress and schedule risk of a project.
func (l *ProjectLifecycle) Health(ctx context.Context, user CurrentUser, projectId string) (*ProjectHealth, error) {
	d, err := l.guard.Require(ctx, user, ProjectResource(projectId), CapView)
	if err != nil {
		return nil, err
	}
	return l.health(ctx, d.Project)
}

func (l *ProjectLifecycle) health(ctx context.Context, p *model.Project) (*ProjectHealth, error) {
	now := l.now()
	stats, err := l.repos.Sprint.WorkStats(ctx, p.ProjectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	active, err := l.repos.Sprint.CountActive(ctx, p.ProjectId)
	if err != nil {
		return nil, core.Storage(err)
	}
	overdueSprints, err := l.repos.Sprint.CountOverdue(ctx, p.ProjectId, now)
	if err != nil {
		return nil, core.Storage(err)
	}
	milestones, err := l.repos.Milestone.ListOverdue(ctx, p.ProjectId, now)
	if err != nil {
		return nil, core.Storage(err)
	}

	h := &ProjectHealth{
		ProjectId:         p.ProjectId,
		Name:              p.Name,
		Status:            p.Status,
		Completion:        ComputeCompletion(stats),
		IsOverdue:         p.IsOverdue(now),
		ActiveSprints:     active,
		OverdueSprints:    overdueSprints,
		OverdueMilestones: milestones,
		NextStatuses:      statemachine.NextProjectStatuses(p.Status),
	}
	if days, ok := p.DaysRemaining(now); ok {
		h.DaysRemaining = &days
	}
	h.RiskLevel, h.RiskFactors = assessRisk(h)
	return h, nil
}

// assessRisk grades the schedule risk and names what raised it.
func assessRisk(h *ProjectHealth) (string, []string) {
	level := RiskLow
	factors := make([]string, 0)
	switch {
	case h.IsOverdue:
		level = RiskHigh
		factors = append(factors, "project is past its planned end date")
	case h.DaysRemaining != nil && *h.DaysRemaining < riskWarningDays:
		level = RiskMedium
		factors = append(factors, fmt.Sprintf("less than %d days remaining", riskWarningDays))
	}
	if h.OverdueSprints > 0 {
		level = RiskHigh
		factors = append(factors, fmt.Sprintf("%d overdue sprint(s)", h.OverdueSprints))
	}
	if n := len(h.OverdueMilestones); n > 0 {
		level = RiskHigh
		factors = append(factors, fmt.Sprintf("%d overdue milestone(s)", n))
	}
	return level, factors
}

// RequiringAttention lists open projects visible to user whose risk is
// medium or high.
func (l *ProjectLifecycle) RequiringAttention(ctx context.Context, user CurrentUser) ([]ProjectHealth, error) {
	projects, err := l.guard.VisibleProjects(ctx, user, statemachine.ProjectActive, statemachine.ProjectOnHold)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectHealth, 0)
	for i := range projects {
		h, err := l.health(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		if h.RiskLevel != RiskLow {
			out = append(out, *h)
		}
	}
	return out, nil
}
