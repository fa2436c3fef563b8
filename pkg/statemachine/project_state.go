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

package statemachine

import "slices"

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
	ProjectArchived  ProjectStatus = "archived"
)

// ProjectStatuses lists every project status in lifecycle order.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning,
	ProjectActive,
	ProjectOnHold,
	ProjectCompleted,
	ProjectCancelled,
	ProjectArchived,
}

const (
	EventStart    Event = "start"
	EventPause    Event = "pause"
	EventResume   Event = "resume"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
	EventObsolete Event = "obsolete"
	EventArchive  Event = "archive"
)

// ParseProjectStatus returns the status named by s.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	for _, st := range ProjectStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s ProjectStatus) IsValid() bool {
	_, ok := ParseProjectStatus(string(s))
	return ok
}

// IsActionable reports whether new boards and cards may be created in a
// project with this status.
func (s ProjectStatus) IsActionable() bool {
	switch s {
	case ProjectCompleted, ProjectCancelled, ProjectArchived:
		return false
	default:
		return true
	}
}

// IsOpen reports whether the project is still being worked on.
func (s ProjectStatus) IsOpen() bool {
	return s == ProjectActive || s == ProjectOnHold
}

// NewProjectStateMachine builds the project lifecycle machine positioned
// at current.
func NewProjectStateMachine(current ProjectStatus) *StateMachine[ProjectStatus] {
	sm := NewWithState(current)

	sm.AddEventTransition(ProjectPlanning, EventStart, ProjectActive).
		AddEventTransition(ProjectActive, EventPause, ProjectOnHold).
		AddEventTransition(ProjectOnHold, EventResume, ProjectActive).
		AddEventTransition(ProjectActive, EventComplete, ProjectCompleted).
		AddEventTransition(ProjectOnHold, EventComplete, ProjectCompleted).
		AddEventTransition(ProjectCompleted, EventArchive, ProjectArchived).
		AddEventTransition(ProjectCancelled, EventArchive, ProjectArchived)

	// cancellation (and its obsolescence variant) is reachable from every
	// state that is not already closed
	for _, from := range []ProjectStatus{ProjectPlanning, ProjectActive, ProjectOnHold} {
		sm.AddEventTransition(from, EventCancel, ProjectCancelled).
			AddEventTransition(from, EventObsolete, ProjectCancelled)
	}

	return sm
}

var projectMachine = NewProjectStateMachine(ProjectPlanning)

// NextProjectStatuses lists the statuses reachable from from, in
// lifecycle order.
func NextProjectStatuses(from ProjectStatus) []ProjectStatus {
	next := projectMachine.GetValidNextStates(from)
	out := make([]ProjectStatus, 0, len(next))
	for _, st := range ProjectStatuses {
		if slices.Contains(next, st) {
			out = append(out, st)
		}
	}
	return out
}

// ProjectLifecycleDot renders the project lifecycle as a dot graph.
func ProjectLifecycleDot() string {
	return projectMachine.ToDot("project_lifecycle")
}
