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

import "github.com/go-arcade/agileboard/internal/engine/model"

// Capability is an action checked against a resource.
type Capability string

const (
	CapView          Capability = "view"
	CapCreateBoard   Capability = "create-board"
	CapCreateCard    Capability = "create-card"
	CapAssignCard    Capability = "assign-card"
	CapChangeStatus  Capability = "change-status"
	CapManageMembers Capability = "manage-members"
)

var AllCapabilities = []Capability{
	CapView, CapCreateBoard, CapCreateCard, CapAssignCard, CapChangeStatus, CapManageMembers,
}

// Grant says under which condition a role holds a capability.
type Grant int

const (
	GrantNever Grant = iota
	GrantAlways
	// GrantIfProjectRole needs an active membership carrying the role.
	GrantIfProjectRole
	// GrantIfProjectRoleOrPortfolio also accepts the product owner
	// portfolio rule.
	GrantIfProjectRoleOrPortfolio
	// GrantIfProjectManager needs the user to be the project's manager.
	GrantIfProjectManager
	// GrantSelfOrEscalation limits assignment targets to self or a
	// product owner of the project.
	GrantSelfOrEscalation
	// GrantIfMemberOrAssigned needs an active membership or a card
	// assigned on the board.
	GrantIfMemberOrAssigned
)

func (g Grant) String() string {
	switch g {
	case GrantAlways:
		return "always"
	case GrantIfProjectRole:
		return "if_project_role"
	case GrantIfProjectRoleOrPortfolio:
		return "if_project_role_or_portfolio"
	case GrantIfProjectManager:
		return "if_project_manager"
	case GrantSelfOrEscalation:
		return "self_or_escalation"
	case GrantIfMemberOrAssigned:
		return "if_member_or_assigned"
	default:
		return "never"
	}
}

// Catalog is the fixed role to capability table.
type Catalog struct {
	grants map[model.Role]map[Capability]Grant
}

func NewCatalog() *Catalog {
	return &Catalog{grants: map[model.Role]map[Capability]Grant{
		model.RoleAdmin: {
			CapView:          GrantAlways,
			CapCreateBoard:   GrantAlways,
			CapCreateCard:    GrantAlways,
			CapAssignCard:    GrantAlways,
			CapChangeStatus:  GrantAlways,
			CapManageMembers: GrantAlways,
		},
		model.RoleProductOwner: {
			CapView:          GrantIfProjectRoleOrPortfolio,
			CapCreateBoard:   GrantIfProjectRoleOrPortfolio,
			CapCreateCard:    GrantAlways,
			CapAssignCard:    GrantAlways,
			CapChangeStatus:  GrantIfProjectManager,
			CapManageMembers: GrantIfProjectRole,
		},
		model.RoleDeveloper: {
			CapView:       GrantIfMemberOrAssigned,
			CapCreateCard: GrantAlways,
			CapAssignCard: GrantSelfOrEscalation,
		},
		model.RoleMember: {
			CapView: GrantIfMemberOrAssigned,
		},
	}}
}

// Grant returns the condition under which role holds capability.
func (c *Catalog) Grant(role model.Role, capability Capability) Grant {
	return c.grants[role][capability]
}

// Capabilities lists what role may ever do, in a stable order.
func (c *Catalog) Capabilities(role model.Role) []Capability {
	out := make([]Capability, 0, len(AllCapabilities))
	for _, capability := range AllCapabilities {
		if c.Grant(role, capability) != GrantNever {
			out = append(out, capability)
		}
	}
	return out
}
