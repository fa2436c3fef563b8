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

package model

// Role is the closed set of roles a user holds globally or in a project.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProductOwner Role = "product_owner"
	RoleDeveloper    Role = "developer"
	RoleMember       Role = "member"
)

// Roles lists every role, highest rank first.
var Roles = []Role{RoleAdmin, RoleProductOwner, RoleDeveloper, RoleMember}

// ParseRole returns the role named by s.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) IsValid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Rank orders roles for display only. Capabilities never compare ranks.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 4
	case RoleProductOwner:
		return 3
	case RoleDeveloper:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

func (r Role) String() string {
	return string(r)
}
