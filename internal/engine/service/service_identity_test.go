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

	"github.com/go-arcade/agileboard/internal/engine/core"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_AuthenticateProvisions(t *testing.T) {
	f := newFixture(t)
	f.provider.tokens["good"] = &identity.Payload{
		Id:       "ext-1",
		Email:    "ada@example.com",
		Metadata: map[string]any{"role": "product_owner", "full_name": "Ada Lovelace"},
	}

	user, err := f.svc.Identity.Authenticate(f.ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, model.RoleProductOwner, user.GlobalRole)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.Equal(t, "ext-1", user.ExternalID())

	again, err := f.svc.Identity.Authenticate(f.ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, user.UserId, again.UserId)

	_, err = f.svc.Identity.Authenticate(f.ctx, "bad")
	assert.ErrorIs(t, err, core.ErrAuthenticationFailure)
	_, err = f.svc.Identity.Authenticate(f.ctx, "")
	assert.ErrorIs(t, err, core.ErrAuthenticationFailure)
}

func TestIdentity_Sync(t *testing.T) {
	t.Run("unknown role falls back to member", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.svc.Identity.Sync(f.ctx, &identity.Payload{Id: "ext", Email: "x@example.com", Metadata: map[string]any{"role": "overlord"}})
		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, u.GlobalRole)
	})

	t.Run("links by email once", func(t *testing.T) {
		f := newFixture(t)
		existing := &model.User{UserId: id.GetUUID(), Email: "bob@example.com", GlobalRole: model.RoleDeveloper, IsActive: true}
		require.NoError(t, f.repos.User.Create(f.ctx, existing))

		u, err := f.svc.Identity.Sync(f.ctx, &identity.Payload{Id: "ext-bob", Email: "bob@example.com"})
		require.NoError(t, err)
		assert.Equal(t, existing.UserId, u.UserId)
		assert.Equal(t, "ext-bob", u.ExternalID())
		assert.Equal(t, model.RoleDeveloper, u.GlobalRole)

		_, err = f.svc.Identity.Sync(f.ctx, &identity.Payload{Id: "ext-mallory", Email: "bob@example.com"})
		assert.ErrorIs(t, err, core.ErrAuthenticationFailure)
	})

	t.Run("zero config provisions", func(t *testing.T) {
		f := newFixture(t)
		svc := NewIdentityService(f.repos, f.provider, f.svc.Catalog, identity.Conf{})
		u, err := svc.Sync(f.ctx, &identity.Payload{Id: "ext-new", Email: "new@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "ext-new", u.ExternalID())
		assert.True(t, u.EmailNotifications)
	})

	t.Run("provisioning disabled", func(t *testing.T) {
		f := newFixture(t)
		f.svc.Identity = NewIdentityService(f.repos, f.provider, f.svc.Catalog, identity.Conf{DisableProvision: true})
		_, err := f.svc.Identity.Sync(f.ctx, &identity.Payload{Id: "ext", Email: "nobody@example.com"})
		assert.ErrorIs(t, err, core.ErrUserNotFound)
	})
}

func TestIdentity_SetGlobalRole(t *testing.T) {
	f := newFixture(t)
	admin := f.user(model.RoleAdmin)
	dev := f.user(model.RoleDeveloper)
	ext := "ext-dev"
	_, err := f.repos.User.LinkExternalId(f.ctx, dev.UserId, ext)
	require.NoError(t, err)

	_, err = f.svc.Identity.SetGlobalRole(f.ctx, dev, dev.UserId, "admin")
	assert.ErrorIs(t, err, core.ErrInsufficientRole)

	_, err = f.svc.Identity.SetGlobalRole(f.ctx, admin, dev.UserId, "chief")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.svc.Identity.SetGlobalRole(f.ctx, admin, "ghost", "member")
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	u, err := f.svc.Identity.SetGlobalRole(f.ctx, admin, dev.UserId, "product_owner")
	require.NoError(t, err)
	assert.Equal(t, model.RoleProductOwner, u.GlobalRole)
	assert.Equal(t, model.RoleProductOwner, f.provider.metadata[ext]["role"])

	stored, err := f.repos.User.Get(f.ctx, dev.UserId)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProductOwner, stored.GlobalRole)
}

func TestIdentity_SyncRoleAndMe(t *testing.T) {
	f := newFixture(t)
	dev := f.user(model.RoleDeveloper)

	_, err := f.svc.Identity.SyncRole(f.ctx, dev)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = f.repos.User.LinkExternalId(f.ctx, dev.UserId, "ext-9")
	require.NoError(t, err)
	_, err = f.svc.Identity.SyncRole(f.ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDeveloper, f.provider.metadata["ext-9"]["role"])

	me, err := f.svc.Identity.Me(f.ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, dev.UserId, me.UserId)
	assert.Equal(t, []Capability{CapView, CapCreateCard, CapAssignCard}, me.Capabilities)
}
