package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaeproject/oaesh/pkg/rest"
)

func TestResolve(t *testing.T) {
	global := &rest.Tenant{Alias: "admin", IsGlobalAdminServer: true}
	tenant := &rest.Tenant{Alias: "cam"}

	tests := []struct {
		name   string
		tenant *rest.Tenant
		me     *rest.Me
		want   CommandContext
	}{
		{"no tenant", nil, &rest.Me{IsGlobalAdmin: true}, ContextBootstrap},
		{"no tenant no me", nil, nil, ContextBootstrap},
		{"global admin", global, &rest.Me{IsGlobalAdmin: true}, ContextGlobalAdmin},
		{"global anonymous", global, &rest.Me{Anonymous: true}, ContextGlobalAnon},
		{"global tenant admin is anon there", global, &rest.Me{IsTenantAdmin: true}, ContextGlobalAnon},
		{"global nil me", global, nil, ContextGlobalAnon},
		{"tenant anonymous", tenant, &rest.Me{Anonymous: true}, ContextUserAnon},
		{"tenant admin", tenant, &rest.Me{IsTenantAdmin: true}, ContextUserAdmin},
		{"global admin on tenant", tenant, &rest.Me{IsGlobalAdmin: true}, ContextUserAdmin},
		{"admin flag wins over anonymous", tenant, &rest.Me{Anonymous: true, IsTenantAdmin: true}, ContextUserAdmin},
		{"tenant user", tenant, &rest.Me{}, ContextUserUser},
		{"tenant nil me", tenant, nil, ContextUserAnon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.tenant, tt.me)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Resolve(tt.tenant, tt.me), "same inputs, same context")
		})
	}
}

func TestResolve_Total(t *testing.T) {
	valid := map[CommandContext]bool{}
	for _, c := range Contexts {
		valid[c] = true
	}
	for _, tenant := range []*rest.Tenant{nil, {}, {IsGlobalAdminServer: true}} {
		for mask := 0; mask < 8; mask++ {
			me := &rest.Me{Anonymous: mask&1 != 0, IsGlobalAdmin: mask&2 != 0, IsTenantAdmin: mask&4 != 0}
			assert.True(t, valid[Resolve(tenant, me)])
		}
	}
}

func TestDefaultAllowList(t *testing.T) {
	a := DefaultAllowList()

	assert.Equal(t, []string{"use"}, a.Commands(ContextBootstrap))
	assert.Equal(t, []string{"config-get", "exec", "login", "me", "use"}, a.Commands(ContextGlobalAnon))
	assert.Equal(t, []string{
		"config-clear", "config-get", "config-set", "exec", "login-as-user", "login-to-tenant",
		"logout", "me", "previews-reprocess", "search-reindex-all", "use",
	}, a.Commands(ContextGlobalAdmin))
	assert.Equal(t, []string{"config-get", "exec", "login", "me", "use", "user-create"}, a.Commands(ContextUserAnon))
	assert.Equal(t, []string{
		"config-clear", "config-get", "config-set", "exec", "login-as-user", "logout", "me", "use", "user-create",
	}, a.Commands(ContextUserAdmin))
	assert.Equal(t, []string{"config-get", "exec", "logout", "me", "use"}, a.Commands(ContextUserUser))

	for _, c := range Contexts {
		assert.True(t, a.Allowed(c, "use"), "use is allowed in %s", c)
		assert.False(t, a.Allowed(c, "admin-create"), "admin-create is not in the stock table")
	}
	assert.False(t, a.Allowed(ContextUserUser, "config-set"))
}

func TestAllowList_Extend(t *testing.T) {
	a := DefaultAllowList()
	a.Extend(ContextUserAdmin, "admin-create", "content-get-members")

	assert.True(t, a.Allowed(ContextUserAdmin, "admin-create"))
	assert.False(t, a.Allowed(ContextGlobalAdmin, "admin-create"))
	assert.False(t, DefaultAllowList().Allowed(ContextUserAdmin, "admin-create"), "extension does not leak into new tables")
}

func TestAllowList_Validate(t *testing.T) {
	registered := map[string]bool{}
	for _, n := range []string{
		"use", "login", "logout", "me", "exec", "config-get", "config-set", "config-clear",
		"user-create", "login-as-user", "login-to-tenant", "previews-reprocess", "search-reindex-all",
	} {
		registered[n] = true
	}
	isRegistered := func(n string) bool { return registered[n] }

	require.NoError(t, DefaultAllowList().Validate(isRegistered))

	t.Run("unknown command", func(t *testing.T) {
		a := DefaultAllowList()
		a.Extend(ContextUserUser, "no-such-command")
		err := a.Validate(isRegistered)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no-such-command")
	})

	t.Run("missing context", func(t *testing.T) {
		a := DefaultAllowList()
		delete(a.table, ContextUserAnon)
		err := a.Validate(isRegistered)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user-anon")
	})

	t.Run("unknown context", func(t *testing.T) {
		a := DefaultAllowList()
		a.Extend(CommandContext("superuser"), "me")
		assert.Error(t, a.Validate(isRegistered))
	})
}

func TestParseContext(t *testing.T) {
	c, err := ParseContext("user-admin")
	require.NoError(t, err)
	assert.Equal(t, ContextUserAdmin, c)

	_, err = ParseContext("admin")
	assert.Error(t, err)

	assert.Equal(t, "(none)", ContextBootstrap.String())
}
