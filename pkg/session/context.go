// Package session tracks which tenant and identity the shell is bound to and
// derives the command context that gates the visible commands.
package session

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/oaeproject/oaesh/pkg/rest"
)

// CommandContext names the set of commands available for a tenant and
// identity combination.
type CommandContext string

// The command contexts. The set is closed.
const (
	ContextBootstrap   CommandContext = ""
	ContextGlobalAnon  CommandContext = "global-anon"
	ContextGlobalAdmin CommandContext = "global-admin"
	ContextUserAnon    CommandContext = "user-anon"
	ContextUserAdmin   CommandContext = "user-admin"
	ContextUserUser    CommandContext = "user-user"
)

// Contexts lists every command context.
var Contexts = []CommandContext{
	ContextBootstrap,
	ContextGlobalAnon,
	ContextGlobalAdmin,
	ContextUserAnon,
	ContextUserAdmin,
	ContextUserUser,
}

// String returns the context name; the bootstrap context is shown as "(none)".
func (c CommandContext) String() string {
	if c == ContextBootstrap {
		return "(none)"
	}
	return string(c)
}

// ParseContext resolves a context name as written in configuration.
func ParseContext(name string) (CommandContext, error) {
	for _, c := range Contexts {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command context %q", name)
}

// Resolve maps a tenant and identity to a command context. A nil identity
// counts as anonymous.
func Resolve(tenant *rest.Tenant, me *rest.Me) CommandContext {
	if tenant == nil {
		return ContextBootstrap
	}
	if me == nil {
		me = &rest.Me{Anonymous: true}
	}
	if tenant.IsGlobalAdminServer {
		if me.IsGlobalAdmin {
			return ContextGlobalAdmin
		}
		return ContextGlobalAnon
	}
	switch {
	case me.IsGlobalAdmin || me.IsTenantAdmin:
		return ContextUserAdmin
	case me.Anonymous:
		return ContextUserAnon
	default:
		return ContextUserUser
	}
}

// AllowList maps every command context to the commands it exposes.
// Commands in the wildcard list are exposed in all contexts.
type AllowList struct {
	wildcard map[string]bool
	table    map[CommandContext]map[string]bool
}

// DefaultAllowList returns the stock context table.
func DefaultAllowList() *AllowList {
	a := &AllowList{
		wildcard: set("use"),
		table: map[CommandContext]map[string]bool{
			ContextBootstrap: set(),
			ContextGlobalAnon: set(
				"config-get",
				"exec",
				"login",
				"me",
			),
			ContextGlobalAdmin: set(
				"config-clear",
				"config-get",
				"config-set",
				"exec",
				"login-as-user",
				"login-to-tenant",
				"logout",
				"me",
				"previews-reprocess",
				"search-reindex-all",
			),
			ContextUserAnon: set(
				"config-get",
				"exec",
				"login",
				"me",
				"user-create",
			),
			ContextUserAdmin: set(
				"config-clear",
				"config-get",
				"config-set",
				"exec",
				"login-as-user",
				"logout",
				"me",
				"user-create",
			),
			ContextUserUser: set(
				"config-get",
				"exec",
				"logout",
				"me",
			),
		},
	}
	return a
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Extend exposes additional commands in ctx.
func (a *AllowList) Extend(ctx CommandContext, names ...string) {
	if a.table[ctx] == nil {
		a.table[ctx] = set()
	}
	for _, n := range names {
		a.table[ctx][n] = true
	}
}

// Allowed reports whether name may run in ctx.
func (a *AllowList) Allowed(ctx CommandContext, name string) bool {
	return a.wildcard[name] || a.table[ctx][name]
}

// Commands returns the sorted commands exposed in ctx, wildcard included.
func (a *AllowList) Commands(ctx CommandContext) []string {
	seen := make(map[string]bool)
	for n := range a.wildcard {
		seen[n] = true
	}
	for n := range a.table[ctx] {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every context has an entry and that every listed
// command is registered.
func (a *AllowList) Validate(registered func(name string) bool) error {
	var errs []error
	for _, c := range Contexts {
		if _, ok := a.table[c]; !ok {
			errs = append(errs, fmt.Errorf("command context %q has no allow-list", string(c)))
		}
	}
	for c := range a.table {
		if _, err := ParseContext(string(c)); err != nil {
			errs = append(errs, err)
		}
	}
	check := func(scope string, names map[string]bool) {
		sorted := make([]string, 0, len(names))
		for n := range names {
			sorted = append(sorted, n)
		}
		sort.Strings(sorted)
		for _, n := range sorted {
			if !registered(n) {
				errs = append(errs, fmt.Errorf("%s lists unknown command %q", scope, n))
			}
		}
	}
	check("wildcard", a.wildcard)
	for _, c := range Contexts {
		check(fmt.Sprintf("context %q", string(c)), a.table[c])
	}
	return stderrors.Join(errs...)
}
