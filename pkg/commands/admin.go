package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/shell"
)

const (
	loginAsUserUsage   = "Usage: login-as-user --user-id=<user id>"
	loginToTenantUsage = "Usage: login-to-tenant --tenant=<tenant alias>"
)

// redeem completes a signed hand-off: it authenticates a handle for the
// grant's host and returns it.
func redeem(ctx context.Context, env *shell.Env, from *rest.Handle, grant *rest.SignedRequest) (*rest.Handle, error) {
	target, err := from.Derive(grant.URL)
	if err != nil {
		return nil, errors.RemoteWrap(err, errors.ErrRemoteDecode, "Invalid signed authentication URL: "+grant.URL)
	}
	if err := env.API.DoSignedAuthentication(ctx, target, grant.Body); err != nil {
		return nil, err
	}
	return target, nil
}

// LoginAsUser returns the login-as-user command, which impersonates a user
// on that user's tenant.
func LoginAsUser() *shell.Command {
	return &shell.Command{
		Name:     "login-as-user",
		Summary:  "Log in as a specified user to their tenant",
		Usage:    loginAsUserUsage,
		Category: help.CategoryAdmin,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("login-as-user")
			fs.StringP("user-id", "u", "", "The id of the user to log in as")
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			userID := flagString(inv, "user-id")
			if userID == "" {
				return errors.Required("user-id", loginAsUserUsage)
			}
			h, err := active(env)
			if err != nil {
				return err
			}
			grant, err := env.API.SignedBecomeUser(ctx, h, userID)
			if err != nil {
				return err
			}
			target, err := redeem(ctx, env, h, grant)
			if err != nil {
				return err
			}
			_, _, _, err = env.Store.SwitchContext(ctx, target)
			return err
		},
	}
}

// LoginToTenant returns the login-to-tenant command, which carries the
// global administrator's session onto a tenant.
func LoginToTenant() *shell.Command {
	return &shell.Command{
		Name:     "login-to-tenant",
		Summary:  "Log in as the global admin to a tenant",
		Usage:    loginToTenantUsage,
		Category: help.CategoryAdmin,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("login-to-tenant")
			fs.StringP("tenant", "t", "", "The alias of the tenant to log in to")
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			alias := flagString(inv, "tenant")
			if alias == "" {
				return errors.Required("tenant", loginToTenantUsage)
			}
			h, err := active(env)
			if err != nil {
				return err
			}
			grant, err := env.API.SignedTenant(ctx, h, alias)
			if err != nil {
				return err
			}
			target, err := redeem(ctx, env, h, grant)
			if err != nil {
				return err
			}
			target.Bind(h.Username(), "")
			_, _, _, err = env.Store.SwitchContext(ctx, target)
			return err
		},
	}
}

// SearchReindexAll returns the search-reindex-all command.
func SearchReindexAll() *shell.Command {
	return &shell.Command{
		Name:     "search-reindex-all",
		Summary:  "Reindex all documents in the search index",
		Usage:    "Usage: search-reindex-all",
		Category: help.CategoryAdmin,
		Run: func(ctx context.Context, env *shell.Env, _ *shell.Invocation) error {
			h, err := active(env)
			if err != nil {
				return err
			}
			if err := env.API.ReindexAll(ctx, h); err != nil {
				return err
			}
			env.Out.Message("Re-indexing started")
			return nil
		},
	}
}
