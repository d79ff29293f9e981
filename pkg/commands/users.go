package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/session"
	"github.com/oaeproject/oaesh/pkg/shell"
)

const (
	userCreateUsage  = "Usage: user-create -u <username> -m <email> [-d <displayName=<username>>] [-v <visibility>]"
	adminCreateUsage = "Usage: admin-create -u <username> -m <email> -t <tenant-alias> [-d <displayName=<username>>] [-v <visibility>] [--no-prompt]"

	createdButNotAuthenticated = "The user was created successfully, however authentication failed"
)

func userFlags(fs *pflag.FlagSet) {
	fs.StringP("username", "u", "", "The username to use to login as the user")
	fs.StringP("email", "m", "", "The email address of the user")
	fs.StringP("display-name", "d", "", "The display name of the user. Defaults to the username")
	fs.StringP("visibility", "v", "", "The visibility of the user")
}

// userParams reads and validates the shared account flags.
func userParams(inv *shell.Invocation, usage string) (rest.CreateUserParams, error) {
	p := rest.CreateUserParams{
		Username:   flagString(inv, "username"),
		Email:      flagString(inv, "email"),
		Visibility: flagString(inv, "visibility"),
	}
	if p.Username == "" {
		return p, errors.Required("username", usage)
	}
	if p.Email == "" {
		return p, errors.Required("email", usage)
	}
	p.DisplayName = String(flagString(inv, "display-name"), p.Username)
	return p, nil
}

// newPassword prompts for a password twice.
func newPassword(p shell.Prompter) (string, error) {
	password, err := p.Password("Password: ")
	if err != nil {
		return "", err
	}
	if String(password, "") == "" {
		return "", errors.PasswordError("No password was specified")
	}
	verify, err := p.Password("Once more: ")
	if err != nil {
		return "", err
	}
	if String(verify, "") == "" {
		return "", errors.PasswordError("No password was specified")
	}
	if password != verify {
		return "", errors.PasswordError("Passwords did not match")
	}
	return password, nil
}

// announceCreated prints the new account and, when the session was
// anonymous before the account was created, logs in as it.
func announceCreated(ctx context.Context, env *shell.Env, h *rest.Handle, before session.State, user map[string]interface{}, p rest.CreateUserParams) error {
	if err := env.Out.Print(user); err != nil {
		return err
	}
	if !before.Anonymous() {
		return nil
	}
	if err := env.API.Login(ctx, h, p.Username, p.Password); err != nil {
		return errors.PartialEffect(createdButNotAuthenticated, err)
	}
	h.Bind(p.Username, p.Password)
	if _, _, err := env.Store.SwitchUser(ctx, h); err != nil {
		return errors.PartialEffect(createdButNotAuthenticated, err)
	}
	return nil
}

// UserCreate returns the user-create command.
func UserCreate() *shell.Command {
	return &shell.Command{
		Name:     "user-create",
		Summary:  "Create a user in the system",
		Usage:    userCreateUsage,
		Category: help.CategoryUsers,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("user-create")
			userFlags(fs)
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			p, err := userParams(inv, userCreateUsage)
			if err != nil {
				return err
			}
			if p.Password, err = newPassword(env.Prompter); err != nil {
				return err
			}
			h, err := active(env)
			if err != nil {
				return err
			}
			before := env.Store.State()
			user, err := env.API.CreateUser(ctx, h, p)
			if err != nil {
				return err
			}
			return announceCreated(ctx, env, h, before, user, p)
		},
	}
}

// AdminCreate returns the admin-create command. A global administrator
// creates the account on the tenant named by -t; a tenant administrator
// creates it on the current tenant.
func AdminCreate() *shell.Command {
	return &shell.Command{
		Name:     "admin-create",
		Summary:  "Create a tenant administrator",
		Usage:    adminCreateUsage,
		Category: help.CategoryUsers,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("admin-create")
			userFlags(fs)
			fs.StringP("tenant", "t", "", "The tenant alias you're creating an admin for")
			fs.Bool("no-prompt", false, "Set the password equal to the username and skip the prompt")
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			p, err := userParams(inv, adminCreateUsage)
			if err != nil {
				return err
			}
			before := env.Store.State()
			me := before.Me
			global := me != nil && me.IsGlobalAdmin
			tenant := flagString(inv, "tenant")
			if global && tenant == "" {
				return errors.Required("tenant alias", adminCreateUsage)
			}
			if !global && (me == nil || !me.IsTenantAdmin) {
				return errors.Internal(errors.ErrInternalState, "Error",
					"Only global or tenant administrators can create tenant administrators")
			}

			if noPrompt, _ := inv.Flags.GetBool("no-prompt"); noPrompt {
				p.Password = p.Username
			} else if p.Password, err = newPassword(env.Prompter); err != nil {
				return err
			}

			h, err := active(env)
			if err != nil {
				return err
			}
			var user map[string]interface{}
			if global {
				user, err = env.API.CreateTenantAdminUserOnTenant(ctx, h, tenant, p)
			} else {
				user, err = env.API.CreateTenantAdminUser(ctx, h, p)
			}
			if err != nil {
				return err
			}
			user["username"] = p.Username
			return announceCreated(ctx, env, h, before, user, p)
		},
	}
}
