package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/shell"
)

const useUsage = `Usage: use [(<http>|<https>)://]<hostname>[:port] [--host-header=<hostHeader>]

If the protocol is omitted from the URL, HTTPS is assumed and certificates
are verified. When oaesh is started with --insecure, HTTPS sites with
invalid certificates are accepted as well. This helps with QA and test
servers that use self-signed certificates and should not be used against
production.

Examples:

    use http://localhost
    use http://localhost --host-header=cam.oae.com
    use oae.oae-qa0.oaeproject.org`

// Use returns the use command, which binds the session to a tenant host.
// Hosts seen before reuse their cached handle and its session.
func Use() *shell.Command {
	return &shell.Command{
		Name:     "use",
		Summary:  "Set the current OAE host and protocol",
		Usage:    useUsage,
		Category: help.CategorySession,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("use")
			fs.String("host-header", "", "The Host header to use in HTTP requests to the OAE tenant")
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			target := arg(inv, 0)
			if target == "" {
				return errors.Validation(errors.ErrValidationRequired, "first argument",
					"The first argument must be a URL to use").WithUsage(useUsage)
			}
			base, err := rest.ParseTarget(target)
			if err != nil {
				return invalid(errors.ErrValidationInvalidFormat, "first argument", useUsage,
					"Invalid URL %q: %s", target, err)
			}
			h, err := rest.NewHandle(base, flagString(inv, "host-header"), !env.Insecure)
			if err != nil {
				return invalid(errors.ErrValidationInvalidFormat, "first argument", useUsage, "%s", err)
			}
			_, _, _, err = env.Store.SwitchContext(ctx, h)
			return err
		},
	}
}

const loginUsage = "Usage: login --username=<username> [--password=<password>]"

// Login returns the login command. The password is prompted for when it is
// not given.
func Login() *shell.Command {
	return &shell.Command{
		Name:     "login",
		Summary:  "Log in as a user in the system",
		Usage:    loginUsage,
		Category: help.CategorySession,
		Flags: func() *pflag.FlagSet {
			fs := newFlags("login")
			fs.StringP("username", "u", "", "The username of the user to log in as")
			fs.StringP("password", "p", "", "The password of the user. Prompted for when omitted")
			return fs
		},
		Run: func(ctx context.Context, env *shell.Env, inv *shell.Invocation) error {
			username := flagString(inv, "username")
			if username == "" {
				return errors.Required("username", loginUsage)
			}
			password := flagString(inv, "password")
			if password == "" {
				var err error
				if password, err = env.Prompter.Password("Password: "); err != nil {
					return err
				}
				if String(password, "") == "" {
					return errors.PasswordError("No password was specified")
				}
			}

			h, err := active(env)
			if err != nil {
				return err
			}
			if err := env.API.Login(ctx, h, username, password); err != nil {
				return err
			}
			h.Bind(username, password)
			_, _, err = env.Store.SwitchUser(ctx, h)
			return err
		},
	}
}

// Logout returns the logout command.
func Logout() *shell.Command {
	return &shell.Command{
		Name:     "logout",
		Summary:  "Logout of the current session",
		Usage:    "Usage: logout",
		Category: help.CategorySession,
		Run: func(ctx context.Context, env *shell.Env, _ *shell.Invocation) error {
			h, err := active(env)
			if err != nil {
				return err
			}
			if err := env.API.Logout(ctx, h); err != nil {
				return err
			}
			h.Unbind()
			_, _, err = env.Store.SwitchUser(ctx, h)
			return err
		},
	}
}

// Me returns the me command, which prints the identity document.
func Me() *shell.Command {
	return &shell.Command{
		Name:     "me",
		Summary:  `Retrieve the "me" feed for the current user`,
		Usage:    "Usage: me",
		Category: help.CategorySession,
		Run: func(ctx context.Context, env *shell.Env, _ *shell.Invocation) error {
			h, err := active(env)
			if err != nil {
				return err
			}
			me, err := env.API.GetMe(ctx, h)
			if err != nil {
				return err
			}
			return env.Out.Print(me.Document())
		},
	}
}
