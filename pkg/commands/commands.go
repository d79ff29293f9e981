// Package commands implements the oaesh leaf commands. Each one validates
// its arguments, calls the platform through the active handle and then
// prints the result or switches the session.
package commands

import (
	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/shell"
)

// All returns every leaf command.
func All() []*shell.Command {
	return []*shell.Command{
		Use(),
		Login(),
		Logout(),
		Me(),
		Exec(),
		ConfigGet(),
		ConfigSet(),
		ConfigClear(),
		UserCreate(),
		AdminCreate(),
		LoginAsUser(),
		LoginToTenant(),
		PreviewsReprocess(),
		SearchReindexAll(),
		ContentGetMembers(),
	}
}

// Register adds every leaf command to reg.
func Register(reg *shell.Registry) {
	reg.Register(All()...)
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

// flagString returns the trimmed value of a string flag.
func flagString(inv *shell.Invocation, name string) string {
	v, _ := inv.Flags.GetString(name)
	return String(v, "")
}

func flagArray(inv *shell.Invocation, name string) []string {
	v, _ := inv.Flags.GetStringArray(name)
	return ArrayArg(v)
}

// arg returns positional i trimmed, or "".
func arg(inv *shell.Invocation, i int) string {
	if i >= len(inv.Args) {
		return ""
	}
	return String(inv.Args[i], "")
}

// active returns the handle commands act on.
func active(env *shell.Env) (*rest.Handle, error) {
	h := env.Handle()
	if h == nil {
		return nil, errors.Internal(errors.ErrInternalState, "Error", "No tenant is selected")
	}
	return h, nil
}

func invalid(code, argument, usage, format string, args ...interface{}) error {
	return errors.Validationf(code, argument, format, args...).WithUsage(usage)
}
