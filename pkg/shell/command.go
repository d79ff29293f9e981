package shell

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/output"
	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/session"
)

// Command is one shell command.
type Command struct {
	Name     string
	Summary  string
	Usage    string
	Category help.Category

	// Hidden commands run in every context and are left out of the listing
	// and of completion.
	Hidden bool

	// Flags returns a fresh flag set for one invocation. When nil the
	// command receives its raw arguments as positionals.
	Flags func() *pflag.FlagSet

	Run func(ctx context.Context, env *Env, inv *Invocation) error
}

// Entry returns the help documentation of c.
func (c *Command) Entry() help.Entry {
	return help.Entry{Name: c.Name, Summary: c.Summary, Usage: c.Usage, Category: c.Category}
}

// Invocation is one parsed call of a command.
type Invocation struct {
	Name  string
	Flags *pflag.FlagSet
	Args  []string
	Raw   []string
}

// Env is what commands act on. The session store is the only holder of
// session state; commands read it and change it through its switch methods.
type Env struct {
	Store    *session.Store
	API      rest.API
	Prompter Prompter
	Out      *output.Printer
	Logger   *slog.Logger
	Keys     *ConfigKeyCache

	// Insecure disables TLS verification for handles created by use.
	Insecure bool

	// Color enables styled help output.
	Color bool
}

// Handle returns the active connection handle, or nil before use.
func (e *Env) Handle() *rest.Handle {
	return e.Store.State().Handle
}

// Registry holds every known command by name.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds commands. Registering a name twice panics.
func (r *Registry) Register(cmds ...*Command) {
	for _, c := range cmds {
		if _, dup := r.commands[c.Name]; dup {
			panic(fmt.Sprintf("shell: command %q registered twice", c.Name))
		}
		r.commands[c.Name] = c
	}
}

// Lookup returns the command called name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}
