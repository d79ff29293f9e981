package shell

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sort"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/help"
	"github.com/oaeproject/oaesh/pkg/session"
)

// ErrQuit is returned by the quit and exit built-ins.
var ErrQuit = stderrors.New("quit")

const clearScreen = "\033[H\033[2J"

// Dispatcher runs commands, one at a time, gated by the allow-list of the
// active command context.
type Dispatcher struct {
	registry *Registry
	allow    *session.AllowList
	env      *Env
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher and registers the built-ins (help,
// quit, exit, clear) into registry.
func NewDispatcher(registry *Registry, allow *session.AllowList, env *Env) *Dispatcher {
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		registry: registry,
		allow:    allow,
		env:      env,
		logger:   logger.With("component", "dispatcher"),
	}
	registry.Register(d.builtins()...)
	return d
}

// Env returns the environment commands run against.
func (d *Dispatcher) Env() *Env {
	return d.env
}

// Context returns the active command context.
func (d *Dispatcher) Context() session.CommandContext {
	return d.env.Store.State().Context
}

// Allowed reports whether name may run in the active context.
func (d *Dispatcher) Allowed(name string) bool {
	c, ok := d.registry.Lookup(name)
	if !ok {
		return false
	}
	return c.Hidden || d.allow.Allowed(d.Context(), name)
}

// Visible returns the listed commands of the active context, sorted by
// name.
func (d *Dispatcher) Visible() []*Command {
	var out []*Command
	for _, name := range d.allow.Commands(d.Context()) {
		if c, ok := d.registry.Lookup(name); ok && !c.Hidden {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// VisibleNames returns the names of Visible.
func (d *Dispatcher) VisibleNames() []string {
	cmds := d.Visible()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// Dispatch runs argv[0] with the remaining words as arguments. The returned
// error, if any, carries the command and context for suggestion lookup.
func (d *Dispatcher) Dispatch(ctx context.Context, argv []string) (err error) {
	if len(argv) == 0 {
		return nil
	}
	name, args := argv[0], argv[1:]
	cmdCtx := d.Context()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Panic(r, debug.Stack())
		}
		err = d.decorate(err, name, cmdCtx)
	}()

	cmd, ok := d.registry.Lookup(name)
	if !ok {
		e := errors.Validationf(errors.ErrCommandNotFound, "command", "Unknown command %q", name)
		if s := help.Suggest(name, d.VisibleNames()); s != "" {
			e = e.WithSuggestion(fmt.Sprintf("Did you mean: %s", s))
		}
		return e
	}
	if !cmd.Hidden && !d.allow.Allowed(cmdCtx, name) {
		return errors.Validationf(errors.ErrCommandNotAllowed, "command",
			"Command %q is not available in the current context %s", name, cmdCtx)
	}

	inv := &Invocation{Name: name, Args: args, Raw: args}
	if cmd.Flags == nil && wantsHelp(args) {
		help.NewRenderer(d.env.Out.Writer(), d.env.Color).RenderCommand(cmd.Entry())
		return nil
	}
	if cmd.Flags != nil {
		fs := cmd.Flags()
		fs.SetOutput(io.Discard)
		if perr := fs.Parse(args); perr != nil {
			if stderrors.Is(perr, pflag.ErrHelp) {
				help.NewRenderer(d.env.Out.Writer(), d.env.Color).RenderCommand(cmd.Entry())
				return nil
			}
			return errors.Validation(errors.ErrValidationFlags, "arguments", perr.Error()).WithUsage(cmd.Usage)
		}
		inv.Flags = fs
		inv.Args = fs.Args()
	}

	d.logger.Debug("dispatch",
		slog.String("command", name),
		slog.String("context", string(cmdCtx)),
		slog.Int("args", len(args)))
	return cmd.Run(ctx, d.env, inv)
}

// wantsHelp reports whether -h or --help appears before any "--".
func wantsHelp(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-h", "--help":
			return true
		}
	}
	return false
}

// decorate converts foreign errors and attaches suggestions.
func (d *Dispatcher) decorate(err error, name string, cmdCtx session.CommandContext) error {
	if err == nil || stderrors.Is(err, ErrQuit) {
		return err
	}
	se, ok := errors.As(err)
	if !ok {
		se = errors.Unclassified(err)
	}
	se.WithContext(errors.ContextCommand, name).
		WithContext(errors.ContextCommandContext, string(cmdCtx)).
		WithContext(errors.ContextInsecure, strconv.FormatBool(d.env.Insecure))
	if h := d.env.Handle(); h != nil {
		se.WithContext(errors.ContextURL, h.BaseURL())
	}
	return errors.AttachSuggestions(se)
}

func (d *Dispatcher) builtins() []*Command {
	return []*Command{
		{
			Name:     "help",
			Summary:  "List the available commands, or show the usage of one",
			Usage:    "Usage: help [<command>]",
			Category: help.CategoryGeneral,
			Hidden:   true,
			Run: func(_ context.Context, env *Env, inv *Invocation) error {
				r := help.NewRenderer(env.Out.Writer(), env.Color)
				if len(inv.Args) == 0 {
					entries := make([]help.Entry, 0)
					for _, c := range d.Visible() {
						entries = append(entries, c.Entry())
					}
					r.RenderList(string(d.Context()), entries)
					return nil
				}
				name := inv.Args[0]
				if c, ok := d.registry.Lookup(name); ok && d.Allowed(name) {
					r.RenderCommand(c.Entry())
					return nil
				}
				e := errors.Validationf(errors.ErrCommandNotFound, "command", "Unknown command %q", name)
				if s := help.Suggest(name, d.VisibleNames()); s != "" {
					e = e.WithSuggestion(fmt.Sprintf("Did you mean: %s", s))
				}
				return e
			},
		},
		{
			Name:     "quit",
			Summary:  "Leave the shell",
			Usage:    "Usage: quit",
			Category: help.CategoryGeneral,
			Hidden:   true,
			Run:      func(context.Context, *Env, *Invocation) error { return ErrQuit },
		},
		{
			Name:     "exit",
			Summary:  "Leave the shell",
			Usage:    "Usage: exit",
			Category: help.CategoryGeneral,
			Hidden:   true,
			Run:      func(context.Context, *Env, *Invocation) error { return ErrQuit },
		},
		{
			Name:     "clear",
			Summary:  "Clear the screen",
			Usage:    "Usage: clear",
			Category: help.CategoryGeneral,
			Hidden:   true,
			Run: func(_ context.Context, env *Env, _ *Invocation) error {
				fmt.Fprint(env.Out.Writer(), clearScreen)
				return nil
			},
		},
	}
}
