// Package shell is the interactive front end of oaesh: the command registry
// and dispatcher, the failure pipeline, completion and the readline loop.
package shell

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/session"
)

var promptStyle = lipgloss.NewStyle().Bold(true)

// Prompt renders the prompt for state: "oaesh$ " before a tenant is
// selected, else "oaesh:<label>@<tenant host>$ ".
func Prompt(state session.State, color bool) string {
	p := "oaesh$ "
	if state.Tenant != nil {
		p = fmt.Sprintf("oaesh:%s@%s$ ", state.Label, state.Tenant.Host)
	}
	if !color {
		return p
	}
	return promptStyle.Render(strings.TrimSuffix(p, " ")) + " "
}

// Config holds shell configuration.
type Config struct {
	// HistoryFile stores entered lines. Empty disables history.
	HistoryFile string

	// Color styles the prompt.
	Color bool

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
}

// Shell is the interactive command loop.
type Shell struct {
	dispatcher *Dispatcher
	pipeline   *Pipeline
	cfg        Config
	rl         *readline.Instance
}

// New creates a shell over a dispatcher and pipeline. The readline
// instance is created by Run.
func New(d *Dispatcher, p *Pipeline, cfg Config) *Shell {
	return &Shell{dispatcher: d, pipeline: p, cfg: cfg}
}

// Execute runs one command line. It returns ErrQuit when the line asked to
// leave the shell; other failures are handled by the pipeline and reported
// through the returned decision.
func (s *Shell) Execute(ctx context.Context, line string) (Decision, error) {
	words, err := Split(line)
	if err != nil {
		return s.pipeline.Handle(errors.Validation(errors.ErrValidationInvalidFormat, "line", err.Error())), nil
	}
	d, err := s.ExecuteArgs(ctx, words)
	if stderrors.Is(err, ErrQuit) {
		return d, err
	}
	return d, nil
}

// ExecuteArgs runs one command given as words. The returned error is the
// command's failure, already reported through the pipeline, or ErrQuit.
func (s *Shell) ExecuteArgs(ctx context.Context, argv []string) (Decision, error) {
	err := s.dispatcher.Dispatch(ctx, argv)
	if stderrors.Is(err, ErrQuit) {
		return Continue, ErrQuit
	}
	return s.pipeline.Handle(err), err
}

// Run reads and executes lines until quit, exit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	env := s.dispatcher.Env()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Prompt(env.Store.State(), s.cfg.Color),
		HistoryFile:     s.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    NewCompleter(s.dispatcher),
		Stdin:           s.cfg.Stdin,
		Stdout:          s.cfg.Stdout,
		Stderr:          s.cfg.Stderr,
	})
	if err != nil {
		return fmt.Errorf("start line editor: %w", err)
	}
	s.rl = rl
	defer rl.Close()

	previous := env.Prompter
	env.Prompter = &readlinePrompter{rl: rl}
	defer func() { env.Prompter = previous }()

	env.Store.OnContextChange(func(session.CommandContext) {
		rl.SetPrompt(Prompt(env.Store.State(), s.cfg.Color))
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if _, err := s.Execute(ctx, line); stderrors.Is(err, ErrQuit) {
			return nil
		}
	}
}
