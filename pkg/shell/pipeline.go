package shell

import (
	"log/slog"

	"github.com/oaeproject/oaesh/pkg/errors"
)

// Decision is what the shell does after a failed command.
type Decision int

const (
	// Continue resumes the command loop.
	Continue Decision = iota
	// Terminate ends the process with a non-zero status.
	Terminate
)

func (d Decision) String() string {
	if d == Terminate {
		return "terminate"
	}
	return "continue"
}

// Pipeline reports command failures and decides whether the shell goes on.
// Before startup completes every failure is fatal.
type Pipeline struct {
	formatter *errors.Formatter
	logger    *slog.Logger
	started   bool
}

// NewPipeline creates a pipeline writing through formatter.
func NewPipeline(formatter *errors.Formatter, logger *slog.Logger) *Pipeline {
	if formatter == nil {
		formatter = errors.DefaultFormatter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{formatter: formatter, logger: logger.With("component", "pipeline")}
}

// MarkStarted records that the startup sequence completed.
func (p *Pipeline) MarkStarted() {
	p.started = true
}

// Started reports whether startup has completed.
func (p *Pipeline) Started() bool {
	return p.started
}

// Handle prints err and returns the decision. A nil err continues.
func (p *Pipeline) Handle(err error) Decision {
	if err == nil {
		return Continue
	}
	p.formatter.Display(err)

	kind := errors.Classify(err)
	code := errors.ErrUnexpected
	if se, ok := errors.As(err); ok {
		code = se.Code
	}
	decision := Continue
	if !p.started {
		decision = Terminate
	}
	p.logger.Debug("command failed",
		slog.String("kind", kind.String()),
		slog.String("code", code),
		slog.String("decision", decision.String()),
		slog.String("error", err.Error()))
	return decision
}
