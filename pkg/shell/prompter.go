package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Prompter reads secrets from the operator.
type Prompter interface {
	// Password shows prompt and reads one line without echo.
	Password(prompt string) (string, error)
}

// TerminalPrompter reads passwords from a terminal with echo disabled. When
// the input is not a terminal it reads plain lines, so scripted input works.
type TerminalPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminalPrompterWithIO creates a prompter on custom streams.
func NewTerminalPrompterWithIO(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

// Password implements Prompter.
func (p *TerminalPrompter) Password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var _ Prompter = (*TerminalPrompter)(nil)

// readlinePrompter reads through the active readline instance, which owns
// the terminal while the interactive loop runs.
type readlinePrompter struct {
	rl *readline.Instance
}

func (p *readlinePrompter) Password(prompt string) (string, error) {
	b, err := p.rl.ReadPassword(prompt)
	if err != nil {
		if err == readline.ErrInterrupt || err == io.EOF {
			return "", nil
		}
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// MockPrompter answers prompts from a fixed list and records them.
type MockPrompter struct {
	// Responses are returned in order. Once exhausted, "" is returned.
	Responses []string

	// Error, when set, is returned by every call.
	Error error

	// Prompts records every prompt shown.
	Prompts []string
}

// NewMockPrompter creates a MockPrompter answering with responses.
func NewMockPrompter(responses ...string) *MockPrompter {
	return &MockPrompter{Responses: responses}
}

// Password implements Prompter.
func (m *MockPrompter) Password(prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Error != nil {
		return "", m.Error
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	r := m.Responses[0]
	m.Responses = m.Responses[1:]
	return r, nil
}

// CallCount returns how many prompts were shown.
func (m *MockPrompter) CallCount() int {
	return len(m.Prompts)
}

var _ Prompter = (*MockPrompter)(nil)
