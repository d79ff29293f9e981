package shell

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/oaeproject/oaesh/pkg/rest"
)

// completionTimeout bounds the configuration fetch behind key completion.
const completionTimeout = 5 * time.Second

// Completer completes command names visible in the active context and
// configuration keys for the config commands.
type Completer struct {
	dispatcher *Dispatcher
}

// NewCompleter creates a completer over d.
func NewCompleter(d *Dispatcher) *Completer {
	return &Completer{dispatcher: d}
}

var _ readline.AutoCompleter = (*Completer)(nil)

// Do implements readline.AutoCompleter. It returns candidate suffixes and
// the length of the word being completed.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	if pos < 0 {
		return nil, 0
	}
	text := string(line[:pos])
	wordStart := findWordStart(text)
	word := text[wordStart:]
	before := strings.Fields(text[:wordStart])

	if len(before) == 0 {
		return complete(word, c.dispatcher.VisibleNames())
	}

	switch cmd := before[0]; cmd {
	case "config-set", "config-clear":
		if before[len(before)-1] == "-k" {
			return complete(word, c.configKeys(cmd == "config-set"))
		}
	case "config-get":
		if len(before) == 1 && !strings.HasPrefix(word, "-") {
			return complete(word, modules(c.configKeys(false)))
		}
	case "help":
		if len(before) == 1 {
			return complete(word, c.dispatcher.VisibleNames())
		}
	}
	return nil, 0
}

// findWordStart returns the index after the last space or tab in s.
func findWordStart(s string) int {
	return strings.LastIndexAny(s, " \t") + 1
}

func complete(prefix string, candidates []string) ([][]rune, int) {
	var matches [][]rune
	for _, cand := range candidates {
		if !strings.HasPrefix(cand, prefix) {
			continue
		}
		suffix := cand[len(prefix):]
		if !strings.HasSuffix(cand, "=") {
			suffix += " "
		}
		matches = append(matches, []rune(suffix))
	}
	return matches, len(prefix)
}

// configKeys returns the cached keys of the active tenant for the active
// identity (the username when one is bound). With assign set every key is
// suffixed with "=".
func (c *Completer) configKeys(assign bool) []string {
	if !c.dispatcher.Allowed("config-get") {
		return nil
	}
	env := c.dispatcher.Env()
	if env.Keys == nil {
		return nil
	}
	state := env.Store.State()
	if state.Handle == nil || state.Tenant == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(rest.Quiet(context.Background()), completionTimeout)
	defer cancel()
	keys, err := env.Keys.Keys(ctx, state.Handle, state.Tenant.Alias, state.Label)
	if err != nil {
		c.dispatcher.logger.Debug("config key completion failed", "error", err)
		return nil
	}
	if !assign {
		return keys
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "="
	}
	return out
}

// modules returns the distinct first path segments of keys.
func modules(keys []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range keys {
		m := k
		if i := strings.Index(k, "/"); i >= 0 {
			m = k[:i]
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
