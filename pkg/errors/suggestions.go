package errors

import "sort"

// Context keys used to select conditional suggestions.
const (
	// ContextCommand is the command that raised the error.
	ContextCommand = "command"

	// ContextCommandContext is the active command context (e.g. "user-anon").
	ContextCommandContext = "context"

	// ContextInsecure is "true" when TLS verification is disabled.
	ContextInsecure = "insecure"

	// ContextURL is the target base URL.
	ContextURL = "url"
)

// Suggestion is a remediation hint with optional conditions.
type Suggestion struct {
	// Text is the message shown to the operator.
	Text string

	// Conditions must all match the error context. Empty matches anything.
	Conditions map[string]string

	// Priority orders suggestions; higher first.
	Priority int
}

// Matches returns true if the suggestion's conditions hold in ctx.
func (s *Suggestion) Matches(ctx map[string]string) bool {
	for key, value := range s.Conditions {
		if ctx[key] != value {
			return false
		}
	}
	return true
}

// Registry maps error codes to remediation suggestions.
type Registry struct {
	suggestions map[string][]Suggestion
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{suggestions: make(map[string][]Suggestion)}
}

// Register adds an unconditional suggestion for code.
func (r *Registry) Register(code, text string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text})
}

// RegisterWithCondition adds a suggestion that applies only when the error
// context matches conditions.
func (r *Registry) RegisterWithCondition(code, text string, conditions map[string]string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Conditions: conditions})
}

// RegisterWithPriority adds a suggestion with explicit priority.
func (r *Registry) RegisterWithPriority(code, text string, priority int) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Priority: priority})
}

// RegisterSuggestion adds a complete Suggestion.
func (r *Registry) RegisterSuggestion(code string, suggestion Suggestion) *Registry {
	r.suggestions[code] = append(r.suggestions[code], suggestion)
	return r
}

// Get returns the texts of suggestions for code matching ctx, highest
// priority first. Registration order breaks ties.
func (r *Registry) Get(code string, ctx map[string]string) []string {
	var matching []Suggestion
	for _, s := range r.suggestions[code] {
		if s.Matches(ctx) {
			matching = append(matching, s)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Priority > matching[j].Priority
	})
	out := make([]string, len(matching))
	for i, s := range matching {
		out[i] = s.Text
	}
	return out
}

// HasSuggestions returns true if any suggestions exist for code.
func (r *Registry) HasSuggestions(code string) bool {
	return len(r.suggestions[code]) > 0
}

// Codes returns every code with registered suggestions, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.suggestions))
	for code := range r.suggestions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// AttachSuggestions appends matching registry suggestions to err, using its
// context for conditional matching. Errors that already carry suggestions
// are left alone.
func AttachSuggestions(err *ShellError) *ShellError {
	if err == nil || err.HasSuggestions() {
		return err
	}
	if s := defaultRegistry.Get(err.Code, err.Context); len(s) > 0 {
		err.Suggestions = append(err.Suggestions, s...)
	}
	return err
}

func init() {
	registerRemoteSuggestions()
	registerValidationSuggestions()
	registerInternalSuggestions()
	registerConfigSuggestions()
}

func registerRemoteSuggestions() {
	defaultRegistry.
		RegisterWithCondition(ErrRemoteUnauthorized,
			"Log in first: login -u <username>",
			map[string]string{ContextCommandContext: "user-anon"}).
		RegisterWithCondition(ErrRemoteUnauthorized,
			"Log in first: login -u <username>",
			map[string]string{ContextCommandContext: "global-anon"}).
		Register(ErrRemoteForbidden,
			"The current identity lacks permission; check it with: me").
		RegisterWithPriority(ErrRemoteUnreachable,
			"Check that the target URL is correct and the server is running", 10).
		RegisterWithCondition(ErrRemoteTLS,
			"Re-run with --insecure to skip certificate verification",
			map[string]string{ContextInsecure: "false"}).
		Register(ErrRemoteNotFound,
			"Check the path; relative paths are resolved against the current tenant")
}

func registerValidationSuggestions() {
	defaultRegistry.
		Register(ErrCommandNotAllowed,
			"Run help to list the commands available in this context").
		RegisterWithCondition(ErrCommandNotAllowed,
			"Connect to a tenant first: use <url>",
			map[string]string{ContextCommandContext: ""}).
		Register(ErrValidationFlags,
			"Run help <command> for usage")
}

func registerInternalSuggestions() {
	defaultRegistry.
		RegisterWithCondition(ErrInternalPartial,
			"Log in manually: login -u <username>",
			map[string]string{ContextCommand: "user-create"}).
		RegisterWithCondition(ErrInternalPartial,
			"Log in manually: login -u <username>",
			map[string]string{ContextCommand: "admin-create"}).
		Register(ErrInternalState,
			"Connect to a tenant first: use <url>")
}

func registerConfigSuggestions() {
	defaultRegistry.
		Register(ErrConfigNotFound,
			"Create a default configuration with: oaesh --init").
		Register(ErrConfigParse,
			"Check the YAML syntax; indentation must use spaces").
		Register(ErrConfigInvalid,
			"Compare with the file written by: oaesh --init --config /tmp/oaesh.yaml")
}
