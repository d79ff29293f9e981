package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oaeproject/oaesh/pkg/rest"
)

// AnonymousLabel is the identity label of an anonymous session.
const AnonymousLabel = "Anonymous"

// State is a snapshot of what the session is bound to. Tenant and Me always
// come from the latest successful resolution against Handle.
type State struct {
	Handle  *rest.Handle
	Tenant  *rest.Tenant
	Me      *rest.Me
	Context CommandContext
	Label   string
}

// Anonymous reports whether the session has no authenticated identity.
func (s State) Anonymous() bool {
	return s.Me == nil || s.Me.Anonymous
}

// IdentityLabel names the identity for the prompt: "Anonymous", else the
// username bound to the handle, else the quoted display name.
func IdentityLabel(me *rest.Me, h *rest.Handle) string {
	if me == nil || me.Anonymous {
		return AnonymousLabel
	}
	if h != nil && h.Username() != "" {
		return h.Username()
	}
	return fmt.Sprintf("%q", me.DisplayName)
}

// Store owns the handle cache and the session state. Only one command runs
// at a time, so it carries no locks.
type Store struct {
	api    rest.API
	logger *slog.Logger

	cache map[string]*rest.Handle
	state State

	onChange []func(CommandContext)
}

// NewStore creates an empty store in the bootstrap context.
func NewStore(api rest.API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:    api,
		logger: logger.With("component", "session"),
		cache:  make(map[string]*rest.Handle),
	}
}

// OnContextChange registers fn to receive the command context after every
// successful switch.
func (s *Store) OnContextChange(fn func(CommandContext)) {
	s.onChange = append(s.onChange, fn)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state
}

// Lookup returns the cached handle for a normalized host key.
func (s *Store) Lookup(key string) (*rest.Handle, bool) {
	h, ok := s.cache[key]
	return h, ok
}

// Len returns the number of cached handles.
func (s *Store) Len() int {
	return len(s.cache)
}

// SwitchContext makes the host of candidate the active one. A handle cached
// under the same key is reused, taking over any session the candidate
// carries. The tenant and identity are fetched live; state and cache change
// only if both fetches succeed.
func (s *Store) SwitchContext(ctx context.Context, candidate *rest.Handle) (*rest.Tenant, *rest.Me, CommandContext, error) {
	key := candidate.Key()
	cached, isCached := s.cache[key]

	probe := candidate
	if isCached && !candidate.HasSession() {
		probe = cached
	}

	tenant, err := s.api.GetTenant(ctx, probe, "")
	if err != nil {
		return nil, nil, s.state.Context, err
	}
	me, err := s.api.GetMe(ctx, probe)
	if err != nil {
		return nil, nil, s.state.Context, err
	}

	active := candidate
	if isCached {
		cached.AdoptSession(candidate)
		active = cached
	} else {
		s.cache[key] = candidate
	}

	s.state.Handle = active
	s.state.Tenant = tenant
	s.commitIdentity(me)

	s.logger.Info("switched context",
		slog.String("host", key),
		slog.String("tenant", tenant.Alias),
		slog.String("context", string(s.state.Context)),
		slog.Bool("cached", isCached))
	return tenant, me, s.state.Context, nil
}

// SwitchUser re-resolves the identity bound to h after a credential change
// and recomputes the command context.
func (s *Store) SwitchUser(ctx context.Context, h *rest.Handle) (*rest.Me, CommandContext, error) {
	me, err := s.api.GetMe(ctx, h)
	if err != nil {
		return nil, s.state.Context, err
	}
	if h != s.state.Handle {
		s.state.Handle = h
	}
	s.commitIdentity(me)

	s.logger.Info("switched user",
		slog.String("label", s.state.Label),
		slog.String("context", string(s.state.Context)))
	return me, s.state.Context, nil
}

// commitIdentity stores me, recomputes the derived fields and notifies.
func (s *Store) commitIdentity(me *rest.Me) {
	s.state.Me = me
	s.state.Label = IdentityLabel(me, s.state.Handle)
	s.state.Context = Resolve(s.state.Tenant, s.state.Me)
	for _, fn := range s.onChange {
		fn(s.state.Context)
	}
}
