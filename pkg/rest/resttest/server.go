// Package resttest provides an in-process fake of the OAE REST surface for
// tests. Tenants are selected by the request Host header, sessions by a
// cookie, the way the real platform routes them.
package resttest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/oaeproject/oaesh/pkg/rest"
)

// Well-known fixtures.
const (
	GlobalHost = "admin.oae.test"
	TenantHost = "cam.oae.test"
	OtherHost  = "gt.oae.test"

	AdminUser    = "administrator"
	AdminPass    = "administrator"
	TenantAdmin  = "camadmin"
	TenantPass   = "camadmin"
	RegularUser  = "alice"
	RegularPass  = "alicepass"
	sessionName  = "oae.sid"
	signatureKey = "signed"
)

// User is an account on the fake platform.
type User struct {
	ID          string
	Username    string
	Password    string
	DisplayName string
	Email       string
	Visibility  string
	Host        string
	GlobalAdmin bool
	TenantAdmin bool
}

func (u *User) document(t *rest.Tenant) map[string]interface{} {
	return map[string]interface{}{
		"id":            u.ID,
		"displayName":   u.DisplayName,
		"email":         u.Email,
		"visibility":    u.Visibility,
		"isGlobalAdmin": u.GlobalAdmin,
		"isTenantAdmin": u.TenantAdmin,
		"tenant":        map[string]interface{}{"alias": t.Alias, "displayName": t.DisplayName},
	}
}

// Recorded is one request seen by the server.
type Recorded struct {
	Method    string
	Path      string
	RawQuery  string
	Host      string
	Referer   string
	RequestID string
	Form      map[string][]string
	Files     map[string]string
}

type session struct {
	userID string
	host   string
}

// Server is a fake OAE platform.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tenants  map[string]*rest.Tenant
	users    map[string]*User
	sessions map[string]session
	config   map[string]map[string]interface{}
	grants   map[string]string
	requests []Recorded
	failures map[string]failure
	nextID   int
}

type failure struct {
	status  int
	message string
}

// NewServer starts a fake platform with a global admin server, two tenants
// and the fixture accounts.
func NewServer() *Server {
	s := &Server{
		tenants:  map[string]*rest.Tenant{},
		users:    map[string]*User{},
		sessions: map[string]session{},
		config:   map[string]map[string]interface{}{},
		grants:   map[string]string{},
		failures: map[string]failure{},
	}
	s.AddTenant(&rest.Tenant{Alias: "admin", DisplayName: "Global admin server", Host: GlobalHost, IsGlobalAdminServer: true})
	s.AddTenant(&rest.Tenant{Alias: "cam", DisplayName: "Cambridge", Host: TenantHost})
	s.AddTenant(&rest.Tenant{Alias: "gt", DisplayName: "Georgia Tech", Host: OtherHost})

	s.AddUser(&User{Username: AdminUser, Password: AdminPass, DisplayName: "Global Administrator", Host: GlobalHost, GlobalAdmin: true})
	s.AddUser(&User{Username: TenantAdmin, Password: TenantPass, DisplayName: "Cam Admin", Host: TenantHost, TenantAdmin: true})
	s.AddUser(&User{Username: RegularUser, Password: RegularPass, DisplayName: "Alice Smith", Host: TenantHost})

	for _, alias := range []string{"admin", "cam", "gt"} {
		s.config[alias] = map[string]interface{}{
			"oae-authentication": map[string]interface{}{
				"twitter": map[string]interface{}{"enabled": true},
			},
			"oae-principals": map[string]interface{}{
				"user": map[string]interface{}{"defaultLanguage": "en_GB"},
			},
		}
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// URLFor returns the base URL of host. Handles built from it reach this
// server only through a client created with Dial.
func (s *Server) URLFor(host string) string {
	return "http://" + host
}

// Dial connects every address to the server's listener, so tenant hosts
// such as TenantHost resolve to the fake platform.
func (s *Server) Dial(ctx context.Context, network, _ string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, s.Listener.Addr().String())
}

// Client returns a REST client wired to the server.
func (s *Server) Client() *rest.Client {
	return rest.NewClient(rest.Options{DialContext: s.Dial})
}

// AddTenant registers a tenant served at t.Host.
func (s *Server) AddTenant(t *rest.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.Host] = t
}

// AddUser registers an account. ID is derived when empty.
func (s *Server) AddUser(u *User) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		s.nextID++
		u.ID = fmt.Sprintf("u:%s:%d", s.tenants[u.Host].Alias, s.nextID)
	}
	s.users[u.ID] = u
	return u
}

// Fail makes every request to path answer status with message.
func (s *Server) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, message: message}
}

// Requests returns a copy of the requests seen so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the recorded requests for path.
func (s *Server) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Config returns the stored configuration for alias.
func (s *Server) Config(alias string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config[alias]
}

// UserByName finds an account on host.
func (s *Server) UserByName(host, username string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByName(host, username)
}

func (s *Server) userByName(host, username string) *User {
	for _, u := range s.users {
		if u.Host == host && u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Server) tenantByAlias(alias string) *rest.Tenant {
	for _, t := range s.tenants {
		if t.Alias == alias {
			return t
		}
	}
	return nil
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// tenantFor resolves the tenant from the Host header. Unknown hosts (the
// listener's own address) fall back to the first regular tenant.
func (s *Server) tenantFor(r *http.Request) *rest.Tenant {
	if t, ok := s.tenants[stripPort(r.Host)]; ok {
		return t
	}
	return s.tenants[TenantHost]
}

func (s *Server) currentUser(r *http.Request, t *rest.Tenant) *User {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return nil
	}
	sess, ok := s.sessions[c.Value]
	if !ok || sess.host != t.Host {
		return nil
	}
	return s.users[sess.userID]
}

func (s *Server) startSession(w http.ResponseWriter, u *User, host string) {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	token := hex.EncodeToString(b)
	s.sessions[token] = session{userID: u.ID, host: host}
	http.SetCookie(w, &http.Cookie{Name: sessionName, Value: token, Path: "/"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) record(r *http.Request) {
	rec := Recorded{
		Method:    r.Method,
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		Host:      r.Host,
		Referer:   r.Header.Get("Referer"),
		RequestID: r.Header.Get(rest.RequestIDHeader),
		Form:      map[string][]string{},
		Files:     map[string]string{},
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				rec.Form[k] = v
			}
			for k, fhs := range r.MultipartForm.File {
				for _, fh := range fhs {
					f, err := fh.Open()
					if err != nil {
						continue
					}
					buf, _ := io.ReadAll(f)
					f.Close()
					rec.Files[k] = string(buf)
				}
			}
		}
	} else if err := r.ParseForm(); err == nil {
		for k, v := range r.PostForm {
			rec.Form[k] = v
		}
	}
	s.requests = append(s.requests, rec)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(r)
	if f, ok := s.failures[r.URL.Path]; ok {
		http.Error(w, f.message, f.status)
		return
	}

	t := s.tenantFor(r)
	me := s.currentUser(r, t)
	path := r.URL.Path
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case path == "/api/tenant" && r.Method == http.MethodGet:
		writeJSON(w, t)

	case len(parts) == 3 && parts[1] == "tenant" && r.Method == http.MethodGet:
		other := s.tenantByAlias(parts[2])
		if other == nil {
			http.Error(w, "Unknown tenant", http.StatusNotFound)
			return
		}
		writeJSON(w, other)

	case path == "/api/me" && r.Method == http.MethodGet:
		if me == nil {
			writeJSON(w, map[string]interface{}{
				"anon":   true,
				"tenant": map[string]interface{}{"alias": t.Alias, "displayName": t.DisplayName},
			})
			return
		}
		writeJSON(w, me.document(t))

	case path == "/api/auth/login" && r.Method == http.MethodPost:
		u := s.userByName(t.Host, r.PostForm.Get("username"))
		if u == nil || u.Password != r.PostForm.Get("password") {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		s.startSession(w, u, t.Host)
		writeJSON(w, u.document(t))

	case path == "/api/auth/logout" && r.Method == http.MethodPost:
		if c, err := r.Cookie(sessionName); err == nil {
			delete(s.sessions, c.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: sessionName, Value: "", Path: "/", MaxAge: -1})
		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusFound)

	case path == "/api/user/create" && r.Method == http.MethodPost:
		s.createUser(w, r, t, false)

	case path == "/api/user/createTenantAdminUser" && r.Method == http.MethodPost:
		if me == nil || !(me.TenantAdmin || me.GlobalAdmin) {
			http.Error(w, "You must be a tenant administrator", http.StatusUnauthorized)
			return
		}
		s.createUser(w, r, t, true)

	case len(parts) == 4 && parts[1] == "user" && parts[3] == "createTenantAdminUser" && r.Method == http.MethodPost:
		if me == nil || !me.GlobalAdmin {
			http.Error(w, "Only global administrators can create admins on other tenants", http.StatusUnauthorized)
			return
		}
		target := s.tenantByAlias(parts[2])
		if target == nil {
			http.Error(w, "Unknown tenant", http.StatusNotFound)
			return
		}
		s.createUser(w, r, target, true)

	case parts[0] == "api" && len(parts) >= 2 && parts[1] == "config":
		s.serveConfig(w, r, t, me, parts)

	case path == "/api/search/reindexAll" && r.Method == http.MethodPost,
		path == "/api/content/reprocessPreviews" && r.Method == http.MethodPost:
		if me == nil || !me.GlobalAdmin {
			http.Error(w, "You must be a global administrator", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)

	case len(parts) == 6 && parts[1] == "content" && parts[3] == "revision" && parts[5] == "reprocessPreview":
		if me == nil || !(me.GlobalAdmin || me.TenantAdmin) {
			http.Error(w, "You must be an administrator", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)

	case len(parts) == 4 && parts[1] == "content" && parts[3] == "members" && r.Method == http.MethodGet:
		writeJSON(w, map[string]interface{}{
			"results": []interface{}{
				map[string]interface{}{"profile": map[string]interface{}{"id": "u:cam:1"}, "role": "manager"},
			},
			"nextToken": r.URL.Query().Get("start"),
			"limit":     r.URL.Query().Get("limit"),
		})

	case path == "/api/auth/signed/become" && r.Method == http.MethodGet:
		if me == nil || !(me.GlobalAdmin || me.TenantAdmin) {
			http.Error(w, "You must be an administrator to impersonate", http.StatusUnauthorized)
			return
		}
		target := s.users[r.URL.Query().Get("becomeUserId")]
		if target == nil {
			http.Error(w, "Unknown user", http.StatusNotFound)
			return
		}
		s.writeGrant(w, target, target.Host)

	case path == "/api/auth/signed/tenant" && r.Method == http.MethodGet:
		if me == nil || !me.GlobalAdmin {
			http.Error(w, "You must be a global administrator", http.StatusUnauthorized)
			return
		}
		target := s.tenantByAlias(r.URL.Query().Get("tenant"))
		if target == nil {
			http.Error(w, "Unknown tenant", http.StatusNotFound)
			return
		}
		s.writeGrant(w, me, target.Host)

	case path == "/api/auth/signed" && r.Method == http.MethodPost:
		sig := r.PostForm.Get(signatureKey)
		userID, ok := s.grants[sig]
		if !ok {
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
		delete(s.grants, sig)
		s.startSession(w, s.users[userID], t.Host)
		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusFound)

	case path == "/api/echo":
		writeJSON(w, map[string]interface{}{
			"method": r.Method,
			"query":  r.URL.RawQuery,
			"form":   s.requests[len(s.requests)-1].Form,
			"files":  s.requests[len(s.requests)-1].Files,
		})

	case path == "/api/text":
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "plain text body")

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) writeGrant(w http.ResponseWriter, u *User, host string) {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	sig := hex.EncodeToString(b)
	s.grants[sig] = u.ID
	writeJSON(w, map[string]interface{}{
		"url": "http://" + host + "/api/auth/signed",
		"body": map[string]interface{}{
			"userId":     u.ID,
			signatureKey: sig,
			"expires":    1700000000000,
		},
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, t *rest.Tenant, admin bool) {
	username := r.PostForm.Get("username")
	if username == "" || r.PostForm.Get("password") == "" {
		http.Error(w, "A username and password must be provided", http.StatusBadRequest)
		return
	}
	if s.userByName(t.Host, username) != nil {
		http.Error(w, fmt.Sprintf("A user with the name %q already exists", username), http.StatusBadRequest)
		return
	}
	s.nextID++
	u := &User{
		ID:          fmt.Sprintf("u:%s:%d", t.Alias, s.nextID),
		Username:    username,
		Password:    r.PostForm.Get("password"),
		DisplayName: r.PostForm.Get("displayName"),
		Email:       r.PostForm.Get("email"),
		Visibility:  r.PostForm.Get("visibility"),
		Host:        t.Host,
		TenantAdmin: admin,
	}
	s.users[u.ID] = u
	writeJSON(w, u.document(t))
}

func (s *Server) serveConfig(w http.ResponseWriter, r *http.Request, t *rest.Tenant, me *User, parts []string) {
	alias := t.Alias
	tail := parts[2:]
	if len(tail) > 0 && tail[0] != "clear" {
		alias = tail[0]
		tail = tail[1:]
	}
	cfg, ok := s.config[alias]
	if !ok {
		http.Error(w, "Unknown tenant", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodGet && len(tail) == 0 {
		writeJSON(w, cfg)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if me == nil || !(me.GlobalAdmin || me.TenantAdmin) {
		http.Error(w, "Only administrators can change configuration", http.StatusUnauthorized)
		return
	}

	if len(tail) == 1 && tail[0] == "clear" {
		for _, key := range r.PostForm["configFields"] {
			setPath(cfg, key, nil)
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		setPath(cfg, k, r.PostForm.Get(k))
	}
	w.WriteHeader(http.StatusOK)
}

// setPath writes (or with a nil value deletes) a slash separated key.
func setPath(cfg map[string]interface{}, key string, value interface{}) {
	segs := strings.Split(key, "/")
	node := cfg
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]interface{})
		if !ok {
			if value == nil {
				return
			}
			next = map[string]interface{}{}
			node[seg] = next
		}
		node = next
	}
	last := segs[len(segs)-1]
	if value == nil {
		delete(node, last)
		return
	}
	node[last] = value
}
