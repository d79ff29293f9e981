// Package rest is the client side of the OAE REST API. A Handle identifies
// one tenant endpoint plus the credentials bound to it; a Client performs
// requests against handles.
package rest

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Handle is a connection to one tenant endpoint. The endpoint identity is
// fixed at creation; only the bound credentials and session cookies change.
type Handle struct {
	baseURL    string
	scheme     string
	hostHeader string
	strictSSL  bool

	username string
	password string
	jar      http.CookieJar
}

// NewHandle creates a handle for baseURL (scheme://host[:port]). An empty
// hostHeader sends the URL host.
func NewHandle(baseURL, hostHeader string, strictSSL bool) (*Handle, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", baseURL)
	}
	return &Handle{
		baseURL:    u.Scheme + "://" + u.Host,
		scheme:     u.Scheme,
		hostHeader: strings.TrimSpace(hostHeader),
		strictSSL:  strictSSL,
		jar:        newJar(),
	}, nil
}

func newJar() http.CookieJar {
	// cookiejar.New only fails on a bad PublicSuffixList option.
	jar, _ := cookiejar.New(nil)
	return jar
}

// ParseTarget turns operator input into a base URL. A missing scheme means
// https; any path, query or fragment is dropped.
func ParseTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty target")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return u.Scheme + "://" + u.Host, nil
}

// NormalizeKey computes the cache key for a target: the host header when
// set, else the URL host, lower-cased with the scheme's default port
// removed.
func NormalizeKey(baseURL, hostHeader string) string {
	scheme := "https"
	host := hostHeader
	if u, err := url.Parse(baseURL); err == nil {
		if u.Scheme != "" {
			scheme = u.Scheme
		}
		if host == "" {
			host = u.Host
		}
	}
	host = strings.ToLower(strings.TrimSpace(host))
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	return host
}

// Key returns the normalized host under which the handle is cached.
func (h *Handle) Key() string {
	return NormalizeKey(h.baseURL, h.hostHeader)
}

// BaseURL returns scheme://host[:port].
func (h *Handle) BaseURL() string { return h.baseURL }

// Scheme returns the URL scheme.
func (h *Handle) Scheme() string { return h.scheme }

// HostHeader returns the Host header override, if any.
func (h *Handle) HostHeader() string { return h.hostHeader }

// StrictSSL reports whether TLS certificates are verified.
func (h *Handle) StrictSSL() bool { return h.strictSSL }

// Username returns the bound username, or "".
func (h *Handle) Username() string { return h.username }

// Password returns the bound password, or "".
func (h *Handle) Password() string { return h.password }

// Bind records the credentials the handle is authenticated with.
func (h *Handle) Bind(username, password string) {
	h.username = username
	h.password = password
}

// Unbind forgets the credentials and drops the session cookies.
func (h *Handle) Unbind() {
	h.username = ""
	h.password = ""
	h.jar = newJar()
}

// AdoptSession moves the session carried by other (cookies and bound
// credentials) onto h. Used when a freshly authenticated handle targets a
// host that is already cached. A handle with no credentials and no cookies
// carries no session and leaves h untouched.
func (h *Handle) AdoptSession(other *Handle) {
	if other == nil || other == h || !other.HasSession() {
		return
	}
	h.username = other.username
	h.password = other.password
	h.jar = other.jar
}

// HasSession reports whether the handle carries credentials or cookies.
func (h *Handle) HasSession() bool {
	if h.username != "" || h.password != "" {
		return true
	}
	u, err := url.Parse(h.baseURL)
	if err != nil {
		return false
	}
	return len(h.jar.Cookies(u)) > 0
}

// Derive creates a handle for the host of targetURL that keeps h's scheme
// and TLS mode. The target host becomes the Host header.
func (h *Handle) Derive(targetURL string) (*Handle, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("parse target url %q: %w", targetURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", targetURL)
	}
	return NewHandle(h.scheme+"://"+u.Host, u.Host, h.strictSSL)
}

// String describes the handle for logs. Credentials are never included.
func (h *Handle) String() string {
	if h.hostHeader != "" {
		return fmt.Sprintf("%s (host %s)", h.baseURL, h.hostHeader)
	}
	return h.baseURL
}
