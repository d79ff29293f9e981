package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oaeproject/oaesh/pkg/errors"
)

// RequestIDHeader correlates a request with the client's debug log.
const RequestIDHeader = "X-Request-Id"

// Options configures a Client.
type Options struct {
	// Logger receives one debug record per request. Defaults to slog.Default().
	Logger *slog.Logger

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// DialContext overrides how connections are established.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)

	// Wait wraps every round trip. The shell uses it to show a spinner.
	Wait func(send func() error) error
}

// Client performs OAE REST requests against handles.
type Client struct {
	logger    *slog.Logger
	timeout   time.Duration
	userAgent string
	wait      func(func() error) error

	strict   http.RoundTripper
	insecure http.RoundTripper
}

var _ API = (*Client)(nil)

// NewClient creates a client.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strict := http.DefaultTransport.(*http.Transport).Clone()
	insecure := http.DefaultTransport.(*http.Transport).Clone()
	insecure.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in via --insecure
	if opts.DialContext != nil {
		strict.DialContext = opts.DialContext
		insecure.DialContext = opts.DialContext
	}
	return &Client{
		logger:    logger.With("component", "rest"),
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		wait:      opts.Wait,
		strict:    strict,
		insecure:  insecure,
	}
}

func (c *Client) httpClient(h *Handle) *http.Client {
	rt := c.strict
	if !h.strictSSL {
		rt = c.insecure
	}
	return &http.Client{
		Transport: rt,
		Jar:       h.jar,
		Timeout:   c.timeout,
		// The platform answers signed authentication with a redirect; it is
		// a success, and following it would lose the Host override.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// body is a prepared request payload.
type body struct {
	reader      io.Reader
	contentType string
}

func formBody(values url.Values) *body {
	if len(values) == 0 {
		return nil
	}
	return &body{
		reader:      strings.NewReader(values.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
}

// multipartBody encodes data fields and file uploads. Files are read fully;
// uploads from an operator shell are small.
func multipartBody(values url.Values, files map[string]string) (*body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(values) {
		for _, v := range values[key] {
			if err := w.WriteField(key, v); err != nil {
				return nil, err
			}
		}
	}

	fileKeys := make([]string, 0, len(files))
	for k := range files {
		fileKeys = append(fileKeys, k)
	}
	sort.Strings(fileKeys)
	for _, key := range fileKeys {
		path := files[key]
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		part, err := w.CreateFormFile(key, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &body{reader: &buf, contentType: w.FormDataContentType()}, nil
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type quietKey struct{}

// Quiet returns a context whose requests bypass the Wait hook.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

func isQuiet(ctx context.Context) bool {
	q, _ := ctx.Value(quietKey{}).(bool)
	return q
}

// encodeQuery escapes every key and value of a raw query as typed by the
// operator, keeping their order. Components that are already escaped come
// out equivalent.
func encodeQuery(raw string) string {
	if raw == "" {
		return raw
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, value, hasValue := strings.Cut(part, "=")
		part = escapeQueryComponent(key)
		if hasValue {
			part += "=" + escapeQueryComponent(value)
		}
		parts[i] = part
	}
	return strings.Join(parts, "&")
}

func escapeQueryComponent(s string) string {
	if unescaped, err := url.QueryUnescape(s); err == nil {
		s = unescaped
	}
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// do sends one request and returns the raw response body. Non-2xx/3xx
// statuses become remote errors carrying the body as message.
func (c *Client) do(ctx context.Context, h *Handle, method, pathAndQuery string, b *body) ([]byte, error) {
	if h == nil {
		return nil, errors.Internal(errors.ErrInternalState, "Error", "No connection is active; run use <url> first")
	}
	if !strings.HasPrefix(pathAndQuery, "/") {
		pathAndQuery = "/" + pathAndQuery
	}

	var reader io.Reader
	if b != nil {
		reader = b.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+pathAndQuery, reader)
	if err != nil {
		return nil, errors.RemoteWrap(err, errors.ErrRemoteRequest, err.Error())
	}
	req.URL.RawQuery = encodeQuery(req.URL.RawQuery)

	requestID := uuid.New().String()
	if h.hostHeader != "" {
		req.Host = h.hostHeader
	}
	req.Header.Set("Referer", h.baseURL+"/")
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if b != nil {
		req.Header.Set("Content-Type", b.contentType)
	}

	start := time.Now()
	var resp *http.Response
	send := func() error {
		var err error
		resp, err = c.httpClient(h).Do(req)
		return err
	}
	if c.wait != nil && !isQuiet(ctx) {
		err = c.wait(send)
	} else {
		err = send()
	}
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", req.URL.Path),
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)))
	if err != nil {
		return nil, errors.RemoteWrap(err, errors.ErrRemoteRequest, err.Error()).
			WithContext("request_id", requestID)
	}

	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, errors.Remote(resp.StatusCode, msg).
			WithContext("request_id", requestID).
			WithContext("path", req.URL.Path)
	}
	return data, nil
}

// transportError classifies a failure where no response was received.
func transportError(err error) *errors.ShellError {
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalid x509.CertificateInvalidError
	code := errors.ErrRemoteUnreachable
	if stderrors.As(err, &certErr) || stderrors.As(err, &unknownAuth) ||
		stderrors.As(err, &hostErr) || stderrors.As(err, &invalid) {
		code = errors.ErrRemoteTLS
	}
	return errors.RemoteWrap(err, code, err.Error())
}

// decodeJSON decodes data into v. Numbers are kept as json.Number so ids
// and timestamps round-trip unchanged.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.RemoteWrap(err, errors.ErrRemoteDecode,
			fmt.Sprintf("unexpected response: %s", err))
	}
	return nil
}

// decodeDocument returns the decoded JSON value of data, or data as a
// string when it is not JSON.
func decodeDocument(data []byte) Document {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil || dec.More() {
		return string(data)
	}
	return v
}
