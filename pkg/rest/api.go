package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// API is the subset of the OAE REST surface the shell drives.
type API interface {
	GetTenant(ctx context.Context, h *Handle, alias string) (*Tenant, error)
	GetMe(ctx context.Context, h *Handle) (*Me, error)

	Login(ctx context.Context, h *Handle, username, password string) error
	Logout(ctx context.Context, h *Handle) error

	CreateUser(ctx context.Context, h *Handle, p CreateUserParams) (map[string]interface{}, error)
	CreateTenantAdminUser(ctx context.Context, h *Handle, p CreateUserParams) (map[string]interface{}, error)
	CreateTenantAdminUserOnTenant(ctx context.Context, h *Handle, alias string, p CreateUserParams) (map[string]interface{}, error)

	GetConfig(ctx context.Context, h *Handle, alias string) (map[string]interface{}, error)
	UpdateConfig(ctx context.Context, h *Handle, alias string, values map[string]string) error
	ClearConfig(ctx context.Context, h *Handle, alias string, keys []string) error

	Request(ctx context.Context, h *Handle, pathAndQuery, method string, data url.Values, files map[string]string) (Document, error)

	ReprocessPreview(ctx context.Context, h *Handle, contentID, revisionID string) error
	ReprocessPreviews(ctx context.Context, h *Handle, filters map[string]string) error
	ReindexAll(ctx context.Context, h *Handle) error
	GetMembers(ctx context.Context, h *Handle, contentID, start string, limit int) (Document, error)

	SignedBecomeUser(ctx context.Context, h *Handle, userID string) (*SignedRequest, error)
	SignedTenant(ctx context.Context, h *Handle, alias string) (*SignedRequest, error)
	DoSignedAuthentication(ctx context.Context, h *Handle, body map[string]interface{}) error
}

func configPath(alias, suffix string) string {
	p := "/api/config"
	if alias != "" {
		p += "/" + url.PathEscape(alias)
	}
	return p + suffix
}

// GetTenant fetches the tenant served by h, or the tenant with alias.
func (c *Client) GetTenant(ctx context.Context, h *Handle, alias string) (*Tenant, error) {
	p := "/api/tenant"
	if alias != "" {
		p += "/" + url.PathEscape(alias)
	}
	data, err := c.do(ctx, h, http.MethodGet, p, nil)
	if err != nil {
		return nil, err
	}
	var t Tenant
	if err := decodeJSON(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetMe fetches the identity bound to h's session.
func (c *Client) GetMe(ctx context.Context, h *Handle) (*Me, error) {
	data, err := c.do(ctx, h, http.MethodGet, "/api/me", nil)
	if err != nil {
		return nil, err
	}
	var me Me
	if err := decodeJSON(data, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Login authenticates h's session with local credentials. The session
// cookie lands in h's jar.
func (c *Client) Login(ctx context.Context, h *Handle, username, password string) error {
	_, err := c.do(ctx, h, http.MethodPost, "/api/auth/login", formBody(url.Values{
		"username": {username},
		"password": {password},
	}))
	return err
}

// Logout ends h's session.
func (c *Client) Logout(ctx context.Context, h *Handle) error {
	_, err := c.do(ctx, h, http.MethodPost, "/api/auth/logout", nil)
	return err
}

func (c *Client) createUser(ctx context.Context, h *Handle, path string, p CreateUserParams) (map[string]interface{}, error) {
	data, err := c.do(ctx, h, http.MethodPost, path, formBody(p.form()))
	if err != nil {
		return nil, err
	}
	user := map[string]interface{}{}
	if err := decodeJSON(data, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser creates a regular account on h's tenant.
func (c *Client) CreateUser(ctx context.Context, h *Handle, p CreateUserParams) (map[string]interface{}, error) {
	return c.createUser(ctx, h, "/api/user/create", p)
}

// CreateTenantAdminUser creates a tenant administrator on h's tenant.
func (c *Client) CreateTenantAdminUser(ctx context.Context, h *Handle, p CreateUserParams) (map[string]interface{}, error) {
	return c.createUser(ctx, h, "/api/user/createTenantAdminUser", p)
}

// CreateTenantAdminUserOnTenant creates a tenant administrator on the tenant
// with alias. Only the global admin server accepts it.
func (c *Client) CreateTenantAdminUserOnTenant(ctx context.Context, h *Handle, alias string, p CreateUserParams) (map[string]interface{}, error) {
	return c.createUser(ctx, h, "/api/user/"+url.PathEscape(alias)+"/createTenantAdminUser", p)
}

// GetConfig fetches the configuration of h's tenant, or of alias.
func (c *Client) GetConfig(ctx context.Context, h *Handle, alias string) (map[string]interface{}, error) {
	data, err := c.do(ctx, h, http.MethodGet, configPath(alias, ""), nil)
	if err != nil {
		return nil, err
	}
	config := map[string]interface{}{}
	if err := decodeJSON(data, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// UpdateConfig sets configuration values.
func (c *Client) UpdateConfig(ctx context.Context, h *Handle, alias string, values map[string]string) error {
	form := url.Values{}
	for k, v := range values {
		form.Set(k, v)
	}
	_, err := c.do(ctx, h, http.MethodPost, configPath(alias, ""), formBody(form))
	return err
}

// ClearConfig resets configuration keys to their defaults.
func (c *Client) ClearConfig(ctx context.Context, h *Handle, alias string, keys []string) error {
	_, err := c.do(ctx, h, http.MethodPost, configPath(alias, "/clear"), formBody(url.Values{
		"configFields": keys,
	}))
	return err
}

// Request performs an arbitrary request. Files (field → local path) switch
// the body to multipart.
func (c *Client) Request(ctx context.Context, h *Handle, pathAndQuery, method string, data url.Values, files map[string]string) (Document, error) {
	var b *body
	if len(files) > 0 {
		var err error
		if b, err = multipartBody(data, files); err != nil {
			return nil, fmt.Errorf("prepare upload: %w", err)
		}
	} else {
		b = formBody(data)
	}
	raw, err := c.do(ctx, h, method, pathAndQuery, b)
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw), nil
}

// ReprocessPreview reprocesses one content revision.
func (c *Client) ReprocessPreview(ctx context.Context, h *Handle, contentID, revisionID string) error {
	p := fmt.Sprintf("/api/content/%s/revision/%s/reprocessPreview",
		url.PathEscape(contentID), url.PathEscape(revisionID))
	_, err := c.do(ctx, h, http.MethodPost, p, nil)
	return err
}

// ReprocessPreviews reprocesses every revision matching filters.
func (c *Client) ReprocessPreviews(ctx context.Context, h *Handle, filters map[string]string) error {
	form := url.Values{}
	for k, v := range filters {
		form.Set(k, v)
	}
	_, err := c.do(ctx, h, http.MethodPost, "/api/content/reprocessPreviews", formBody(form))
	return err
}

// ReindexAll rebuilds the search index.
func (c *Client) ReindexAll(ctx context.Context, h *Handle) error {
	_, err := c.do(ctx, h, http.MethodPost, "/api/search/reindexAll", nil)
	return err
}

// GetMembers lists the members of a content item.
func (c *Client) GetMembers(ctx context.Context, h *Handle, contentID, start string, limit int) (Document, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	p := "/api/content/" + url.PathEscape(contentID) + "/members"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	raw, err := c.do(ctx, h, http.MethodGet, p, nil)
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw), nil
}

func (c *Client) signedRequest(ctx context.Context, h *Handle, path string) (*SignedRequest, error) {
	data, err := c.do(ctx, h, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var sr SignedRequest
	if err := decodeJSON(data, &sr); err != nil {
		return nil, err
	}
	return &sr, nil
}

// SignedBecomeUser asks for a signed hand-off to impersonate userID.
func (c *Client) SignedBecomeUser(ctx context.Context, h *Handle, userID string) (*SignedRequest, error) {
	return c.signedRequest(ctx, h, "/api/auth/signed/become?"+url.Values{"becomeUserId": {userID}}.Encode())
}

// SignedTenant asks for a signed hand-off to the tenant with alias.
func (c *Client) SignedTenant(ctx context.Context, h *Handle, alias string) (*SignedRequest, error) {
	return c.signedRequest(ctx, h, "/api/auth/signed/tenant?"+url.Values{"tenant": {alias}}.Encode())
}

// DoSignedAuthentication redeems a signed hand-off on h.
func (c *Client) DoSignedAuthentication(ctx context.Context, h *Handle, body map[string]interface{}) error {
	form := url.Values{}
	for k, v := range body {
		form.Set(k, fmt.Sprint(v))
	}
	_, err := c.do(ctx, h, http.MethodPost, "/api/auth/signed", formBody(form))
	return err
}
