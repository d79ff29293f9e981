package rest

import "encoding/json"

// Tenant describes the tenant a handle points at.
type Tenant struct {
	Alias               string `json:"alias"`
	DisplayName         string `json:"displayName"`
	Host                string `json:"host"`
	IsGlobalAdminServer bool   `json:"isGlobalAdminServer"`
}

// Me is the identity the platform reports for a handle's session.
type Me struct {
	Anonymous     bool   `json:"anon"`
	IsGlobalAdmin bool   `json:"isGlobalAdmin"`
	IsTenantAdmin bool   `json:"isTenantAdmin"`
	DisplayName   string `json:"displayName"`
	ID            string `json:"id"`

	// Raw is the complete document as returned by the server.
	Raw map[string]interface{} `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps the full document.
func (m *Me) UnmarshalJSON(data []byte) error {
	type plain Me
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Me(p)
	m.Raw = raw
	return nil
}

// Document returns what `me` prints: the server document when known, else
// the typed fields.
func (m *Me) Document() interface{} {
	if m.Raw != nil {
		return m.Raw
	}
	return map[string]interface{}{
		"anon":          m.Anonymous,
		"isGlobalAdmin": m.IsGlobalAdmin,
		"isTenantAdmin": m.IsTenantAdmin,
		"displayName":   m.DisplayName,
		"id":            m.ID,
	}
}

// SignedRequest is the hand-off issued by the signed authentication
// endpoints: post Body to URL's host to obtain a session there.
type SignedRequest struct {
	URL  string                 `json:"url"`
	Body map[string]interface{} `json:"body"`
}

// CreateUserParams are the fields for account creation.
type CreateUserParams struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Visibility  string
}

func (p CreateUserParams) form() map[string][]string {
	f := map[string][]string{
		"username":    {p.Username},
		"password":    {p.Password},
		"displayName": {p.DisplayName},
		"email":       {p.Email},
	}
	if p.Visibility != "" {
		f["visibility"] = []string{p.Visibility}
	}
	return f
}

// Document is any decoded JSON value, or a string for non-JSON bodies.
type Document = interface{}
