package rest

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://localhost", "http://localhost", false},
		{"oae.oae-qa0.oaeproject.org", "https://oae.oae-qa0.oaeproject.org", false},
		{"https://cam.oae.com:8443/some/path?x=1", "https://cam.oae.com:8443", false},
		{"  http://Cam.oae.com  ", "http://Cam.oae.com", false},
		{"", "", true},
		{"ftp://files", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		base, hostHeader, want string
	}{
		{"http://localhost", "", "localhost"},
		{"http://localhost:80", "", "localhost"},
		{"https://Cam.OAE.com:443", "", "cam.oae.com"},
		{"https://cam.oae.com:8443", "", "cam.oae.com:8443"},
		{"http://localhost:2000", "Cam.oae.com", "cam.oae.com"},
		{"http://localhost", "cam.oae.com:80", "cam.oae.com"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"|"+tt.hostHeader, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.base, tt.hostHeader))
		})
	}
}

func TestHandle_Credentials(t *testing.T) {
	h, err := NewHandle("http://cam.oae.com", "", true)
	require.NoError(t, err)
	assert.Equal(t, "cam.oae.com", h.Key())

	h.Bind("alice", "secret")
	assert.Equal(t, "alice", h.Username())
	assert.Equal(t, "secret", h.Password())

	u, _ := url.Parse(h.BaseURL())
	h.jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "1"}})
	h.Unbind()
	assert.Empty(t, h.Username())
	assert.Empty(t, h.Password())
	assert.Empty(t, h.jar.Cookies(u), "unbind drops the session cookie")
}

func TestHandle_AdoptSession(t *testing.T) {
	cached, err := NewHandle("http://cam.oae.com", "", true)
	require.NoError(t, err)
	cached.Bind("old", "pw")

	t.Run("empty candidate leaves session", func(t *testing.T) {
		fresh, _ := NewHandle("http://cam.oae.com", "", true)
		cached.AdoptSession(fresh)
		assert.Equal(t, "old", cached.Username())
	})

	t.Run("cookie-only candidate replaces session", func(t *testing.T) {
		fresh, _ := NewHandle("http://cam.oae.com", "", true)
		u, _ := url.Parse(fresh.BaseURL())
		fresh.jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "impersonated"}})

		cached.AdoptSession(fresh)
		assert.Empty(t, cached.Username())
		require.Len(t, cached.jar.Cookies(u), 1)
		assert.Equal(t, "impersonated", cached.jar.Cookies(u)[0].Value)
	})
}

func TestHandle_Derive(t *testing.T) {
	admin, err := NewHandle("http://localhost:2000", "admin.oae.com", false)
	require.NoError(t, err)

	target, err := admin.Derive("https://cam.oae.com/api/auth/signed")
	require.NoError(t, err)
	assert.Equal(t, "http://cam.oae.com", target.BaseURL(), "scheme follows the admin handle")
	assert.Equal(t, "cam.oae.com", target.HostHeader())
	assert.False(t, target.StrictSSL())

	_, err = admin.Derive("/relative")
	assert.Error(t, err)
}

func TestMe_KeepsRawDocument(t *testing.T) {
	var me Me
	require.NoError(t, me.UnmarshalJSON([]byte(`{"anon":false,"isTenantAdmin":true,"displayName":"Bob","locale":"en_GB"}`)))
	assert.True(t, me.IsTenantAdmin)
	assert.Equal(t, "Bob", me.DisplayName)
	assert.Equal(t, "en_GB", me.Raw["locale"])
	assert.Equal(t, me.Raw, me.Document())
}
