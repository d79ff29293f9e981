package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/rest/resttest"
)

func TestFlattenKeys(t *testing.T) {
	cfg := map[string]interface{}{
		"oae-principals": map[string]interface{}{
			"user": map[string]interface{}{"defaultLanguage": "en_GB"},
		},
		"oae-authentication": map[string]interface{}{
			"twitter": map[string]interface{}{"enabled": true, "key": ""},
		},
		"empty": map[string]interface{}{},
	}
	assert.Equal(t, []string{
		"empty",
		"oae-authentication/twitter/enabled",
		"oae-authentication/twitter/key",
		"oae-principals/user/defaultLanguage",
	}, FlattenKeys(cfg))
}

func TestConfigKeyCache_FetchesOncePerIdentity(t *testing.T) {
	srv := resttest.NewServer()
	defer srv.Close()
	cache := NewConfigKeyCache(srv.Client())
	ctx := context.Background()

	h, err := rest.NewHandle(srv.URLFor(resttest.TenantHost), "", true)
	require.NoError(t, err)

	keys, err := cache.Keys(ctx, h, "cam", "alice")
	require.NoError(t, err)
	assert.Contains(t, keys, "oae-authentication/twitter/enabled")

	_, err = cache.Keys(ctx, h, "cam", "alice")
	require.NoError(t, err)
	assert.Len(t, srv.RequestsTo("/api/config"), 1, "second lookup is served from the cache")

	_, err = cache.Keys(ctx, h, "cam", "bob")
	require.NoError(t, err)
	assert.Len(t, srv.RequestsTo("/api/config"), 2)
	assert.Equal(t, 2, cache.Len())
}

func TestConfigKeyCache_PutKeepsFirstEntry(t *testing.T) {
	cache := NewConfigKeyCache(nil)
	first := cache.Put("cam", "alice", map[string]interface{}{"a": "1"})
	second := cache.Put("cam", "alice", map[string]interface{}{"b": "2"})
	assert.Equal(t, []string{"a"}, first)
	assert.Equal(t, first, second)
}

func TestConfigKeyCache_ErrorIsNotCached(t *testing.T) {
	srv := resttest.NewServer()
	defer srv.Close()
	srv.Fail("/api/config", 503, "down")
	cache := NewConfigKeyCache(srv.Client())

	h, err := rest.NewHandle(srv.URLFor(resttest.TenantHost), "", true)
	require.NoError(t, err)
	_, err = cache.Keys(context.Background(), h, "cam", "alice")
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}
