package shell

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oaeproject/oaesh/pkg/rest"
)

// configKeyID identifies whose view of the configuration a key list is.
type configKeyID struct {
	tenant   string
	username string
}

// ConfigKeyCache memoizes the configuration keys visible to a user on a
// tenant. Entries are filled on first use and kept for the life of the
// process.
type ConfigKeyCache struct {
	api rest.API

	mu      sync.Mutex
	entries map[configKeyID][]string
}

// NewConfigKeyCache creates an empty cache that fills itself through api.
func NewConfigKeyCache(api rest.API) *ConfigKeyCache {
	return &ConfigKeyCache{api: api, entries: make(map[configKeyID][]string)}
}

// Keys returns the sorted configuration keys of tenant as seen by username,
// fetching them through h on the first call.
func (c *ConfigKeyCache) Keys(ctx context.Context, h *rest.Handle, tenant, username string) ([]string, error) {
	id := configKeyID{tenant: tenant, username: username}
	c.mu.Lock()
	keys, ok := c.entries[id]
	c.mu.Unlock()
	if ok {
		return keys, nil
	}

	cfg, err := c.api.GetConfig(ctx, h, "")
	if err != nil {
		return nil, err
	}
	return c.Put(tenant, username, cfg), nil
}

// Put records the keys of cfg for tenant and username and returns them.
// An existing entry is kept.
func (c *ConfigKeyCache) Put(tenant, username string, cfg map[string]interface{}) []string {
	id := configKeyID{tenant: tenant, username: username}
	c.mu.Lock()
	defer c.mu.Unlock()
	if keys, ok := c.entries[id]; ok {
		return keys
	}
	keys := FlattenKeys(cfg)
	c.entries[id] = keys
	return keys
}

// Len returns the number of cached entries.
func (c *ConfigKeyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// FlattenKeys lists the slash separated paths of every leaf in cfg, sorted.
func FlattenKeys(cfg map[string]interface{}) []string {
	var keys []string
	var walk func(prefix []string, node map[string]interface{})
	walk = func(prefix []string, node map[string]interface{}) {
		for k, v := range node {
			path := append(append([]string(nil), prefix...), k)
			if child, ok := v.(map[string]interface{}); ok && len(child) > 0 {
				walk(path, child)
				continue
			}
			keys = append(keys, strings.Join(path, "/"))
		}
	}
	walk(nil, cfg)
	sort.Strings(keys)
	return keys
}
