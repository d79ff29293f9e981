package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaeproject/oaesh/pkg/rest"
)

func completions(c *Completer, line string) ([]string, int) {
	cands, n := c.Do([]rune(line), len([]rune(line)))
	out := make([]string, len(cands))
	for i, r := range cands {
		out[i] = string(r)
	}
	return out, n
}

func TestCompleter_CommandNamesFollowContext(t *testing.T) {
	f := newFixture(t)
	c := NewCompleter(f.disp)

	got, n := completions(c, "")
	assert.Equal(t, []string{"use "}, got)
	assert.Equal(t, 0, n)

	got, _ = completions(c, "lo")
	assert.Empty(t, got, "login is not visible before use")

	require.NoError(t, dispatch(f, "use", "cam.oae.test"))
	got, n = completions(c, "lo")
	assert.Equal(t, []string{"gin "}, got)
	assert.Equal(t, 2, n)

	got, _ = completions(c, "help us")
	assert.Equal(t, []string{"e ", "er-create "}, got)
}

func TestCompleter_ConfigKeys(t *testing.T) {
	f := newFixture(t)
	c := NewCompleter(f.disp)
	require.NoError(t, dispatch(f, "use", "cam.oae.test"))
	require.NoError(t, dispatch(f, "login", "-u", "camadmin", "-p", "camadmin"))

	got, n := completions(c, "config-set -k oae-auth")
	assert.Equal(t, []string{"entication/twitter/enabled="}, got)
	assert.Equal(t, len("oae-auth"), n)

	got, _ = completions(c, "config-clear -k oae-pr")
	assert.Equal(t, []string{"incipals/user/defaultLanguage "}, got)

	got, _ = completions(c, "config-get oae-")
	assert.Equal(t, []string{"authentication ", "principals "}, got)

	assert.Len(t, f.srv.RequestsTo("/api/config"), 1, "keys are fetched once per tenant and user")

	got, _ = completions(c, "config-set -t ")
	assert.Empty(t, got)
}

func TestCompleter_KeyFetchSkipsWaitHook(t *testing.T) {
	f := newFixture(t)
	waits := 0
	f.env.Keys = NewConfigKeyCache(rest.NewClient(rest.Options{
		DialContext: f.srv.Dial,
		Wait: func(send func() error) error {
			waits++
			return send()
		},
	}))
	c := NewCompleter(f.disp)
	require.NoError(t, dispatch(f, "use", "cam.oae.test"))
	require.NoError(t, dispatch(f, "login", "-u", "camadmin", "-p", "camadmin"))

	got, _ := completions(c, "config-get oae-")
	assert.Equal(t, []string{"authentication ", "principals "}, got)
	assert.Len(t, f.srv.RequestsTo("/api/config"), 1)
	assert.Zero(t, waits, "completion draws no spinner")
}
