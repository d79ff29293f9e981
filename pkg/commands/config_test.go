package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/rest/resttest"
)

func TestConfigGet(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")

	require.NoError(t, f.run("config-get"))
	assert.Contains(t, f.out.String(), `"oae-principals"`)
	assert.Contains(t, f.out.String(), `"oae-authentication"`)
	assert.Equal(t, 1, f.env.Keys.Len(), "the fetched configuration primes key completion")

	f.out.Reset()
	require.NoError(t, f.run("config-get", "oae-principals"))
	assert.Contains(t, f.out.String(), `"defaultLanguage": "en_GB"`)
	assert.NotContains(t, f.out.String(), "twitter")
}

func TestConfigGet_UnknownModule(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")

	err := f.run("config-get", "oae-nothing")
	requireValidation(t, err, "moduleName", `No configuration found for module "oae-nothing"`)
}

func TestConfigGet_OtherTenant(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.GlobalHost, resttest.AdminUser, resttest.AdminPass)

	require.NoError(t, f.run("config-get", "-t", "gt"))
	reqs := f.srv.RequestsTo("/api/config/gt")
	require.Len(t, reqs, 1)
	assert.Equal(t, 0, f.env.Keys.Len(), "another tenant's keys are not cached as the current one's")
}

func TestConfigSet(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.TenantAdmin, resttest.TenantPass)

	require.NoError(t, f.run("config-set", "-k", "oae-principals/user/defaultLanguage=fr_FR", "-k", "oae-authentication/twitter/enabled=false"))
	assert.Contains(t, f.out.String(), `"oae-principals/user/defaultLanguage": "fr_FR"`)

	cfg := f.srv.Config("cam")
	user := cfg["oae-principals"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "fr_FR", user["defaultLanguage"])
}

func TestConfigSet_OtherTenant(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.GlobalHost, resttest.AdminUser, resttest.AdminPass)

	require.NoError(t, f.run("config-set", "--tenant=gt", "-k", "oae-principals/user/defaultLanguage=nl_NL"))
	user := f.srv.Config("gt")["oae-principals"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "nl_NL", user["defaultLanguage"])
}

func TestConfigSet_Validation(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.TenantAdmin, resttest.TenantPass)

	requireValidation(t, f.run("config-set"), "k",
		`Must use the "k" parameter to specify at least one key-value pair to set`)
	requireValidation(t, f.run("config-set", "-k", "oae-principals/user/defaultLanguage"), "k",
		`Invalid key-value pair: "oae-principals/user/defaultLanguage"`)
	assert.Len(t, f.srv.RequestsTo("/api/config"), 0)
}

func TestConfigSet_NotAllowedForAnonymous(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")

	se := requireShellError(t, f.run("config-set", "-k", "a=b"), errors.KindValidation)
	assert.Equal(t, errors.ErrCommandNotAllowed, se.Code)
}

func TestConfigClear(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.TenantAdmin, resttest.TenantPass)

	requireValidation(t, f.run("config-clear"), "k",
		`Must use the "k" parameter to specify at least one configuratio key to clear`)

	require.NoError(t, f.run("config-clear", "-k", "oae-authentication/twitter/enabled"))
	assert.Empty(t, f.out.String())
	twitter := f.srv.Config("cam")["oae-authentication"].(map[string]interface{})["twitter"].(map[string]interface{})
	assert.NotContains(t, twitter, "enabled")
	assert.Equal(t, []string{"oae-authentication/twitter/enabled"}, f.srv.RequestsTo("/api/config/clear")[0].Form["configFields"])
}

func TestConfig_RemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.RegularUser, resttest.RegularPass)

	se := requireShellError(t, f.run("config-get", "-t", "nowhere"), errors.KindRemote)
	assert.Equal(t, 404, se.Status)
}
