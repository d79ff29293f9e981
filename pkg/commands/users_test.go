package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/rest/resttest"
	"github.com/oaeproject/oaesh/pkg/session"
)

func TestUserCreate_Validation(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")

	requireValidation(t, f.run("user-create", "-m", "bob@example.com"), "username", "Required parameter")
	requireValidation(t, f.run("user-create", "-u", "bob"), "email", "Required parameter")
	assert.Zero(t, f.prompter.CallCount(), "arguments are checked before prompting")
}

func TestUserCreate_PasswordErrors(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		message   string
	}{
		{"empty", []string{""}, "No password was specified"},
		{"empty confirmation", []string{"secret", " "}, "No password was specified"},
		{"mismatch", []string{"secret", "secreT"}, "Passwords did not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.connect(t, resttest.TenantHost, "", "")
			f.prompter.Responses = tt.responses

			se := requireShellError(t, f.run("user-create", "-u", "bob", "-m", "bob@example.com"), errors.KindInternal)
			assert.Equal(t, "Password Error", se.Label)
			assert.Equal(t, tt.message, se.Message)
			assert.Empty(t, f.srv.RequestsTo("/api/user/create"))
		})
	}
}

func TestUserCreate_AnonymousSwitchesToNewUser(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")
	f.prompter.Responses = []string{"bobpass", "bobpass"}

	require.NoError(t, f.run("user-create", "-u", "bob", "-m", "bob@example.com"))
	assert.Equal(t, []string{"Password: ", "Once more: "}, f.prompter.Prompts)
	assert.Contains(t, f.out.String(), `"displayName": "bob"`, "display name defaults to the username")

	u := f.srv.UserByName(resttest.TenantHost, "bob")
	require.NotNil(t, u)
	assert.Equal(t, "bobpass", u.Password)
	assert.Equal(t, "bob@example.com", u.Email)

	st := f.state()
	assert.Equal(t, "bob", st.Label)
	assert.Equal(t, session.ContextUserUser, st.Context)
}

func TestUserCreate_AuthenticatedKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.TenantAdmin, resttest.TenantPass)
	f.prompter.Responses = []string{"pw", "pw"}

	require.NoError(t, f.run("user-create", "-u", "carol", "-m", "carol@example.com", "-d", "Carol Jones", "-v", "private"))
	u := f.srv.UserByName(resttest.TenantHost, "carol")
	require.NotNil(t, u)
	assert.Equal(t, "Carol Jones", u.DisplayName)
	assert.Equal(t, "private", u.Visibility)

	assert.Equal(t, resttest.TenantAdmin, f.state().Label)
	assert.Len(t, f.srv.RequestsTo("/api/auth/login"), 1, "only the administrator's own login")
}

func TestUserCreate_LoginFailureIsPartial(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")
	f.prompter.Responses = []string{"pw", "pw"}
	f.srv.Fail("/api/auth/login", 500, "session store down")

	se := requireShellError(t, f.run("user-create", "-u", "dave", "-m", "dave@example.com"), errors.KindInternal)
	assert.Equal(t, errors.ErrInternalPartial, se.Code)
	assert.Equal(t, "Error", se.Label)
	assert.Equal(t, "The user was created successfully, however authentication failed", se.Message)

	assert.NotNil(t, f.srv.UserByName(resttest.TenantHost, "dave"))
	assert.Contains(t, f.out.String(), `"displayName": "dave"`)
	assert.Equal(t, session.AnonymousLabel, f.state().Label)
}

func TestUserCreate_RemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, "", "")
	f.prompter.Responses = []string{"pw", "pw"}

	se := requireShellError(t, f.run("user-create", "-u", "alice", "-m", "a@example.com"), errors.KindRemote)
	assert.Equal(t, 400, se.Status)
	assert.Empty(t, f.out.String())
}

func TestAdminCreate_TenantAdmin(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.TenantAdmin, resttest.TenantPass)

	require.NoError(t, f.run("admin-create", "-u", "newadmin", "-m", "n@example.com", "--no-prompt"))
	assert.Zero(t, f.prompter.CallCount())
	assert.Contains(t, f.out.String(), `"username": "newadmin"`)

	u := f.srv.UserByName(resttest.TenantHost, "newadmin")
	require.NotNil(t, u)
	assert.True(t, u.TenantAdmin)
	assert.Equal(t, "newadmin", u.Password, "--no-prompt uses the username as password")
	assert.Len(t, f.srv.RequestsTo("/api/user/createTenantAdminUser"), 1)
	assert.Equal(t, resttest.TenantAdmin, f.state().Label)
}

func TestAdminCreate_GlobalAdmin(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.GlobalHost, resttest.AdminUser, resttest.AdminPass)

	requireValidation(t, f.run("admin-create", "-u", "gtadmin", "-m", "g@example.com"), "tenant alias", "Required parameter")

	f.prompter.Responses = []string{"gtpass", "gtpass"}
	require.NoError(t, f.run("admin-create", "-u", "gtadmin", "-m", "g@example.com", "-t", "gt"))
	u := f.srv.UserByName(resttest.OtherHost, "gtadmin")
	require.NotNil(t, u)
	assert.True(t, u.TenantAdmin)
	assert.Equal(t, "gtpass", u.Password)
	assert.Len(t, f.srv.RequestsTo("/api/user/gt/createTenantAdminUser"), 1)
	assert.Equal(t, session.ContextGlobalAdmin, f.state().Context)
}

func TestAdminCreate_RequiresAdministrator(t *testing.T) {
	f := newFixture(t)
	f.connect(t, resttest.TenantHost, resttest.RegularUser, resttest.RegularPass)

	se := requireShellError(t, f.invoke(t, AdminCreate(), "-u", "x", "-m", "x@example.com", "--no-prompt"), errors.KindInternal)
	assert.Equal(t, errors.ErrInternalState, se.Code)
	assert.Empty(t, f.srv.RequestsTo("/api/user/createTenantAdminUser"))
}
