package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaeproject/oaesh/pkg/rest/resttest"
	"github.com/oaeproject/oaesh/pkg/shell"
)

type harness struct {
	srv      *resttest.Server
	app      *app
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	prompter *shell.MockPrompter
	config   string
}

func newHarness(t *testing.T, responses ...string) *harness {
	t.Helper()
	srv := resttest.NewServer()
	t.Cleanup(srv.Close)

	h := &harness{
		srv:      srv,
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		prompter: shell.NewMockPrompter(responses...),
		config:   filepath.Join(t.TempDir(), "config.yaml"),
	}
	h.app = &app{
		stdout:   h.stdout,
		stderr:   h.stderr,
		dial:     srv.Dial,
		prompter: h.prompter,
	}
	return h
}

func (h *harness) writeConfig(t *testing.T, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.config, []byte(body), 0o644))
}

func (h *harness) run(args ...string) int {
	return run(context.Background(), append([]string{"--config", h.config}, args...), h.app)
}

func TestRun_Version(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("--version"))
	assert.Equal(t, "oaesh "+version+"\n", h.stdout.String())
}

func TestRun_Help(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("-h"))
	assert.Contains(t, h.stdout.String(), "Usage: oaesh")
	assert.Contains(t, h.stdout.String(), "--insecure")
}

func TestRun_UnknownFlag(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("--bogus"))
	assert.Contains(t, h.stderr.String(), "unknown flag: --bogus")
	assert.Contains(t, h.stderr.String(), "Usage: oaesh")
}

func TestRun_UsernameRequiresURL(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("-u", "alice"))
	assert.Contains(t, h.stderr.String(), "If a username is specified, a target URL must be specified as well")
	assert.Empty(t, h.srv.Requests(), "nothing is sent before the usage error")
}

func TestRun_Init(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("--init"))
	assert.Contains(t, h.stdout.String(), "Config initialized at: "+h.config)
	assert.FileExists(t, h.config)

	h.stdout.Reset()
	assert.Equal(t, 0, h.run("--init"))
	assert.Contains(t, h.stdout.String(), "Config already exists at: ")
}

func TestRun_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "output:\n  format: xml\n")
	assert.Equal(t, 1, h.run("--", "help"))
	assert.Contains(t, h.stderr.String(), "Configuration Error")
}

func TestRun_UnknownLogLevel(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.run("--log-level", "loud", "--", "help"))
	assert.Contains(t, h.stderr.String(), "loud")
}

func TestRun_OneShotAsUser(t *testing.T) {
	h := newHarness(t)
	code := h.run("-U", h.srv.URLFor(resttest.TenantHost),
		"-u", resttest.RegularUser, "-p", resttest.RegularPass, "--", "me")
	assert.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Alice Smith")
	assert.Empty(t, h.prompter.Prompts, "a password on the command line is not prompted for")
}

func TestRun_PromptsForMissingPassword(t *testing.T) {
	h := newHarness(t, resttest.RegularPass)
	code := h.run("-U", h.srv.URLFor(resttest.TenantHost), "-u", resttest.RegularUser, "--", "me")
	assert.Equal(t, 0, code, h.stderr.String())
	assert.Equal(t, []string{"Password: "}, h.prompter.Prompts)
	assert.Contains(t, h.stdout.String(), "Alice Smith")
}

func TestRun_URLFromConfig(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "url: "+h.srv.URLFor(resttest.TenantHost)+"\n")
	code := h.run("-u", resttest.RegularUser, "-p", resttest.RegularPass, "--", "me")
	assert.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Alice Smith")
}

func TestRun_OneShotFailureExitsNonZero(t *testing.T) {
	h := newHarness(t)
	code := h.run("-U", h.srv.URLFor(resttest.TenantHost), "--", "exec")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Validation Error (path)")
}

func TestRun_StartupFailureTerminates(t *testing.T) {
	h := newHarness(t)
	h.srv.Fail("/api/tenant", 503, "maintenance")

	code := h.run("-U", h.srv.URLFor(resttest.TenantHost), "--", "me")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "HTTP Error (503): maintenance")
	assert.Empty(t, h.srv.RequestsTo("/api/me"), "the command never runs")
}

func TestRun_FailedLoginSkipsCommand(t *testing.T) {
	h := newHarness(t)
	code := h.run("-U", h.srv.URLFor(resttest.TenantHost),
		"-u", resttest.RegularUser, "-p", "wrong", "--", "exec", "/api/echo")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "HTTP Error")
	assert.Empty(t, h.srv.RequestsTo("/api/echo"))
}

func TestRun_ConfigExtendsContexts(t *testing.T) {
	h := newHarness(t)
	args := []string{"-U", h.srv.URLFor(resttest.TenantHost),
		"-u", resttest.RegularUser, "-p", resttest.RegularPass,
		"--", "content-get-members", "c:cam:doc"}

	assert.Equal(t, 1, h.run(args...), "not available to users by default")
	assert.Contains(t, h.stderr.String(), "not available")

	h.stderr.Reset()
	h.writeConfig(t, "contexts:\n  user-user:\n    - content-get-members\n")
	assert.Equal(t, 0, h.run(args...), h.stderr.String())
	require.Len(t, h.srv.RequestsTo("/api/content/c:cam:doc/members"), 1)
}

func TestRun_ConfigRejectsUnknownCommand(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "contexts:\n  user-user:\n    - frobnicate\n")
	assert.Equal(t, 1, h.run("--", "help"))
	assert.Contains(t, h.stderr.String(), "Configuration Error")
	assert.Contains(t, h.stderr.String(), "frobnicate")
	assert.Empty(t, h.srv.Requests())
}

func TestRun_DebugLevelReportsErrorCodes(t *testing.T) {
	h := newHarness(t)
	code := h.run("--log-level", "debug", "-U", h.srv.URLFor(resttest.TenantHost), "--", "exec")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Validation Error (path)")
	assert.Contains(t, h.stderr.String(), "code: VALIDATION_")
	assert.Contains(t, h.stderr.String(), `command="exec"`)

	h.stderr.Reset()
	assert.Equal(t, 1, h.run("-U", h.srv.URLFor(resttest.TenantHost), "--", "exec"))
	assert.NotContains(t, h.stderr.String(), "code: ")
}
