package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cocreate/pkg/api"
	"cocreate/pkg/auth"
	"cocreate/pkg/clientconfig"
	"cocreate/pkg/config"
	"cocreate/pkg/session"
	"cocreate/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.SetRuntime(&config.RuntimeConfig{BcryptCost: bcrypt.MinCost})
	require.NoError(t, store.Open(t.TempDir()))
	require.NoError(t, store.SeedDefaults(true, auth.HashPassword))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
		config.SetRuntime(nil)
	})
	return srv
}

type harness struct {
	t   *testing.T
	cfg *clientconfig.Config
}

func newHarness(t *testing.T, apiURL string) *harness {
	return &harness{t: t, cfg: &clientconfig.Config{
		APIURL:    apiURL,
		StatePath: filepath.Join(t.TempDir(), "state.yaml"),
		LogFile:   "discard",
	}}
}

// run executes one CLI invocation and returns its exit code and output.
func (h *harness) run(stdin string, args ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code := Main(context.Background(), args, strings.NewReader(stdin), &out, &errOut, WithConfig(h.cfg))
	return code, out.String(), errOut.String()
}

func (h *harness) state() session.State {
	h.t.Helper()
	s, err := session.NewFileStore(h.cfg.StatePath).Load()
	require.NoError(h.t, err)
	return s
}

func TestCLI_FullFlow(t *testing.T) {
	srv := newTestServer(t)
	h := newHarness(t, srv.URL)

	code, _, errOut := h.run("", "projects")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Please log in")

	code, out, _ := h.run("password\n", "login", "Fox")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Logged in")
	assert.Equal(t, "Fox", h.state().Auth.UserName)

	code, out, _ = h.run("", "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Fox (#2)")

	code, out, _ = h.run("", "projects")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "New projects")
	assert.Contains(t, out, "Online learning platform")
	assert.Contains(t, out, "Favorites")

	code, out, _ = h.run("", "projects", "favorite")
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "New projects")
	assert.Contains(t, out, "Health tracking service")

	code, _, errOut = h.run("", "troubles")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Pick a project first")

	code, out, _ = h.run("", "projects", "select", "1")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Project selected")

	code, out, _ = h.run("", "troubles", "--status", "in_progress")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "UI/UX design")
	assert.NotContains(t, out, "Technical issue")

	code, _, errOut = h.run("", "messages")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Pick a trouble first")

	code, out, _ = h.run("", "troubles", "select", "1")
	require.Equal(t, 0, code, out)
	assert.Equal(t, int64(1), h.state().Trouble.ID)

	code, out, _ = h.run("", "messages")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Owl")
	assert.Contains(t, out, "> Playback stalls")

	code, out, _ = h.run("", "messages", "send", "Happy", "to", "help", "--reply-to", "2")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Message sent")
	assert.Contains(t, out, "Happy to help")

	code, out, _ = h.run("", "participants")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "(O) Owl")
	assert.Contains(t, out, "(F) Fox")

	code, out, _ = h.run("", "logout")
	require.Equal(t, 0, code, out)
	assert.Equal(t, session.State{}, h.state())
}

func TestCLI_RegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	h := newHarness(t, srv.URL)

	code, out, errOut := h.run("one\ntwo\n", "register", "Heron")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "passwords do not match")
	assert.Empty(t, errOut)

	code, out, _ = h.run("pw\npw\n", "register", "Heron", "--category", "Education")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Registered")

	code, out, _ = h.run("", "account", "update", "--name", "Grey Heron")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Grey Heron")
	assert.Equal(t, "Grey Heron", h.state().Auth.UserName)
}

func TestCLI_OfflineUsesBuiltInData(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	code, out, _ := h.run("password\n", "--offline", "login", "Deer")
	require.Equal(t, 0, code, out)
	assert.Equal(t, "dummy-token-5", h.state().Auth.Token)

	code, out, _ = h.run("", "--offline", "projects")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Sharing economy platform")

	code, out, _ = h.run("", "--offline", "projects", "select", "104")
	require.Equal(t, 0, code, out)
	assert.Equal(t, "Freelance job matching", h.state().Project.Title)
}

func TestCLI_RejectsBadArgs(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1")

	code, _, errOut := h.run("", "projects", "everything")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")

	code, _, errOut = h.run("", "--api-url", "ftp://nope", "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "api_url")
}
