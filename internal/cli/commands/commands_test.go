package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametu-dev/gametu/internal/cli/auth"
	"github.com/gametu-dev/gametu/internal/cli/config"
	appconfig "github.com/gametu-dev/gametu/internal/config"
	"github.com/gametu-dev/gametu/internal/devserver"
)

const (
	adminEmail    = "admin@gametu.test"
	adminPassword = "admin-secret"
)

// harness runs commands against an in-process dev server
type harness struct {
	t      *testing.T
	server *config.Server
	store  *auth.MemoryStore

	// expire makes every resource endpoint answer 401
	expire atomic.Bool

	mu    sync.Mutex
	paths []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv, err := devserver.New(appconfig.DevServerConfig{
		BasePath:      "/api",
		DatabaseURL:   ":memory:",
		SessionSecret: "test-secret",
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}, zerolog.Nop(), "test")
	require.NoError(t, err)

	// login remembers the email in the user preferences file
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	h := &harness{t: t, store: auth.NewMemoryStore()}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.paths = append(h.paths, r.Method+" "+r.URL.Path)
		h.mu.Unlock()

		if h.expire.Load() && r.URL.Path != "/api/auth/user" && r.URL.Path != "/api/auth/login" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		srv.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	h.server = &config.Server{URL: ts.URL + "/api", Alias: "test"}
	return h
}

func (h *harness) requests() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

func (h *harness) options(out, errOut io.Writer) []Option {
	return []Option{
		WithServer(h.server),
		WithCookieStore(h.store),
		WithOutput(out),
		WithErrOutput(errOut),
		WithAPIConfig(appconfig.APIConfig{BaseURL: h.server.URL, Timeout: 5 * time.Second}),
	}
}

// run executes the command built by newCmd and returns its stdout and stderr
func (h *harness) run(newCmd func(...Option) *cobra.Command, args ...string) (string, string, error) {
	h.t.Helper()

	var out, errOut bytes.Buffer
	cmd := newCmd(h.options(&out, &errOut)...)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (h *harness) login(email, password string) {
	h.t.Helper()
	_, _, err := h.run(NewLoginCmd, "--email", email, "--password", password)
	require.NoError(h.t, err)
}

func (h *harness) storedCookies() []*http.Cookie {
	h.t.Helper()
	cookies, err := h.store.Load(h.server.URL)
	require.NoError(h.t, err)
	return cookies
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(NewLoginCmd, "--email", adminEmail, "--password", adminPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logging in to test (")
	assert.Contains(t, out, "✓ Login successful!")
	assert.Contains(t, out, "Role: Admin")
	assert.NotEmpty(t, h.storedCookies())

	// a new invocation restores the session from the store
	out, _, err = h.run(NewWhoamiCmd)
	require.NoError(t, err)
	assert.Contains(t, out, adminEmail)
	assert.Contains(t, out, "admin")

	out, _, err = h.run(NewLogoutCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out from test")
	assert.Empty(t, h.storedCookies())

	out, _, err = h.run(NewWhoamiCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestConnect_PersistsSessionWhenUserResolves(t *testing.T) {
	h := newHarness(t)

	c, err := newOptions(h.options(io.Discard, io.Discard)).connect(&cobra.Command{})
	require.NoError(t, err)
	defer c.close()

	c.session.Initialize(context.Background())
	assert.Empty(t, h.storedCookies(), "nothing to store without a session")

	require.NoError(t, c.session.Login(context.Background(), adminEmail, adminPassword))
	assert.NotEmpty(t, h.storedCookies(), "login is persisted as soon as it commits")

	c.session.Logout(context.Background())
	assert.NotEmpty(t, h.storedCookies(), "clearing the session leaves deletion to logout and expiry")
}

func TestLogin_FromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv("GAMETU_EMAIL", adminEmail)
	t.Setenv("GAMETU_PASSWORD", adminPassword)

	out, _, err := h.run(NewLoginCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Login successful!")
}

func TestLogin_DefaultsToLastEmail(t *testing.T) {
	h := newHarness(t)
	t.Setenv("GAMETU_EMAIL", "")
	h.login(adminEmail, adminPassword)

	out, _, err := h.run(NewLoginCmd, "--password", adminPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Using "+adminEmail+" (last login on this server)")
	assert.Contains(t, out, "✓ Login successful!")
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run(NewLoginCmd, "--email", adminEmail, "--password", "wrong")
	require.Error(t, err)
	assert.Empty(t, h.storedCookies())
	assert.NotContains(t, errOut, expiredMessage)
}

func TestLogin_RequiresEmail(t *testing.T) {
	h := newHarness(t)
	t.Setenv("GAMETU_EMAIL", "")

	_, _, err := h.run(NewLoginCmd, "--password", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
	assert.Empty(t, h.requests())
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(NewRegisterCmd,
		"--name", "Ana", "--surname", "García", "--email", "ana@gametu.test",
		"--password", "secret1", "--course", "DAW", "--notifications")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Account created for ana@gametu.test")

	h.login("ana@gametu.test", "secret1")

	out, _, err = h.run(NewProfileCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Ana García")
	assert.Contains(t, out, "DAW")
}

func TestRegister_ValidationExplained(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(NewRegisterCmd, "--name", "Bo", "--email", "bo@gametu.test", "--password", "123")
	require.Error(t, err)
	assert.Equal(t, "validation failed:\n  - password: password must be at least 6 characters", err.Error())
}

func TestCommands_RequireLogin(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(NewOffersCmd, "ls")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, _, err = h.run(NewComplaintsCmd, "ls")
	assert.ErrorIs(t, err, errNotLoggedIn)

	for _, req := range h.requests() {
		assert.Equal(t, "GET /api/auth/user", req, "only the session lookup may reach the server")
	}
}

func TestCommands_AdminGateBeforeRequest(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(NewRegisterCmd, "--name", "P", "--email", "p@gametu.test", "--password", "password")
	require.NoError(t, err)
	h.login("p@gametu.test", "password")

	_, _, err = h.run(NewUsersCmd, "ls")
	assert.ErrorIs(t, err, errAdminRequired)

	_, _, err = h.run(NewNewsCmd, "create", "--headline", "x", "--body", "y")
	assert.ErrorIs(t, err, errAdminRequired)

	_, _, err = h.run(NewCategoriesCmd, "create", "RPG")
	assert.ErrorIs(t, err, errAdminRequired)

	for _, req := range h.requests() {
		assert.NotContains(t, req, "/user/usuarios")
		assert.NotContains(t, req, "/news/create")
		assert.NotContains(t, req, "POST /api/categories")
	}
}

func TestOffersFlow(t *testing.T) {
	h := newHarness(t)
	h.login(adminEmail, adminPassword)

	out, _, err := h.run(NewOffersCmd, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No game offers found.")

	out, _, err = h.run(NewOffersCmd, "create",
		"--title", "The Legend of Zelda", "--price", "59.99", "--platform", "Switch",
		"--genre", "Adventure", "--developer", "Nintendo",
		"--release-date", "2023-05-12", "--expires", "2030-01-01", "--stock", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created game offer 1 (The Legend of Zelda)")

	_, _, err = h.run(NewOffersCmd, "create",
		"--title", "Mario Kart", "--price", "49.99", "--platform", "Switch",
		"--genre", "Racing", "--developer", "Nintendo",
		"--release-date", "2017-04-28", "--expires", "2030-01-01")
	require.NoError(t, err)

	out, _, err = h.run(NewOffersCmd, "ls", "--title", "zelda")
	require.NoError(t, err)
	assert.Contains(t, out, "The Legend of Zelda")
	assert.NotContains(t, out, "Mario Kart")

	out, _, err = h.run(NewOffersCmd, "rate", "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "average 5.0 from 1 votes")

	out, _, err = h.run(NewOffersCmd, "my-rating", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Your rating for game offer 1: 5/5")

	out, _, err = h.run(NewOffersCmd, "my-rating", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "You have not rated game offer 2 yet.")

	out, _, err = h.run(NewOffersCmd, "update", "1", "--price", "39.99")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Updated game offer 1")

	out, _, err = h.run(NewOffersCmd, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "39.99")
	assert.Contains(t, out, "Stock:")
	assert.Contains(t, out, "Your rating:")

	out, _, err = h.run(NewOffersCmd, "delete", "2", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Deleted game offer 2")

	_, _, err = h.run(NewOffersCmd, "show", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOffersCreate_ValidationExplained(t *testing.T) {
	h := newHarness(t)
	h.login(adminEmail, adminPassword)

	_, _, err := h.run(NewOffersCmd, "create",
		"--title", "Halo", "--platform", "Xbox", "--genre", "Shooter", "--developer", "Bungie",
		"--release-date", "2001-11-15", "--expires", "2030-01-01")
	require.Error(t, err)
	assert.Equal(t, "validation failed:\n  - price: price must be greater than 0", err.Error())
}

func TestOffersRate_RejectsOutOfRangeLocally(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(NewOffersCmd, "rate", "1", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 5")
	assert.Empty(t, h.requests())
}

func TestOffersDelete_NonInteractiveNeedsYes(t *testing.T) {
	h := newHarness(t)
	h.login(adminEmail, adminPassword)

	_, _, err := h.run(NewOffersCmd, "delete", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestSessionExpired_ForgetsStoredSession(t *testing.T) {
	h := newHarness(t)
	h.login(adminEmail, adminPassword)
	require.NotEmpty(t, h.storedCookies())

	h.expire.Store(true)

	_, errOut, err := h.run(NewOffersCmd, "ls")
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(errOut, expiredMessage))
	assert.Empty(t, h.storedCookies())

	h.expire.Store(false)

	_, _, err = h.run(NewOffersCmd, "ls")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestServerUnreachable_KeepsStoredSession(t *testing.T) {
	h := newHarness(t)
	h.login(adminEmail, adminPassword)
	cookies := h.storedCookies()
	require.NotEmpty(t, cookies)

	down := &config.Server{URL: "http://127.0.0.1:1/api", Alias: "down"}
	require.NoError(t, h.store.Save(down.URL, cookies))
	h.server = down

	_, _, err := h.run(NewOffersCmd, "ls")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.NotEmpty(t, h.storedCookies())
}

func TestUsersAndContent_Admin(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(NewRegisterCmd, "--name", "Pat", "--surname", "Lee", "--email", "pat@gametu.test", "--password", "password")
	require.NoError(t, err)
	h.login(adminEmail, adminPassword)

	out, _, err := h.run(NewUsersCmd, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Pat Lee")
	assert.Contains(t, out, adminEmail)

	out, _, err = h.run(NewNewsCmd, "create", "--headline", "Summer sale", "--body", "Everything 20% off")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Published news")

	out, _, err = h.run(NewNewsCmd, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer sale")

	out, _, err = h.run(NewCategoriesCmd, "create", "RPG")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created category 1 (RPG)")

	out, _, err = h.run(NewCategoriesCmd, "update", "1", "Role-playing")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Renamed category 1 to Role-playing")

	out, _, err = h.run(NewCategoriesCmd, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Role-playing")

	out, _, err = h.run(NewCategoriesCmd, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Deleted category 1")
}

func TestComplaints(t *testing.T) {
	h := newHarness(t)
	h.login(adminEmail, adminPassword)

	out, _, err := h.run(NewComplaintsCmd, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No complaints found.")

	out, _, err = h.run(NewComplaintsCmd, "create", "--title", "Late delivery", "--description", "Still waiting")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Complaint 1 filed")

	out, _, err = h.run(NewComplaintsCmd, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Late delivery")
}

func TestInitAndSelectServer(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	var out bytes.Buffer
	run := func(newCmd func(...Option) *cobra.Command, args ...string) error {
		out.Reset()
		cmd := newCmd(WithOutput(&out))
		cmd.SetArgs(args)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return cmd.Execute()
	}

	require.NoError(t, run(NewInitCmd))
	assert.Contains(t, out.String(), "✓ Created ./gametu.yaml with server local (http://localhost:3000/api)")

	require.NoError(t, run(NewInitCmd, "https://gametu.example.com/api/", "--alias", "prod"))
	assert.Contains(t, out.String(), "✓ Added server prod")

	require.NoError(t, run(NewInitCmd, "https://gametu.example.com/api"))
	assert.Contains(t, out.String(), "already exists")

	err := run(NewInitCmd, "ftp://nope")
	require.Error(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 2)

	require.NoError(t, run(NewSelectServerCmd, "prod"))
	assert.Contains(t, out.String(), "Selected server: prod (https://gametu.example.com/api)")

	server, err := resolveServer("", appconfig.DefaultBaseURL)
	require.NoError(t, err)
	assert.Equal(t, "https://gametu.example.com/api", server.URL)

	server, err = resolveServer("local", appconfig.DefaultBaseURL)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", server.URL)
}

func TestResolveServer_WithoutProjectConfig(t *testing.T) {
	chdir(t, t.TempDir())

	server, err := resolveServer("", "http://localhost:3000/api")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", server.URL)
	assert.Equal(t, "default", server.Alias)

	server, err = resolveServer("https://other.example.com/api/", "http://localhost:3000/api")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/api", server.URL)

	_, err = resolveServer("not a url", "http://localhost:3000/api")
	require.Error(t, err)
	_, statErr := os.Stat(config.ConfigFileName)
	assert.True(t, os.IsNotExist(statErr))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
