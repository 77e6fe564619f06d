package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gametu-dev/gametu/internal/cli/auth"
	"github.com/gametu-dev/gametu/internal/cli/config"
	"github.com/gametu-dev/gametu/internal/cli/serverselect"
	appconfig "github.com/gametu-dev/gametu/internal/config"
	"github.com/gametu-dev/gametu/internal/gateway"
	"github.com/gametu-dev/gametu/internal/services"
	"github.com/gametu-dev/gametu/internal/session"
)

const expiredMessage = "Session expired. Run 'gametu login' to sign in again."

var (
	errNotLoggedIn   = errors.New("not logged in. Run 'gametu login' first")
	errAdminRequired = errors.New("admin access required")
)

type options struct {
	server     *config.Server
	store      auth.CookieStore
	out        io.Writer
	errOut     io.Writer
	httpClient *http.Client
	apiConfig  *appconfig.APIConfig
}

// Option customizes how a command reaches the backend and where it writes
type Option func(*options)

// WithServer pins the backend instead of resolving it from gametu.yaml
func WithServer(s *config.Server) Option {
	return func(o *options) {
		o.server = s
	}
}

// WithCookieStore replaces the OS keyring session store
func WithCookieStore(s auth.CookieStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithErrOutput redirects notices such as session expiry
func WithErrOutput(w io.Writer) Option {
	return func(o *options) {
		o.errOut = w
	}
}

// WithHTTPClient replaces the HTTP client used by the gateway
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithAPIConfig skips loading API settings from the environment
func WithAPIConfig(c appconfig.APIConfig) Option {
	return func(o *options) {
		o.apiConfig = &c
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		store:  auth.Default,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// client is everything a command needs to talk to one backend
type client struct {
	server  *config.Server
	gw      *gateway.Gateway
	svc     *services.Services
	session *session.Context
	store   auth.CookieStore
	out     io.Writer

	unsubscribe func()
}

func (o *options) loadAPIConfig() (appconfig.APIConfig, error) {
	if o.apiConfig != nil {
		return *o.apiConfig, nil
	}
	cfg, err := appconfig.Load()
	if err != nil {
		return appconfig.APIConfig{}, err
	}
	return cfg.API, nil
}

// connect resolves the server, restores the stored session cookies and wires
// the session context to the gateway
func (o *options) connect(cmd *cobra.Command) (*client, error) {
	apiCfg, err := o.loadAPIConfig()
	if err != nil {
		return nil, err
	}

	server := o.server
	if server == nil {
		server, err = resolveServer(serverOverride(cmd), apiCfg.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	gwOpts := []gateway.Option{
		gateway.WithTimeout(apiCfg.Timeout),
		gateway.WithLogger(log.Logger),
	}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(o.httpClient))
	}

	gw, err := gateway.New(server.URL, gwOpts...)
	if err != nil {
		return nil, err
	}

	cookies, err := o.store.Load(server.URL)
	if err != nil {
		log.Warn().Err(err).Str("server", server.URL).Msg("Failed to restore session")
	} else if len(cookies) > 0 {
		gw.Jar().SetCookies(gw.BaseURL(), cookies)
	}

	var once sync.Once
	unsubscribe := gw.OnAuthExpired(func(*gateway.SessionExpiredError) {
		once.Do(func() {
			if err := o.store.Delete(server.URL); err != nil {
				log.Warn().Err(err).Msg("Failed to delete stored session")
			}
			fmt.Fprintln(o.errOut, expiredMessage)
		})
	})

	svc := services.New(gw)
	sess := session.New(gw, svc.Auth, session.WithLogger(log.Logger))

	// Only a resolved user is written back. Clearing is left to the expiry
	// handler and logout, so an unreachable server keeps the stored session.
	stopPersist := sess.OnChange(func(user *session.User) {
		if user == nil {
			return
		}
		if err := o.store.Save(server.URL, gw.Jar().Cookies(gw.BaseURL())); err != nil {
			log.Warn().Err(err).Msg("Failed to persist session")
		}
	})

	return &client{
		server:  server,
		gw:      gw,
		svc:     svc,
		session: sess,
		store:   o.store,
		out:     o.out,
		unsubscribe: func() {
			stopPersist()
			unsubscribe()
		},
	}, nil
}

func (c *client) close() {
	c.session.Close()
	c.unsubscribe()
}

func (c *client) requireLogin() (*session.User, error) {
	user := c.session.User()
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

func (c *client) requireAdmin() (*session.User, error) {
	user, err := c.requireLogin()
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, errAdminRequired
	}
	return user, nil
}

// run connects, resolves the current session and hands over to fn
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, c *client) error) error {
	c, err := o.connect(cmd)
	if err != nil {
		return err
	}
	defer c.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c.session.Initialize(ctx)
	return explain(fn(ctx, c))
}

// resolveServer picks the backend: gametu.yaml when present, otherwise the
// override URL or the configured API base URL
func resolveServer(override, fallbackURL string) (*config.Server, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if override != "" {
			if err := config.ValidateServerURL(override); err != nil {
				return nil, fmt.Errorf("%w\nRun 'gametu init' to create a configuration file with named servers", err)
			}
			return &config.Server{URL: strings.TrimRight(override, "/")}, nil
		}
		return &config.Server{URL: fallbackURL, Alias: "default"}, nil
	}

	return serverselect.ResolveServer(cfg, override)
}

func serverOverride(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("server"); f != nil {
		return f.Value.String()
	}
	return ""
}

// explain turns backend validation failures into a per-field message
func explain(err error) error {
	var statusErr *gateway.HTTPStatusError
	if !errors.As(err, &statusErr) || len(statusErr.Fields) == 0 {
		return err
	}

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, f := range statusErr.Fields {
		fmt.Fprintf(&b, "\n  - %s: %s", f.Path, f.Msg)
	}
	return errors.New(b.String())
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
