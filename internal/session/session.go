// Package session owns the answer to "who is logged in" for the lifetime of
// the process.
//
// The user record is only ever written by Initialize, Login, Logout and the
// gateway's auth-expired notification. Every write after the first resolution
// is ordered by a monotonic sequence number: Login, Logout and expiry claim a
// new sequence before doing any I/O, a committed login advances it again, and
// a completion whose sequence is no longer current is dropped instead of
// committed.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gametu-dev/gametu/internal/gateway"
)

const (
	// RoleAdmin is the role value the backend assigns to administrators
	RoleAdmin = "admin"

	currentUserPath = "/auth/user"
	logoutPath      = "/auth/logout"
)

// ErrSuperseded is reported by Login when a later login, logout or session
// expiry overtook it before its result could be stored
var ErrSuperseded = errors.New("superseded by a newer session change")

// User is the authenticated identity returned by the backend
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// State is the lifecycle of the session context
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Authenticator submits credentials to the backend. A successful call leaves
// the session cookie in the gateway's jar; it does not return the user.
type Authenticator interface {
	LoginUser(ctx context.Context, email, password string) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface
type AuthenticatorFunc func(ctx context.Context, email, password string) error

func (f AuthenticatorFunc) LoginUser(ctx context.Context, email, password string) error {
	return f(ctx, email, password)
}

// AuthenticationError is returned when a login attempt fails. The previous
// session is left untouched.
type AuthenticationError struct {
	Email string
	Err   error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("login failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// Option configures a Context
type Option func(*Context)

// WithLogger sets the logger for session transitions
func WithLogger(l zerolog.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}

// Context is the process-wide session holder
type Context struct {
	gw     *gateway.Gateway
	auth   Authenticator
	logger zerolog.Logger

	mu    sync.RWMutex
	user  *User
	state State
	seq   uint64

	ready     chan struct{}
	readyOnce sync.Once

	// loginMu serializes login attempts end to end
	loginMu sync.Mutex

	listenersMu  sync.Mutex
	listeners    map[int]func(*User)
	nextListener int

	unsubscribe func()
}

// New creates a session context on top of gw. It subscribes to the gateway's
// auth-expired notification; call Close to detach.
func New(gw *gateway.Gateway, auth Authenticator, opts ...Option) *Context {
	c := &Context{
		gw:        gw,
		auth:      auth,
		logger:    zerolog.Nop(),
		ready:     make(chan struct{}),
		listeners: make(map[int]func(*User)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.unsubscribe = gw.OnAuthExpired(func(err *gateway.SessionExpiredError) {
		c.logger.Info().Str("url", err.URL).Msg("Session expired")
		c.clear()
	})

	return c
}

// Close detaches the context from the gateway
func (c *Context) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Initialize asks the backend who is logged in. Any failure resolves to
// "no session" without surfacing the error.
func (c *Context) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateUninitialized {
		c.state = StateLoading
	}
	seq := c.seq
	c.mu.Unlock()

	user, err := c.fetchUser(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("No active session")
		user = nil
	}

	// A lookup may still land while the first resolution is pending, even if a
	// login has claimed a newer generation; that login commits on top of it.
	if !c.commit(seq, user, true) {
		c.logger.Debug().Msg("Discarding stale session lookup")
	}
}

// Login submits credentials and then loads the authoritative user record
func (c *Context) Login(ctx context.Context, email, password string) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	seq := c.claim()

	if err := c.auth.LoginUser(ctx, email, password); err != nil {
		return &AuthenticationError{Email: email, Err: err}
	}

	user, err := c.fetchUser(ctx)
	if err != nil {
		return &AuthenticationError{Email: email, Err: err}
	}

	if !c.commit(seq, user, false) {
		return &AuthenticationError{Email: email, Err: ErrSuperseded}
	}

	c.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User logged in")
	return nil
}

// Logout ends the backend session. The local session is cleared regardless of
// how the backend answers.
func (c *Context) Logout(ctx context.Context) {
	err := c.gw.Do(ctx, gateway.Request{
		Method:          http.MethodPost,
		Path:            logoutPath,
		SkipAuthExpired: true,
	}, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Logout request failed, clearing local session anyway")
	}

	c.clear()
}

// Wait blocks until the session has been resolved at least once
func (c *Context) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// User returns a copy of the current user, or nil when nobody is logged in
func (c *Context) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAuthenticated reports whether a user is present
func (c *Context) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil
}

// IsAdmin reports whether the current user is an administrator
func (c *Context) IsAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.IsAdmin()
}

// State returns the lifecycle state
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnChange registers fn to receive the new user (nil on logout) after every
// committed change. The returned function removes the subscription.
func (c *Context) OnChange(fn func(*User)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Context) fetchUser(ctx context.Context) (*User, error) {
	user, err := gateway.Fetch[*User](ctx, c.gw, gateway.Request{
		Path:            currentUserPath,
		SkipAuthExpired: true,
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("empty session payload")
	}
	return user, nil
}

// claim starts a new write generation and invalidates every in-flight one
func (c *Context) claim() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// commit stores user if no newer generation was claimed since seq was read.
// With whileUnresolved, a stale commit is still accepted until the first
// resolution so the context cannot stay loading forever. A login commit
// (whileUnresolved false) closes its generation, so a lookup that read the
// same sequence before the login finished can no longer land on top of it.
func (c *Context) commit(seq uint64, user *User, whileUnresolved bool) bool {
	c.mu.Lock()
	if c.seq != seq && !(whileUnresolved && c.state != StateResolved) {
		c.mu.Unlock()
		return false
	}
	if !whileUnresolved {
		c.seq++
	}
	c.user = user
	c.state = StateResolved
	c.mu.Unlock()

	c.markReady()
	c.notify(user)
	return true
}

func (c *Context) clear() {
	c.mu.Lock()
	c.seq++
	c.user = nil
	c.state = StateResolved
	c.mu.Unlock()

	c.markReady()
	c.notify(nil)
}

func (c *Context) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *Context) notify(user *User) {
	c.listenersMu.Lock()
	fns := make([]func(*User), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		var u *User
		if user != nil {
			cp := *user
			u = &cp
		}
		fn(u)
	}
}
