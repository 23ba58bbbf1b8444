package auth

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const restoreTimeout = 10 * time.Second

type ClientOptions struct {
	// Key identifies the persisted credential in the token store.
	Key      string
	Tokens   TokenStore
	TokenTTL time.Duration
	// Throttle limits SignIn and SignUp per account. Nil disables it.
	Throttle *Throttle
	Logger   *zap.Logger
}

// Client is a Provider backed by a remote Backend. One Client holds the
// identity of exactly one browser workspace.
type Client struct {
	backend  Backend
	tokens   TokenStore
	key      string
	ttl      time.Duration
	throttle *Throttle
	logger   *zap.Logger

	restoreOnce sync.Once

	// deliverMu serializes state changes with listener deliveries, so every
	// listener sees users in the order they were set.
	deliverMu sync.Mutex

	mu        sync.Mutex
	user      *User
	restored  bool
	listeners map[uint64]Listener
	nextID    uint64
}

func NewClient(backend Backend, opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Client{
		backend:   backend,
		tokens:    tokens,
		key:       opts.Key,
		ttl:       opts.TokenTTL,
		throttle:  opts.Throttle,
		logger:    logger.With(zap.String("component", "auth_client")),
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers fn. The initial delivery happens asynchronously once
// the persisted credential has been restored. The returned handle must not be
// called from inside a listener.
func (c *Client) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	go func() {
		c.restoreOnce.Do(c.restore)

		c.deliverMu.Lock()
		defer c.deliverMu.Unlock()

		c.mu.Lock()
		l, ok := c.listeners[id]
		u := c.user.clone()
		c.mu.Unlock()
		if ok {
			l(u)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.deliverMu.Lock()
			defer c.deliverMu.Unlock()
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if err := c.allow(email); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, &AuthError{Code: CodeInvalidCredentials}
	}

	cred, err := c.backend.SignIn(ctx, email, password)
	if err != nil {
		c.logger.Info("sign-in rejected", zap.String("code", string(CodeOf(err))), zap.Error(err))
		return nil, asAuthError(err)
	}
	return c.establish(ctx, cred), nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if err := c.allow(email); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &AuthError{Code: CodeInvalidEmail, Err: err}
	}
	if len(password) < MinPasswordLength {
		return nil, &AuthError{Code: CodeWeakPassword}
	}

	cred, err := c.backend.SignUp(ctx, email, password)
	if err != nil {
		c.logger.Info("sign-up rejected", zap.String("code", string(CodeOf(err))), zap.Error(err))
		return nil, asAuthError(err)
	}
	return c.establish(ctx, cred), nil
}

// SignOut always clears the local identity. Revocation and token removal
// failures are logged.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.user.clone()
	c.mu.Unlock()

	if current != nil {
		if err := c.backend.Revoke(ctx, current.UID); err != nil {
			c.logger.Warn("failed to revoke tokens", zap.String("uid", current.UID), zap.Error(err))
		}
	}
	if err := c.tokens.Delete(ctx, c.key); err != nil {
		c.logger.Warn("failed to delete stored token", zap.Error(err))
	}

	c.set(nil)
	return nil
}

// Current returns the user as last set, without waiting for a restore.
func (c *Client) Current() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.clone()
}

func (c *Client) allow(email string) error {
	if !c.throttle.Allow(EmailKey(email)) {
		return &AuthError{Code: CodeTooManyRequests}
	}
	return nil
}

func (c *Client) establish(ctx context.Context, cred *Credential) *User {
	if cred.IDToken != "" {
		if err := c.tokens.Save(ctx, c.key, cred.IDToken, c.ttl); err != nil {
			c.logger.Warn("failed to persist token", zap.Error(err))
		}
	}
	u := cred.User
	c.set(&u)
	return u.clone()
}

// set replaces the user and notifies every listener under deliverMu.
func (c *Client) set(u *User) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	c.user = u.clone()
	c.restored = true
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.mu.Unlock()

	for _, l := range ls {
		l(u.clone())
	}
}

// restore loads and verifies the persisted token. Any failure leaves the
// client signed out. A sign-in that completed meanwhile wins.
func (c *Client) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	var restored *User
	token, err := c.tokens.Load(ctx, c.key)
	switch {
	case err != nil:
		c.logger.Warn("failed to load stored token", zap.Error(err))
	case token != "":
		u, err := c.backend.Verify(ctx, token)
		if err != nil {
			c.logger.Info("stored token rejected", zap.Error(err))
			_ = c.tokens.Delete(ctx, c.key)
		} else {
			restored = u
		}
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.mu.Lock()
	if !c.restored {
		c.user = restored.clone()
		c.restored = true
	}
	c.mu.Unlock()
}
