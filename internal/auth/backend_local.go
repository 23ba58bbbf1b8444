package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const localIssuer = "staff-dashboard-local"

var errTokenRevoked = errors.New("token revoked")

type localClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type localAccount struct {
	uid   string
	email string
	hash  []byte
}

// LocalBackend is an in-memory identity provider for development and tests.
type LocalBackend struct {
	key         []byte
	ttl         time.Duration
	allowSignUp bool
	cost        int
	now         func() time.Time

	mu       sync.RWMutex
	accounts map[string]*localAccount // by lower-cased email
	// revokedAt holds, per uid, the instant before which issued tokens are rejected.
	revokedAt map[string]time.Time
}

func NewLocalBackend(signingKey string, ttl time.Duration, allowSignUp bool) *LocalBackend {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LocalBackend{
		key:         []byte(signingKey),
		ttl:         ttl,
		allowSignUp: allowSignUp,
		cost:        bcrypt.DefaultCost,
		now:         time.Now,
		accounts:    make(map[string]*localAccount),
		revokedAt:   make(map[string]time.Time),
	}
}

// Seed registers accounts given as "email:password" pairs.
func (b *LocalBackend) Seed(entries []string) error {
	for _, entry := range entries {
		email, password, ok := strings.Cut(entry, ":")
		if !ok || email == "" || password == "" {
			return fmt.Errorf("invalid local account %q, expected email:password", entry)
		}
		if _, err := b.register(email, password); err != nil {
			return fmt.Errorf("seed %s: %w", email, err)
		}
	}
	return nil
}

func (b *LocalBackend) SignIn(_ context.Context, email, password string) (*Credential, error) {
	b.mu.RLock()
	acct, ok := b.accounts[strings.ToLower(email)]
	b.mu.RUnlock()
	if !ok {
		return nil, &AuthError{Code: CodeInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, &AuthError{Code: CodeInvalidCredentials}
	}
	return b.issue(acct)
}

func (b *LocalBackend) SignUp(_ context.Context, email, password string) (*Credential, error) {
	if !b.allowSignUp {
		return nil, &AuthError{Code: CodeOperationNotAllowed}
	}
	acct, err := b.register(email, password)
	if err != nil {
		return nil, err
	}
	return b.issue(acct)
}

func (b *LocalBackend) Verify(_ context.Context, idToken string) (*User, error) {
	claims := &localClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return b.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	acct, ok := b.accounts[strings.ToLower(claims.Email)]
	if !ok || acct.uid != claims.Subject {
		return nil, fmt.Errorf("verify id token: unknown user %s", claims.Subject)
	}
	if cutoff, ok := b.revokedAt[claims.Subject]; ok {
		if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(cutoff) {
			return nil, errTokenRevoked
		}
	}
	return &User{UID: acct.uid, Email: acct.email}, nil
}

func (b *LocalBackend) Revoke(_ context.Context, uid string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	// JWT timestamps have second precision.
	b.revokedAt[uid] = b.now().Truncate(time.Second)
	return nil
}

func (b *LocalBackend) register(email, password string) (*localAccount, error) {
	email = strings.TrimSpace(email)
	if len(password) < MinPasswordLength {
		return nil, &AuthError{Code: CodeWeakPassword}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return nil, &AuthError{Code: CodeUnknown, Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	lower := strings.ToLower(email)
	if _, exists := b.accounts[lower]; exists {
		return nil, &AuthError{Code: CodeEmailInUse}
	}
	acct := &localAccount{uid: uuid.NewString(), email: email, hash: hash}
	b.accounts[lower] = acct
	return acct, nil
}

func (b *LocalBackend) issue(acct *localAccount) (*Credential, error) {
	now := b.now()
	claims := localClaims{
		Email: acct.email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   acct.uid,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
	if err != nil {
		return nil, &AuthError{Code: CodeUnknown, Err: err}
	}
	return &Credential{User: User{UID: acct.uid, Email: acct.email}, IDToken: signed}, nil
}
