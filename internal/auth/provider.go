package auth

import "context"

// User is the identity issued by the provider for the duration of a session.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Listener receives the current user, or nil when signed out.
type Listener func(*User)

// Subscriber is the notification half of a Provider.
type Subscriber interface {
	// Subscribe registers fn and returns a handle that deregisters it.
	// The first delivery reports the provider's initial state.
	Subscribe(fn Listener) (unsubscribe func())
}

// Provider is the identity provider consumed by the dashboard.
type Provider interface {
	Subscriber
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
}

// TokenVerifier validates an ID token issued by a backend.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*User, error)
}

// Credential is the result of a successful password exchange.
type Credential struct {
	User    User
	IDToken string
}

// Backend performs the remote identity operations. SignIn and SignUp return
// *AuthError for every failure the user can act on.
type Backend interface {
	TokenVerifier
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	Revoke(ctx context.Context, uid string) error
}
