package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// adminAuth is the subset of the Admin SDK auth client used here.
type adminAuth interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type passwordVerifier func(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error)

// FirebaseBackend signs users in against Firebase Authentication. The Admin
// SDK cannot exchange passwords, so sign-in goes through Identity Toolkit.
type FirebaseBackend struct {
	admin          adminAuth
	verifyPassword passwordVerifier
}

func NewFirebaseBackend(ctx context.Context, app *firebase.App, apiKey string) (*FirebaseBackend, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit service: %w", err)
	}

	verify := func(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
		req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		}
		return svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	}

	return &FirebaseBackend{admin: client, verifyPassword: verify}, nil
}

func (b *FirebaseBackend) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	resp, err := b.verifyPassword(ctx, email, password)
	if err != nil {
		return nil, mapToolkitError(err)
	}
	return &Credential{
		User:    User{UID: resp.LocalId, Email: resp.Email},
		IDToken: resp.IdToken,
	}, nil
}

func (b *FirebaseBackend) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	if _, err := b.admin.CreateUser(ctx, params); err != nil {
		return nil, mapAdminError(err)
	}
	return b.SignIn(ctx, email, password)
}

func (b *FirebaseBackend) Verify(ctx context.Context, idToken string) (*User, error) {
	tok, err := b.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	u := &User{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		u.Email = email
	}
	return u, nil
}

func (b *FirebaseBackend) Revoke(ctx context.Context, uid string) error {
	if err := b.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

// Identity Toolkit reports the reason as the leading word of the message,
// e.g. "WEAK_PASSWORD : Password should be at least 6 characters".
var toolkitCodes = map[string]Code{
	"EMAIL_NOT_FOUND":             CodeInvalidCredentials,
	"INVALID_PASSWORD":            CodeInvalidCredentials,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredentials,
	"USER_DISABLED":               CodeInvalidCredentials,
	"EMAIL_EXISTS":                CodeEmailInUse,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"OPERATION_NOT_ALLOWED":       CodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":     CodeOperationNotAllowed,
	"INVALID_EMAIL":               CodeInvalidEmail,
}

func mapToolkitError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return &AuthError{Code: CodeUnknown, Err: err}
	}
	reason := strings.TrimSpace(gErr.Message)
	if i := strings.IndexAny(reason, " :"); i >= 0 {
		reason = reason[:i]
	}
	if code, ok := toolkitCodes[reason]; ok {
		return &AuthError{Code: code, Err: err}
	}
	return &AuthError{Code: CodeUnknown, Err: err}
}

func mapAdminError(err error) error {
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return &AuthError{Code: CodeEmailInUse, Err: err}
	case strings.Contains(err.Error(), "password must be a string at least"):
		return &AuthError{Code: CodeWeakPassword, Err: err}
	case strings.Contains(err.Error(), "malformed email"):
		return &AuthError{Code: CodeInvalidEmail, Err: err}
	}
	return mapToolkitError(err)
}
