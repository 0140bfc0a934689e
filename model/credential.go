package model

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential identifies the caller to the API. It is immutable after
// construction and safe for concurrent reads.
type Credential struct {
	Token        string
	Organization string
	APIBaseURL   string
}

// Validate checks that all mandatory fields are present.
func (c Credential) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// BaseURL returns APIBaseURL without a trailing slash.
func (c Credential) BaseURL() string {
	return strings.TrimRight(c.APIBaseURL, "/")
}

// ExpiresAt returns the expiry of the token when it is a JWT carrying an
// exp claim. The signature is not verified; the server remains the
// authority, this only lets the client fail fast on a stale token.
func (c Credential) ExpiresAt() (time.Time, bool) {
	if strings.Count(c.Token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the token has a known expiry before now.
func (c Credential) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	return ok && !exp.After(now)
}

// CredentialProvider supplies the credential for a call. It is read once
// per call.
type CredentialProvider interface {
	Credential(ctx context.Context) (Credential, error)
}

// StaticCredential is a CredentialProvider that always returns itself.
type StaticCredential Credential

// Credential implements CredentialProvider.
func (s StaticCredential) Credential(context.Context) (Credential, error) {
	return Credential(s), nil
}

type credentialKey struct{}

// WithCredential attaches a credential to the context. It takes precedence
// over the engine's provider for calls made with that context.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, cred)
}

// CredentialFrom extracts the credential attached with WithCredential.
func CredentialFrom(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(credentialKey{}).(Credential)
	return cred, ok
}
