package auth

import (
	"sync"

	"golang.org/x/oauth2"
)

// Credentials couples the most recently minted bearer token with the source
// able to refresh it. The mutex makes the validity-check-plus-refresh in
// AccessToken atomic; hosts may sign requests from several goroutines
// against the same authenticator.
type Credentials struct {
	mu     sync.Mutex
	scopes []string
	token  *oauth2.Token
	source oauth2.TokenSource
}

// NewCredentials wraps a token source. The initial token is empty, so the
// first AccessToken call always refreshes.
func NewCredentials(source oauth2.TokenSource, scopes []string) *Credentials {
	return &Credentials{
		scopes: append([]string(nil), scopes...),
		source: source,
	}
}

// Valid reports whether the cached token can still authorize a request.
func (c *Credentials) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.Valid()
}

// AccessToken returns a bearer token, refreshing from the underlying source
// only when the cached token is no longer valid.
func (c *Credentials) AccessToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Valid() {
		return c.token.AccessToken, nil
	}
	token, err := c.source.Token()
	if err != nil {
		return "", err
	}
	c.token = token
	return token.AccessToken, nil
}

// Refresh fetches a new token regardless of the cached token's validity.
func (c *Credentials) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, err := c.source.Token()
	if err != nil {
		return err
	}
	c.token = token
	return nil
}

// Scopes returns a copy of the permission scopes the credentials were
// requested with.
func (c *Credentials) Scopes() []string {
	return append([]string(nil), c.scopes...)
}

// TokenSource exposes the refresh source for API clients that manage their
// own token lifecycle.
func (c *Credentials) TokenSource() oauth2.TokenSource {
	return c.source
}
