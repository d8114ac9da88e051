package auth

import (
	"context"
	"net/http"

	"dataproc-bridge/widgets"
)

// Authenticator is the contract a request-execution host drives: it renders
// widgets for interactive configuration, applies the entered values, signs
// outbound requests, and yields a key the host caches instances under.
type Authenticator interface {
	Sign(req *http.Request) (*http.Request, error)
	Widgets() []widgets.Widget
	UpdateWithWidgetValues(ctx context.Context) error
	Key() Key
}

// Key identifies interchangeable authenticator instances. Two instances with
// equal keys hold the same selected account, the same resolved gateway URL
// and the same concrete type.
type Key struct {
	Account    string
	GatewayURL string
	Kind       string
}

// Config carries the parsed settings an authenticator is constructed with.
type Config struct {
	// Account explicitly selects an identity. Empty means pick one
	// automatically: default credentials first, then the active SDK account.
	Account string

	// Store and FindCredentials override the Cloud SDK backed defaults,
	// mainly in tests.
	Store           CredentialStore
	FindCredentials CredentialFinder

	// Factory builds the interactive widgets; nil means widgets.DefaultFactory.
	Factory widgets.Factory
}
