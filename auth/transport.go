package auth

import "net/http"

// NewClient returns an HTTP client that signs every request through a. API
// clients consume authenticators this way instead of touching headers
// themselves.
func NewClient(a Authenticator) *http.Client {
	return &http.Client{
		Transport: &signingTransport{auth: a, base: http.DefaultTransport},
	}
}

type signingTransport struct {
	auth Authenticator
	base http.RoundTripper
}

// RoundTrip signs a clone of the request. RoundTrippers must not mutate the
// caller's request.
func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	signed, err := t.auth.Sign(req.Clone(req.Context()))
	if err != nil {
		return nil, err
	}
	return t.base.RoundTrip(signed)
}
