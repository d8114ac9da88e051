package auth

import (
	"context"

	"golang.org/x/oauth2/google"
)

// Scopes requested for every credential this package acquires:
//   - cloud-platform authorizes the cluster control-plane calls.
//   - userinfo.email makes the gateway see the account email instead of a
//     numeric unique id.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/userinfo.email",
}

// CredentialFinder locates ambient application default credentials. It
// matches the signature of google.FindDefaultCredentials so tests can
// substitute fixtures.
type CredentialFinder func(ctx context.Context, scopes ...string) (*google.Credentials, error)

// ADCConfigured reports whether application default credentials are usable
// in this environment. Discovery failures of any kind mean "not configured";
// they are never surfaced as errors.
func ADCConfigured(ctx context.Context) bool {
	return adcConfigured(ctx, google.FindDefaultCredentials)
}

func adcConfigured(ctx context.Context, find CredentialFinder) bool {
	creds, err := find(ctx, Scopes...)
	return err == nil && creds != nil
}
