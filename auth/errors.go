package auth

import "fmt"

// ConfigurationError reports a local setup this package cannot work with:
// the Cloud SDK cannot be invoked, an explicitly configured account is not
// credentialed, or an operation that needs credentials ran before any were
// resolved. Callers branch on it with errors.As.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AccessTokenError reports that credential material for a single account
// could not be obtained. Subprocess failures, unparseable SDK output and
// schema mismatches all normalize to this kind; the cause stays reachable
// through Unwrap.
type AccessTokenError struct {
	Account string
	Err     error
}

func (e *AccessTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not obtain access token for %s: %v", e.Account, e.Err)
	}
	return fmt.Sprintf("could not obtain access token for %s", e.Account)
}

func (e *AccessTokenError) Unwrap() error { return e.Err }

const loginHint = "Run `gcloud auth login` in your command line to authorize gcloud to access " +
	"the Cloud Platform with Google user credentials to authenticate. Run `gcloud auth " +
	"application-default login` to acquire new user credentials to use for Application " +
	"Default Credentials."

func errNotCredentialed(account string) *ConfigurationError {
	return &ConfigurationError{
		Message: fmt.Sprintf("%s is not a credentialed account. %s Run `gcloud auth list` to see your credentialed accounts.", account, loginHint),
	}
}

func errNoCredentials() *ConfigurationError {
	return &ConfigurationError{
		Message: fmt.Sprintf("failed to obtain access token. %s", loginHint),
	}
}
