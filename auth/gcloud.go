package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
)

const (
	sdkPosixCommand   = "gcloud"
	sdkWindowsCommand = "gcloud.cmd"
)

// Account is one identity reported by `gcloud auth list`.
type Account struct {
	Name   string `json:"account"`
	Status string `json:"status"`
}

// CredentialStore enumerates locally credentialed accounts and resolves one
// of them into refreshable credentials. The Cloud SDK adapter below is the
// production implementation; tests substitute fakes.
type CredentialStore interface {
	// Accounts returns the usable account names and which of them, if any,
	// is active in the local SDK configuration.
	Accounts(ctx context.Context) (accounts []string, active string, err error)

	// Describe resolves one account into credentials carrying the given scopes.
	Describe(ctx context.Context, account string, scopes []string) (*Credentials, error)
}

type runCommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// SDKStore shells out to the Cloud SDK command-line tool. Platform naming
// and subprocess handling stay behind this type.
type SDKStore struct {
	run runCommandFunc
}

func NewSDKStore() *SDKStore {
	return &SDKStore{run: runCommand}
}

func sdkCommand() string {
	if runtime.GOOS == "windows" {
		return sdkWindowsCommand
	}
	return sdkPosixCommand
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Accounts lists the identities `gcloud auth list` reports, keeping only
// those whose access token is still obtainable. Accounts with revoked or
// expired tokens are skipped rather than failing the listing.
func (s *SDKStore) Accounts(ctx context.Context) ([]string, string, error) {
	out, err := s.run(ctx, sdkCommand(), "auth", "list", "--format", "json")
	if err != nil {
		return nil, "", &ConfigurationError{Message: "gcloud cannot be invoked", Err: err}
	}

	var listed []Account
	if err := json.Unmarshal(out, &listed); err != nil {
		return nil, "", &ConfigurationError{Message: "gcloud returned unparseable account data", Err: err}
	}

	var accounts []string
	var active string
	for _, account := range listed {
		if _, err := s.accessToken(ctx, account.Name); err != nil {
			log.Debug().Str("account", account.Name).Err(err).
				Msg("skipping account without obtainable access token")
			continue
		}
		if account.Status == "ACTIVE" {
			active = account.Name
		}
		accounts = append(accounts, account.Name)
	}
	return accounts, active, nil
}

// Describe resolves one account from `gcloud auth describe` output into
// credentials. Every failure mode normalizes to an AccessTokenError naming
// the account.
func (s *SDKStore) Describe(ctx context.Context, account string, scopes []string) (*Credentials, error) {
	out, err := s.run(ctx, sdkCommand(), "auth", "describe", account, "--format", "json")
	if err != nil {
		return nil, &AccessTokenError{Account: account, Err: err}
	}
	creds, err := google.CredentialsFromJSON(ctx, out, scopes...)
	if err != nil {
		return nil, &AccessTokenError{Account: account, Err: err}
	}
	return NewCredentials(creds.TokenSource, scopes), nil
}

// accessToken probes whether the SDK can still mint a token for account.
// The listing uses it to decide whether an account is offered at all.
func (s *SDKStore) accessToken(ctx context.Context, account string) (string, error) {
	out, err := s.run(ctx, sdkCommand(), "auth", "print-access-token", "--account="+account)
	if err != nil {
		return "", &AccessTokenError{Account: account, Err: err}
	}
	return strings.TrimSpace(string(out)), nil
}
