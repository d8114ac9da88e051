package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"dataproc-bridge/widgets"
)

type fakeStore struct {
	accounts    []string
	active      string
	listErr     error
	describeErr error

	describeCalls []string
}

func (f *fakeStore) Accounts(ctx context.Context) ([]string, string, error) {
	if f.listErr != nil {
		return nil, "", f.listErr
	}
	return f.accounts, f.active, nil
}

func (f *fakeStore) Describe(ctx context.Context, account string, scopes []string) (*Credentials, error) {
	f.describeCalls = append(f.describeCalls, account)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return NewCredentials(&countingSource{token: freshToken("store-" + account)}, scopes), nil
}

func adcAvailable(calls *int) CredentialFinder {
	return func(ctx context.Context, scopes ...string) (*google.Credentials, error) {
		*calls++
		return &google.Credentials{
			TokenSource: oauth2.StaticTokenSource(freshToken("adc-token")),
		}, nil
	}
}

func adcMissing(ctx context.Context, scopes ...string) (*google.Credentials, error) {
	return nil, errors.New("could not find default credentials")
}

func TestAccountOptions(t *testing.T) {
	tests := []struct {
		name          string
		accounts      []string
		adcConfigured bool
		want          map[string]string
	}{
		{
			name: "empty",
			want: map[string]string{},
		},
		{
			name:     "accounts map to themselves",
			accounts: []string{"alice@example.com", "bob@example.com"},
			want: map[string]string{
				"alice@example.com": "alice@example.com",
				"bob@example.com":   "bob@example.com",
			},
		},
		{
			name:          "adc adds the synthetic entry",
			accounts:      []string{"alice@example.com"},
			adcConfigured: true,
			want: map[string]string{
				"alice@example.com":       "alice@example.com",
				DefaultCredentialsAccount: DefaultCredentialsAccount,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccountOptions(tt.accounts, tt.adcConfigured))
		})
	}
}

func TestNewPrefersExplicitAccount(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com", "bob@example.com"}, active: "bob@example.com"}
	adcCalls := 0

	g, err := NewGoogleAuthenticator(context.Background(), Config{
		Account:         "alice@example.com",
		Store:           store,
		FindCredentials: adcAvailable(&adcCalls),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", g.ActiveAccount())
	assert.Equal(t, []string{"alice@example.com"}, store.describeCalls)
	assert.Equal(t, 1, adcCalls, "the finder runs once, for the availability probe")
	require.NotNil(t, g.Credentials())
}

func TestNewRejectsUnknownExplicitAccount(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}}
	adcCalls := 0

	_, err := NewGoogleAuthenticator(context.Background(), Config{
		Account:         "mallory@example.com",
		Store:           store,
		FindCredentials: adcAvailable(&adcCalls),
	})
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "mallory@example.com is not a credentialed account")
	assert.Contains(t, confErr.Message, "gcloud auth login")
	assert.Contains(t, confErr.Message, "gcloud auth list")
	assert.Empty(t, store.describeCalls, "no resolution is attempted for an unknown account")
	assert.Equal(t, 1, adcCalls, "only the availability probe runs")
}

func TestNewAllowsExplicitDefaultCredentials(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}}
	adcCalls := 0

	g, err := NewGoogleAuthenticator(context.Background(), Config{
		Account:         DefaultCredentialsAccount,
		Store:           store,
		FindCredentials: adcAvailable(&adcCalls),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultCredentialsAccount, g.ActiveAccount())
	assert.Empty(t, store.describeCalls)
	assert.Equal(t, 2, adcCalls, "probe plus resolution")
}

func TestNewPrefersDefaultCredentialsOverActiveAccount(t *testing.T) {
	store := &fakeStore{accounts: []string{"bob@example.com"}, active: "bob@example.com"}
	adcCalls := 0

	g, err := NewGoogleAuthenticator(context.Background(), Config{
		Store:           store,
		FindCredentials: adcAvailable(&adcCalls),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultCredentialsAccount, g.ActiveAccount())
	assert.Empty(t, store.describeCalls, "no per-account resolution happens")
	require.NotNil(t, g.Credentials())
}

func TestNewFallsBackToActiveAccount(t *testing.T) {
	store := &fakeStore{accounts: []string{"bob@example.com"}, active: "bob@example.com"}

	g, err := NewGoogleAuthenticator(context.Background(), Config{
		Store:           store,
		FindCredentials: adcMissing,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", g.ActiveAccount())
	assert.Equal(t, []string{"bob@example.com"}, store.describeCalls)
}

func TestNewStartsUnselectedWithoutAnyCredentials(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}}

	g, err := NewGoogleAuthenticator(context.Background(), Config{
		Store:           store,
		FindCredentials: adcMissing,
	})
	require.NoError(t, err)
	assert.Empty(t, g.ActiveAccount())
	assert.Nil(t, g.Credentials())

	dropdown, ok := g.Widgets()[3].(*widgets.Dropdown)
	require.True(t, ok)
	assert.True(t, dropdown.Disabled, "the account dropdown is disabled when nothing is selectable")
}

func TestNewPropagatesEnumerationFailure(t *testing.T) {
	cause := &ConfigurationError{Message: "gcloud cannot be invoked"}
	store := &fakeStore{listErr: cause}

	_, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	assert.ErrorIs(t, err, cause)
}

func TestNewWrapsDefaultCredentialResolutionFailure(t *testing.T) {
	calls := 0
	finder := func(ctx context.Context, scopes ...string) (*google.Credentials, error) {
		calls++
		if calls == 1 {
			return &google.Credentials{TokenSource: oauth2.StaticTokenSource(freshToken("adc-token"))}, nil
		}
		return nil, errors.New("default credentials vanished")
	}
	store := &fakeStore{}

	_, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: finder})
	var tokenErr *AccessTokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, DefaultCredentialsAccount, tokenErr.Account)
}

func TestWidgetsRenderOrderAndPopulation(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}, active: "alice@example.com"}
	adcCalls := 0

	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcAvailable(&adcCalls)})
	require.NoError(t, err)

	ws := g.Widgets()
	require.Len(t, ws, 4)
	assert.Equal(t, "Project:", ws[0].Label())
	assert.Equal(t, "Region:", ws[1].Label())
	assert.Equal(t, "Cluster:", ws[2].Label())

	dropdown, ok := ws[3].(*widgets.Dropdown)
	require.True(t, ok)
	assert.Equal(t, "Account:", dropdown.Label())
	assert.Equal(t, DefaultCredentialsAccount, dropdown.Value, "preselects the account chosen at construction")
	assert.Contains(t, dropdown.Options, "alice@example.com")
	assert.Contains(t, dropdown.Options, DefaultCredentialsAccount)
	assert.False(t, dropdown.Disabled)
}

func TestSelectAccountKeepsActiveUnchanged(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com", "bob@example.com"}, active: "alice@example.com"}

	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)
	require.Equal(t, []string{"alice@example.com"}, store.describeCalls)

	require.NoError(t, g.SelectAccount(context.Background(), "bob@example.com"))
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, store.describeCalls)
	assert.Equal(t, "alice@example.com", g.ActiveAccount(), "selection does not move the active account")

	require.NoError(t, g.SelectAccount(context.Background(), "alice@example.com"))
	assert.Len(t, store.describeCalls, 2, "selecting the active account is a no-op")
}

func TestSignAttachesBearerToken(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}, active: "alice@example.com"}

	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://gateway.example/sessions", nil)
	require.NoError(t, err)
	signed, err := g.Sign(req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer store-alice@example.com", signed.Header.Get("Authorization"))
}

func TestSignRefreshesOnlyInvalidCredentials(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}, active: "alice@example.com"}

	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	source := &countingSource{token: freshToken("minted")}
	g.credentials = NewCredentials(source, Scopes)

	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, "https://gateway.example/sessions", nil)
		require.NoError(t, err)
		_, err = g.Sign(req)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, source.calls, "a still-valid token is reused across requests")
}

func TestSignWithoutCredentials(t *testing.T) {
	store := &fakeStore{}

	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://gateway.example/sessions", nil)
	require.NoError(t, err)
	_, err = g.Sign(req)
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "gcloud auth application-default login")
}

func TestUpdateWithWidgetValues(t *testing.T) {
	restore := resolveGatewayURL
	defer func() { resolveGatewayURL = restore }()

	var gotProject, gotRegion, gotCluster string
	resolveGatewayURL = func(ctx context.Context, projectID, region, clusterName string, ts oauth2.TokenSource) (string, error) {
		gotProject, gotRegion, gotCluster = projectID, region, clusterName
		return "http://host.example:8443/gateway/default/livy/v1", nil
	}

	store := &fakeStore{accounts: []string{"alice@example.com", "bob@example.com"}, active: "alice@example.com"}
	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	ws := g.Widgets()
	ws[0].(*widgets.Text).Value = "demo-project"
	ws[1].(*widgets.Text).Value = "us-central1"
	ws[2].(*widgets.Text).Value = "demo-cluster"
	ws[3].(*widgets.Dropdown).Value = "bob@example.com"

	require.NoError(t, g.UpdateWithWidgetValues(context.Background()))
	assert.Equal(t, "demo-project", gotProject)
	assert.Equal(t, "us-central1", gotRegion)
	assert.Equal(t, "demo-cluster", gotCluster)
	assert.Equal(t, "http://host.example:8443/gateway/default/livy/v1", g.GatewayURL())
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, store.describeCalls, "the dropdown selection is re-resolved")
	assert.Equal(t, "alice@example.com", g.ActiveAccount())
}

func TestUpdateWithWidgetValuesRequiresCredentials(t *testing.T) {
	store := &fakeStore{}

	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	err = g.UpdateWithWidgetValues(context.Background())
	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Message, "failed to obtain access token")
}

func TestUpdateWithWidgetValuesPropagatesResolverFailure(t *testing.T) {
	restore := resolveGatewayURL
	defer func() { resolveGatewayURL = restore }()

	cause := errors.New("googleapi: Error 403: permission denied on cluster")
	resolveGatewayURL = func(ctx context.Context, projectID, region, clusterName string, ts oauth2.TokenSource) (string, error) {
		return "", cause
	}

	store := &fakeStore{accounts: []string{"alice@example.com"}, active: "alice@example.com"}
	g, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	err = g.UpdateWithWidgetValues(context.Background())
	assert.ErrorIs(t, err, cause, "endpoint resolver failures propagate unchanged")
	assert.Empty(t, g.GatewayURL())
}

func TestKeyIdentifiesEquivalentInstances(t *testing.T) {
	store := &fakeStore{accounts: []string{"alice@example.com"}, active: "alice@example.com"}

	a, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)
	b, err := NewGoogleAuthenticator(context.Background(), Config{Store: store, FindCredentials: adcMissing})
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "*auth.GoogleAuthenticator", a.Key().Kind)

	b.gatewayURL = "http://elsewhere.example/gateway/default/livy/v1"
	assert.NotEqual(t, a.Key(), b.Key())
}
