package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"

	"dataproc-bridge/dataproc"
	"dataproc-bridge/widgets"
)

// DefaultCredentialsAccount is the synthetic selection entry standing for
// application default credentials rather than a Cloud SDK account.
const DefaultCredentialsAccount = "default-credentials"

// resolveGatewayURL is swapped out by tests to avoid the control plane.
var resolveGatewayURL = dataproc.ComponentGatewayURL

// GoogleAuthenticator acquires Google-account OAuth credentials from the
// Cloud SDK or from application default credentials, resolves the cluster's
// Component Gateway URL, and signs requests bound for it.
//
// It is not safe for concurrent reconfiguration; hosts serialize widget
// updates. Sign alone may be called from several goroutines.
type GoogleAuthenticator struct {
	store  CredentialStore
	find   CredentialFinder
	scopes []string

	credentialedAccounts []string
	adcConfigured        bool
	activeAccount        string
	credentials          *Credentials
	gatewayURL           string

	projectWidget *widgets.Text
	regionWidget  *widgets.Text
	clusterWidget *widgets.Text
	accountWidget *widgets.Dropdown
}

// NewGoogleAuthenticator discovers the credentialed accounts and resolves
// initial credentials. An explicit cfg.Account wins and must be among the
// selectable entries. Otherwise application default credentials are
// preferred, then the active SDK account; with none of those the instance
// starts unselected and signing fails until an account is chosen.
func NewGoogleAuthenticator(ctx context.Context, cfg Config) (*GoogleAuthenticator, error) {
	g := &GoogleAuthenticator{
		store:  cfg.Store,
		find:   cfg.FindCredentials,
		scopes: Scopes,
	}
	if g.store == nil {
		g.store = NewSDKStore()
	}
	if g.find == nil {
		g.find = google.FindDefaultCredentials
	}

	accounts, active, err := g.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	g.credentialedAccounts = accounts
	g.adcConfigured = adcConfigured(ctx, g.find)

	switch {
	case cfg.Account != "":
		if _, ok := AccountOptions(accounts, g.adcConfigured)[cfg.Account]; !ok {
			return nil, errNotCredentialed(cfg.Account)
		}
		g.activeAccount = cfg.Account
		if err := g.resolve(ctx, cfg.Account); err != nil {
			return nil, err
		}
		log.Debug().Str("account", cfg.Account).Msg("using explicitly configured account")
	case g.adcConfigured:
		g.activeAccount = DefaultCredentialsAccount
		if err := g.resolve(ctx, DefaultCredentialsAccount); err != nil {
			return nil, err
		}
		log.Debug().Msg("using application default credentials")
	case active != "":
		g.activeAccount = active
		if err := g.resolve(ctx, active); err != nil {
			return nil, err
		}
		log.Debug().Str("account", active).Msg("using active gcloud account")
	default:
		log.Debug().Msg("no usable account found, starting unselected")
	}

	factory := cfg.Factory
	if factory == nil {
		factory = widgets.DefaultFactory{}
	}
	g.buildWidgets(factory)
	return g, nil
}

// AccountOptions maps every credentialed account to itself, plus the
// synthetic default-credentials entry when application default credentials
// are usable. The result feeds account selection dropdowns.
func AccountOptions(accounts []string, adcConfigured bool) map[string]string {
	options := make(map[string]string, len(accounts)+1)
	for _, account := range accounts {
		options[account] = account
	}
	if adcConfigured {
		options[DefaultCredentialsAccount] = DefaultCredentialsAccount
	}
	return options
}

// resolve replaces the held credentials with ones for account, which is
// either the synthetic default-credentials entry or an SDK identity.
func (g *GoogleAuthenticator) resolve(ctx context.Context, account string) error {
	if account == DefaultCredentialsAccount {
		creds, err := g.find(ctx, g.scopes...)
		if err != nil {
			return &AccessTokenError{Account: account, Err: err}
		}
		g.credentials = NewCredentials(creds.TokenSource, g.scopes)
		return nil
	}
	creds, err := g.store.Describe(ctx, account, g.scopes)
	if err != nil {
		return err
	}
	g.credentials = creds
	return nil
}

func (g *GoogleAuthenticator) buildWidgets(factory widgets.Factory) {
	g.projectWidget = factory.NewText("Project:", widgets.DefaultWidth)
	g.regionWidget = factory.NewText("Region:", widgets.DefaultWidth)
	g.clusterWidget = factory.NewText("Cluster:", widgets.DefaultWidth)
	g.accountWidget = factory.NewDropdown("Account:", AccountOptions(g.credentialedAccounts, g.adcConfigured))
	if g.activeAccount != "" {
		g.accountWidget.Value = g.activeAccount
	} else {
		g.accountWidget.Disabled = true
	}
}

// Widgets returns the input controls in render order: project, region,
// cluster, account.
func (g *GoogleAuthenticator) Widgets() []widgets.Widget {
	return []widgets.Widget{g.projectWidget, g.regionWidget, g.clusterWidget, g.accountWidget}
}

// SelectAccount re-resolves credentials when account differs from the active
// one. The active account itself is not updated; it keeps naming the
// selection made at construction.
func (g *GoogleAuthenticator) SelectAccount(ctx context.Context, account string) error {
	if account == g.activeAccount {
		return nil
	}
	log.Debug().Str("account", account).Msg("re-resolving credentials for selected account")
	return g.resolve(ctx, account)
}

// UpdateWithWidgetValues resolves the Component Gateway URL from the current
// widget values, then re-resolves credentials per the account selection.
// Endpoint resolver failures propagate unchanged.
func (g *GoogleAuthenticator) UpdateWithWidgetValues(ctx context.Context) error {
	if g.credentials == nil {
		return errNoCredentials()
	}
	url, err := resolveGatewayURL(ctx, g.projectWidget.Value, g.regionWidget.Value, g.clusterWidget.Value, g.credentials.TokenSource())
	if err != nil {
		return err
	}
	g.gatewayURL = url
	return g.SelectAccount(ctx, g.accountWidget.Value)
}

// Sign attaches a bearer token to req and returns it. The held credentials
// refresh only when no longer valid.
func (g *GoogleAuthenticator) Sign(req *http.Request) (*http.Request, error) {
	if g.credentials == nil {
		return nil, errNoCredentials()
	}
	token, err := g.credentials.AccessToken()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// Key reports the identity hosts cache this instance under.
func (g *GoogleAuthenticator) Key() Key {
	return Key{
		Account:    g.activeAccount,
		GatewayURL: g.gatewayURL,
		Kind:       fmt.Sprintf("%T", g),
	}
}

// ActiveAccount returns the account chosen at construction, or the empty
// string when no account could be selected.
func (g *GoogleAuthenticator) ActiveAccount() string { return g.activeAccount }

// GatewayURL returns the most recently resolved Component Gateway base URL.
func (g *GoogleAuthenticator) GatewayURL() string { return g.gatewayURL }

// Credentials returns the currently held credentials, nil when unselected.
func (g *GoogleAuthenticator) Credentials() *Credentials { return g.credentials }
