// Package google signs users in with their Google account.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"moviecatalog/auth"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c Config) complete() bool {
	return strings.TrimSpace(c.ClientID) != "" &&
		strings.TrimSpace(c.ClientSecret) != "" &&
		strings.TrimSpace(c.RedirectURL) != ""
}

// Provider implements [auth.GoogleOAuthProvider].
type Provider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewProvider returns nil when the client credentials are incomplete.
func NewProvider(cfg Config) *Provider {
	if !cfg.complete() {
		return nil
	}
	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and reads the account's
// profile with it.
func (p *Provider) Exchange(ctx context.Context, code string) (auth.OAuthUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return auth.OAuthUser{}, errors.Wrap(err, "google: exchange code")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return auth.OAuthUser{}, errors.Wrap(err, "google: create request")
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return auth.OAuthUser{}, errors.Wrap(err, "google: fetch user info")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return auth.OAuthUser{}, errors.Errorf("google: user info status %d", resp.StatusCode)
	}

	var payload struct {
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail bool   `json:"verified_email"` // nolint: tagliatelle
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return auth.OAuthUser{}, errors.Wrap(err, "google: decode user info")
	}

	return auth.OAuthUser{
		Email:         strings.ToLower(strings.TrimSpace(payload.Email)),
		Name:          strings.TrimSpace(payload.Name),
		EmailVerified: payload.VerifiedEmail,
	}, nil
}
