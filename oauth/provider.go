// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	sdkHttp "github.com/hashicorp/bnet-relay/sdk/http"
)

// Provider provides integration with Battle.net using the 3-legged oauth
// authorization code flow. A Provider is read-only after it's created and is
// safe for concurrent use.
type Provider struct {
	config *Config
	client *http.Client
}

// NewProvider creates and initializes a Provider. Unlike an OIDC provider
// there's no discovery, so no requests are made.
func NewProvider(c *Config) (*Provider, error) {
	const op = "NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	client, err := c.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	return &Provider{
		config: c,
		client: client,
	}, nil
}

// Config returns the provider's config.
func (p *Provider) Config() *Config { return p.config }

func (p *Provider) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: string(p.config.ClientSecret),
		RedirectURL:  p.config.RedirectURL,
		Endpoint:     p.config.Endpoint(),
		Scopes:       p.config.Scopes,
	}
}

// AuthURL will generate a URL the caller can use to kick off an authorization
// code flow with Battle.net. The URL carries the client id, the redirect URL,
// response_type=code, the configured scopes and the state, all percent
// encoded.
//
// See StateCodec to create a state for the request.
func (p *Provider) AuthURL(ctx context.Context, state string) (string, error) {
	const op = "Provider.AuthURL"
	if state == "" {
		return "", fmt.Errorf("%s: state is empty: %w", op, ErrInvalidParameter)
	}
	return p.oauth2Config().AuthCodeURL(state), nil
}

// Exchange will request a token from the token endpoint, using the
// authorizationCode it received in an earlier successful authentication
// response. The client authenticates with HTTP basic auth.
//
// Any response other than a 200 with an access_token returns an error which
// wraps ErrTokenExchangeFailed and, when the provider replied, a
// *sdk/http.StatusError with the status and body.
func (p *Provider) Exchange(ctx context.Context, authorizationCode string) (*Token, error) {
	const op = "Provider.Exchange"
	if authorizationCode == "" {
		return nil, fmt.Errorf("%s: authorization code is empty: %w", op, ErrInvalidParameter)
	}
	oauth2Token, err := p.oauth2Config().Exchange(sdkHttp.ClientContext(ctx, p.client), authorizationCode)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to exchange auth code with provider: %w: %w", op, ErrTokenExchangeFailed, err)
	}
	t, err := NewToken(oauth2Token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTokenExchangeFailed, err)
	}
	return t, nil
}

// Profile gets the WoW profile summary using the token as a bearer token.
// The namespace and locale are taken from the provider's config.
//
// Any response other than a 200 returns an error which wraps
// ErrProfileFetchFailed.
func (p *Provider) Profile(ctx context.Context, t *Token) (*Profile, error) {
	const op = "Provider.Profile"
	if t == nil {
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrNilParameter)
	}
	client := oauth2.NewClient(sdkHttp.ClientContext(ctx, p.client), t.StaticTokenSource())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.ProfileURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create profile request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: profile request failed: %w: %w", op, ErrProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read profile: %w: %w", op, ErrProfileFetchFailed, err)
	}
	profile, err := ParseProfile(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProfileFetchFailed, err)
	}
	return profile, nil
}
