// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/oauth2"

	sdkHttp "github.com/hashicorp/bnet-relay/sdk/http"
)

// ClientSecret is an oauth client Secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret.
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret.
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret.
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// DefaultScope is the scope requested when none are configured. It grants
// access to the user's WoW profile.
const DefaultScope = "wow.profile"

const (
	authorizePath = "/authorize"
	tokenPath     = "/token"
	profilePath   = "/profile/user/wow"
)

// Config represents the static client configuration for a Battle.net
// authorization code flow. It's loaded once at start and must not be modified
// after it's passed to NewProvider.
type Config struct {
	// ClientID is the client id registered with Battle.net.
	ClientID string

	// ClientSecret is the client's secret.
	ClientSecret ClientSecret

	// RedirectURL is the callback URL registered with Battle.net.
	RedirectURL string

	// Scopes is the list of scopes requested.
	Scopes []string

	// Region selects the default Issuer, APIURL and the profile namespace.
	Region Region

	// Locale is used for profile requests, in Battle.net form (en_US).
	Locale string

	// Issuer is the base URL for the authorize and token endpoints.
	Issuer string

	// APIURL is the base URL for the profile API.
	APIURL string

	// ProviderCA is an optional CA certs (PEM encoded) to use when sending
	// requests to the provider.
	ProviderCA string
}

// NewConfig composes a new config for the Battle.net provider. The region
// defaults to US and the locale to en_US.
//
// Supported options:
//	WithScopes
//	WithRegion
//	WithLocale
//	WithIssuer
//	WithAPIURL
//	WithProviderCA
func NewConfig(clientID string, clientSecret ClientSecret, redirectURL string, opt ...Option) (*Config, error) {
	const op = "NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       opts.withScopes,
		Region:       opts.withRegion,
		Locale:       opts.withLocale,
		Issuer:       opts.withIssuer,
		APIURL:       opts.withAPIURL,
		ProviderCA:   opts.withProviderCA,
	}
	if c.Issuer == "" {
		c.Issuer = c.Region.Issuer()
	}
	if c.APIURL == "" {
		c.APIURL = c.Region.APIURL()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid provider config: %w", op, err)
	}
	if normalized, err := NormalizeLocale(c.Locale); err == nil {
		c.Locale = normalized
	}
	return c, nil
}

// Validate the provider configuration. All the problems found are reported
// together.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var retErr *multierror.Error
	if c.ClientID == "" {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter))
	}
	if c.ClientSecret == "" {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: client secret is empty: %w", op, ErrInvalidParameter))
	}
	if c.RedirectURL == "" {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: redirect URL is empty: %w", op, ErrInvalidParameter))
	} else if err := validateURL(c.RedirectURL); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: redirect URL %q: %w", op, c.RedirectURL, err))
	}
	if len(c.Scopes) == 0 {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: scopes are empty: %w", op, ErrInvalidParameter))
	}
	if !c.Region.Valid() {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: unsupported region %q: %w", op, c.Region, ErrInvalidParameter))
	}
	if _, err := NormalizeLocale(c.Locale); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: %w", op, err))
	}
	if err := validateURL(c.Issuer); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: issuer %q: %w", op, c.Issuer, err))
	}
	if err := validateURL(c.APIURL); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("%s: api URL %q: %w", op, c.APIURL, err))
	}
	if c.ProviderCA != "" {
		if _, err := c.HTTPClient(); err != nil {
			retErr = multierror.Append(retErr, fmt.Errorf("%s: %w", op, err))
		}
	}
	return retErr.ErrorOrNil()
}

func validateURL(s string) error {
	if s == "" {
		return fmt.Errorf("url is empty: %w", ErrInvalidParameter)
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("url is invalid: %w", ErrInvalidParameter)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("url scheme %q is not http or https: %w", u.Scheme, ErrInvalidParameter)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host: %w", ErrInvalidParameter)
	}
	return nil
}

// Endpoint returns the oauth2 endpoint for the configured issuer. The client
// authenticates to the token endpoint with HTTP basic auth.
func (c *Config) Endpoint() oauth2.Endpoint {
	issuer := strings.TrimSuffix(c.Issuer, "/")
	return oauth2.Endpoint{
		AuthURL:   issuer + authorizePath,
		TokenURL:  issuer + tokenPath,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

// ProfileURL returns the WoW profile summary URL, including the namespace
// and locale query parameters.
func (c *Config) ProfileURL() string {
	v := url.Values{}
	v.Set("namespace", c.Region.ProfileNamespace())
	v.Set("locale", c.Locale)
	return strings.TrimSuffix(c.APIURL, "/") + profilePath + "?" + v.Encode()
}

// HTTPClient is a helper function that creates a new http client for the
// provider configured. The client treats every response that isn't a 200 as
// an error (see sdk/http.StatusError).
func (c *Config) HTTPClient() (*http.Client, error) {
	const op = "Config.HTTPClient"
	client, err := sdkHttp.NewStrictClient(c.ProviderCA)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value successfully: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// configOptions is the set of available options
type configOptions struct {
	withScopes     []string
	withRegion     Region
	withLocale     string
	withIssuer     string
	withAPIURL     string
	withProviderCA string
}

// configDefaults is a handy way to get the defaults at runtime and
// during unit tests.
func configDefaults() configOptions {
	return configOptions{
		withScopes: []string{DefaultScope},
		withRegion: US,
		withLocale: DefaultLocale,
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed
// in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithScopes provides an optional list of scopes which replaces the default
// wow.profile scope.
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withScopes = scopes
		}
	}
}

// WithRegion provides an optional region for the provider's config.
func WithRegion(r Region) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRegion = r
		}
	}
}

// WithLocale provides an optional locale used for profile requests.
func WithLocale(locale string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withLocale = locale
		}
	}
}

// WithIssuer overrides the region's issuer (base URL of the authorize and
// token endpoints).
func WithIssuer(issuer string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withIssuer = issuer
		}
	}
}

// WithAPIURL overrides the region's API base URL.
func WithAPIURL(apiURL string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAPIURL = apiURL
		}
	}
}

// WithProviderCA provides an optional CA certs (PEM encoded) for the
// provider's config.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}
