// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package relay

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp/bnet-relay/oauth"
	"github.com/hashicorp/bnet-relay/webhook"
)

// ErrInvalidConfig is returned when the environment doesn't describe a
// runnable relay.
var ErrInvalidConfig = errors.New("invalid relay configuration")

// EnvConfig is the relay's configuration, read from the environment once at
// startup.
type EnvConfig struct {
	ClientID     string `env:"BLIZZ_CLIENT_ID,notEmpty"`
	ClientSecret string `env:"BLIZZ_CLIENT_SECRET,notEmpty"`
	RedirectURI  string `env:"REDIRECT_URI,notEmpty"`

	// WebhookURL enables forwarding when set.
	WebhookURL       string `env:"WEBHOOK_URL"`
	RequireDiscordID bool   `env:"BNET_REQUIRE_DISCORD_ID"`

	Region     string   `env:"BNET_REGION"      envDefault:"us"`
	Locale     string   `env:"BNET_LOCALE"      envDefault:"en_US"`
	Scopes     []string `env:"BNET_SCOPES"      envDefault:"wow.profile" envSeparator:","`
	Issuer     string   `env:"BNET_ISSUER"`
	APIURL     string   `env:"BNET_API_URL"`
	ProviderCA string   `env:"BNET_PROVIDER_CA"`

	// StateSecret enables signed state when set.
	StateSecret string        `env:"BNET_STATE_SECRET"`
	StateTTL    time.Duration `env:"BNET_STATE_TTL" envDefault:"10m"`

	Port     int    `env:"PORT"      envDefault:"5000"`
	Host     string `env:"HOST"      envDefault:"0.0.0.0"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON"`
}

// LoadConfig reads the EnvConfig from the environment and validates it. Every
// missing or malformed variable is reported in the returned error.
//
// Supported options:
//	WithEnvironment
func LoadConfig(opt ...Option) (*EnvConfig, error) {
	const op = "relay.LoadConfig"
	opts := getLoadOpts(opt...)
	envOpts := env.Options{}
	if opts.withEnvironment != nil {
		envOpts.Environment = opts.withEnvironment
	}
	var c EnvConfig
	if err := env.ParseWithOptions(&c, envOpts); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// Validate checks the values which env parsing can't.
func (c *EnvConfig) Validate() error {
	const op = "relay.(EnvConfig).Validate"
	var result *multierror.Error
	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("%s: PORT %d is out of range: %w", op, c.Port, ErrInvalidConfig))
	}
	if _, err := oauth.ParseRegion(c.Region); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: BNET_REGION: %w", op, err))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("%s: LOG_LEVEL %q is unknown: %w", op, c.LogLevel, ErrInvalidConfig))
	}
	if c.StateSecret != "" && len(c.StateSecret) < oauth.MinStateKeyLength {
		result = multierror.Append(result, fmt.Errorf("%s: BNET_STATE_SECRET must be at least %d bytes: %w", op, oauth.MinStateKeyLength, ErrInvalidConfig))
	}
	if c.StateSecret != "" && c.StateTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s: BNET_STATE_TTL must be positive: %w", op, ErrInvalidConfig))
	}
	return result.ErrorOrNil()
}

// Addr is the host:port the relay listens on.
func (c *EnvConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Forwarding reports whether a webhook is configured.
func (c *EnvConfig) Forwarding() bool {
	return strings.TrimSpace(c.WebhookURL) != ""
}

// RequireCorrelation reports whether callers must supply a discord_id.
func (c *EnvConfig) RequireCorrelation() bool {
	return c.RequireDiscordID || c.Forwarding()
}

// OAuthConfig builds the provider configuration.
func (c *EnvConfig) OAuthConfig() (*oauth.Config, error) {
	const op = "relay.(EnvConfig).OAuthConfig"
	region, err := oauth.ParseRegion(c.Region)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := []oauth.Option{
		oauth.WithRegion(region),
		oauth.WithLocale(c.Locale),
		oauth.WithScopes(c.Scopes...),
	}
	if c.Issuer != "" {
		opts = append(opts, oauth.WithIssuer(c.Issuer))
	}
	if c.APIURL != "" {
		opts = append(opts, oauth.WithAPIURL(c.APIURL))
	}
	if c.ProviderCA != "" {
		opts = append(opts, oauth.WithProviderCA(c.ProviderCA))
	}
	oc, err := oauth.NewConfig(c.ClientID, oauth.ClientSecret(c.ClientSecret), c.RedirectURI, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return oc, nil
}

// StateCodec returns the signed codec when a state secret is configured and
// the plain codec otherwise.
func (c *EnvConfig) StateCodec() (oauth.StateCodec, error) {
	const op = "relay.(EnvConfig).StateCodec"
	if c.StateSecret == "" {
		return oauth.PlainState{}, nil
	}
	s, err := oauth.NewSignedState([]byte(c.StateSecret), oauth.WithStateTTL(c.StateTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Webhook returns the webhook client, or nil when forwarding is off.
func (c *EnvConfig) Webhook(opt ...webhook.Option) (*webhook.Client, error) {
	const op = "relay.(EnvConfig).Webhook"
	if !c.Forwarding() {
		return nil, nil
	}
	w, err := webhook.NewClient(c.WebhookURL, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

// Logger creates the root logger described by LOG_LEVEL and LOG_JSON.
func (c *EnvConfig) Logger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.LogLevel),
		JSONFormat: c.LogJSON,
	})
}
