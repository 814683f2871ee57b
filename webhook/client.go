// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	sdkHttp "github.com/hashicorp/bnet-relay/sdk/http"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidURL       = errors.New("invalid webhook url")
	ErrSendFailed       = errors.New("webhook send failed")
)

// Payload is the document posted to the webhook.
type Payload struct {
	// DiscordID is the correlation identifier supplied at authorization.
	DiscordID int64 `json:"discord_id"`

	// Characters is the character list of the user's first account, exactly
	// as the profile API returned it.
	Characters json.RawMessage `json:"characters"`
}

// MarshalJSON keeps an absent character list as an empty array.
func (p Payload) MarshalJSON() ([]byte, error) {
	type alias Payload
	a := alias(p)
	if len(bytes.TrimSpace(a.Characters)) == 0 {
		a.Characters = json.RawMessage("[]")
	}
	return json.Marshal(a)
}

// Client posts payloads to a single webhook URL. It's safe for concurrent
// use.
type Client struct {
	url       string
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    hclog.Logger
}

// NewClient creates a Client for the webhook at rawURL, which must be an
// absolute http or https URL.
//
// Supported options:
//	WithHTTPClient
//	WithCA
//	WithTimeout
//	WithLogger
//	WithUserAgent
func NewClient(rawURL string, opt ...Option) (*Client, error) {
	const op = "webhook.NewClient"
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%s: url is empty: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s: %q must be an absolute http(s) url: %w", op, rawURL, ErrInvalidURL)
	}

	opts := getClientOpts(opt...)
	hc := opts.withHTTPClient
	if hc == nil {
		hc, err = sdkHttp.NewClient(opts.withCA)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return &Client{
		url:       u.String(),
		client:    hc,
		timeout:   opts.withTimeout,
		userAgent: opts.withUserAgent,
		logger:    opts.withLogger.Named("webhook"),
	}, nil
}

// URL returns the webhook's URL.
func (c *Client) URL() string { return c.url }

// Send posts the payload once. It fails only when the post itself fails; the
// response status is logged and not checked.
func (c *Client) Send(ctx context.Context, p Payload) error {
	const op = "webhook.(Client).Send"
	if ctx == nil {
		return fmt.Errorf("%s: context is nil: %w", op, ErrInvalidParameter)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%s: unable to encode payload: %w", op, err)
	}
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrSendFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	c.logger.Debug("payload delivered", "discord_id", p.DiscordID, "status", resp.StatusCode)
	return nil
}
