// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package webhook

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultTimeout bounds a single post when the caller's context carries no
// deadline of its own.
const DefaultTimeout = 10 * time.Second

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil {
			continue
		}
		o(opts)
	}
}

type clientOptions struct {
	withHTTPClient *http.Client
	withCA         string
	withTimeout    time.Duration
	withLogger     hclog.Logger
	withUserAgent  string
}

func clientDefaults() clientOptions {
	return clientOptions{
		withTimeout:   DefaultTimeout,
		withLogger:    hclog.NewNullLogger(),
		withUserAgent: "bnet-relay",
	}
}

func getClientOpts(opt ...Option) clientOptions {
	opts := clientDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithHTTPClient provides the http client used for posts. It takes
// precedence over WithCA.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withHTTPClient = c
		}
	}
}

// WithCA provides a PEM encoded CA certificate which is trusted for the
// webhook's TLS connections.
func WithCA(caPEM string) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withCA = caPEM
		}
	}
}

// WithTimeout overrides DefaultTimeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok {
			o.withTimeout = d
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with each post.
func WithUserAgent(ua string) Option {
	return func(o interface{}) {
		if o, ok := o.(*clientOptions); ok && ua != "" {
			o.withUserAgent = ua
		}
	}
}
