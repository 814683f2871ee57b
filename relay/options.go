// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package relay

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
)

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

type loadOptions struct {
	withEnvironment map[string]string
}

func loadDefaults() loadOptions {
	return loadOptions{}
}

func getLoadOpts(opt ...Option) loadOptions {
	opts := loadDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithEnvironment makes LoadConfig read the given variables instead of the
// process environment.
func WithEnvironment(env map[string]string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loadOptions); ok {
			o.withEnvironment = env
		}
	}
}

type serverOptions struct {
	withLogger            hclog.Logger
	withWebhookHTTPClient *http.Client
}

func serverDefaults() serverOptions {
	return serverOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getServerOpts(opt ...Option) serverOptions {
	opts := serverDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}

// WithWebhookHTTPClient provides the http client the webhook is posted
// with.
func WithWebhookHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*serverOptions); ok {
			o.withWebhookHTTPClient = c
		}
	}
}
