// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/bnet-relay/oauth"
)

// DefaultCorrelationParam is the query parameter Authorize reads the
// correlation identifier from.
const DefaultCorrelationParam = "discord_id"

// handlerOptions is the set of available options for Authorize and AuthCode.
type handlerOptions struct {
	withCorrelationParam   string
	withRequireCorrelation bool
	withForwarder          Forwarder
	withLogger             hclog.Logger
}

func handlerDefaults() handlerOptions {
	return handlerOptions{
		withCorrelationParam: DefaultCorrelationParam,
		withLogger:           hclog.NewNullLogger(),
	}
}

func getHandlerOpts(opt ...oauth.Option) handlerOptions {
	opts := handlerDefaults()
	oauth.ApplyOpts(&opts, opt...)
	if opts.withForwarder != nil {
		opts.withRequireCorrelation = true
	}
	return opts
}

// WithCorrelationParam overrides the query parameter Authorize reads the
// correlation identifier from.
func WithCorrelationParam(name string) oauth.Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && name != "" {
			o.withCorrelationParam = name
		}
	}
}

// WithRequireCorrelation makes the correlation identifier mandatory: it must
// be present and an integer, otherwise the request fails with
// oauth.ErrMissingParameters before any outbound call.
func WithRequireCorrelation(required bool) oauth.Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withRequireCorrelation = required
		}
	}
}

// WithForwarder provides a Forwarder for AuthCode. It implies
// WithRequireCorrelation(true).
func WithForwarder(f Forwarder) oauth.Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok {
			o.withForwarder = f
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) oauth.Option {
	return func(o interface{}) {
		if o, ok := o.(*handlerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
