// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/hashicorp/bnet-relay/oauth"
)

// Authorize creates a handler which redirects the user to the provider's
// authorize endpoint. The correlation identifier is read from the
// DefaultCorrelationParam query parameter (see WithCorrelationParam) and
// encoded into the state by the StateCodec; without one, the codec generates
// a random state.
//
// When the correlation identifier is required (see WithRequireCorrelation)
// and it's missing or not an integer, the ErrorResponseFunc is called with an
// error wrapping oauth.ErrMissingParameters and no URL is built.
//
// Supported options:
//	WithCorrelationParam
//	WithRequireCorrelation
//	WithLogger
func Authorize(p *oauth.Provider, codec oauth.StateCodec, eFn ErrorResponseFunc, opt ...oauth.Option) (http.HandlerFunc, error) {
	const op = "handler.Authorize"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is nil: %w", op, oauth.ErrInvalidParameter)
	case codec == nil:
		return nil, fmt.Errorf("%s: state codec is nil: %w", op, oauth.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is nil: %w", op, oauth.ErrInvalidParameter)
	}
	opts := getHandlerOpts(opt...)
	logger := opts.withLogger.Named("authorize")

	return func(w http.ResponseWriter, req *http.Request) {
		correlationID := req.URL.Query().Get(opts.withCorrelationParam)
		if opts.withRequireCorrelation {
			if correlationID == "" {
				eFn("", nil, fmt.Errorf("%s: %s is missing: %w", op, opts.withCorrelationParam, oauth.ErrMissingParameters), w, req)
				return
			}
			if _, err := parseCorrelationID(correlationID); err != nil {
				eFn("", nil, fmt.Errorf("%s: %s: %w", op, opts.withCorrelationParam, err), w, req)
				return
			}
		}

		state, err := codec.Encode(correlationID)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: unable to encode state: %w", op, err), w, req)
			return
		}
		authURL, err := p.AuthURL(req.Context(), state)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: unable to build auth url: %w", op, err), w, req)
			return
		}
		logger.Debug("redirecting to provider", "correlation_id", correlationID)
		http.Redirect(w, req, authURL, http.StatusFound)
	}, nil
}

// parseCorrelationID parses a correlation identifier, which must be a
// positive integer (a Discord snowflake, for example).
func parseCorrelationID(s string) (int64, error) {
	const op = "handler.parseCorrelationID"
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: %q is not a valid correlation id: %w", op, s, oauth.ErrMissingParameters)
	}
	return id, nil
}
