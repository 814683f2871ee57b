// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/bnet-relay/oauth"
	sdkHttp "github.com/hashicorp/bnet-relay/sdk/http"
)

// AuthCode creates an oauth authorization code callback handler. Each
// request runs these steps in order, and the first failure calls the
// ErrorResponseFunc and ends the request:
//
//  1. the code (and, when the correlation scheme is in use, a state which
//     decodes to an integer correlation id) must be present, otherwise
//     oauth.ErrMissingParameters. No outbound call has been made.
//  2. the code is exchanged for a token, otherwise oauth.ErrTokenExchangeFailed.
//  3. the profile is fetched, otherwise oauth.ErrProfileFetchFailed.
//  4. with a Forwarder, the first account's characters are extracted and
//     forwarded, otherwise oauth.ErrForwardingFailed.
//
// The SuccessResponseFunc is then called with the Result.
//
// Supported options:
//	WithRequireCorrelation
//	WithForwarder
//	WithLogger
func AuthCode(p *oauth.Provider, codec oauth.StateCodec, sFn SuccessResponseFunc, eFn ErrorResponseFunc, opt ...oauth.Option) (http.HandlerFunc, error) {
	const op = "handler.AuthCode"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is nil: %w", op, oauth.ErrInvalidParameter)
	case codec == nil:
		return nil, fmt.Errorf("%s: state codec is nil: %w", op, oauth.ErrInvalidParameter)
	case sFn == nil:
		return nil, fmt.Errorf("%s: success response func is nil: %w", op, oauth.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is nil: %w", op, oauth.ErrInvalidParameter)
	}
	opts := getHandlerOpts(opt...)
	logger := opts.withLogger.Named("callback")

	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		// get parameters from either the body or query parameters.
		// FormValue prioritizes body values, if found.
		reqState := req.FormValue("state")

		if reqErr := req.FormValue("error"); reqErr != "" {
			respErr := &AuthenErrorResponse{
				Error:       reqErr,
				Description: req.FormValue("error_description"),
				Uri:         req.FormValue("error_uri"),
			}
			logger.Warn("provider returned an error response", "error", respErr.Error, "description", respErr.Description)
			eFn(reqState, respErr, fmt.Errorf("%s: provider error %q: %w", op, reqErr, oauth.ErrMissingParameters), w, req)
			return
		}

		reqCode := req.FormValue("code")
		if reqCode == "" {
			eFn(reqState, nil, fmt.Errorf("%s: code is missing: %w", op, oauth.ErrMissingParameters), w, req)
			return
		}

		result := &Result{State: reqState}
		switch {
		case opts.withRequireCorrelation && reqState == "":
			eFn(reqState, nil, fmt.Errorf("%s: state is missing: %w", op, oauth.ErrMissingParameters), w, req)
			return
		case reqState != "":
			correlationID, err := codec.Decode(reqState)
			if err != nil {
				eFn(reqState, nil, fmt.Errorf("%s: %w: %w", op, oauth.ErrMissingParameters, err), w, req)
				return
			}
			id, err := parseCorrelationID(correlationID)
			switch {
			case err == nil:
				result.CorrelationID = id
			case opts.withRequireCorrelation:
				eFn(reqState, nil, fmt.Errorf("%s: state: %w", op, err), w, req)
				return
			}
		}

		tk, err := p.Exchange(ctx, reqCode)
		if err != nil {
			logFailure(logger, "token exchange failed", err)
			eFn(reqState, nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}

		profile, err := p.Profile(ctx, tk)
		if err != nil {
			logFailure(logger, "profile fetch failed", err)
			eFn(reqState, nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		result.Profile = profile

		if opts.withForwarder != nil {
			chars, err := profile.FirstAccountCharacters()
			if err != nil {
				logger.Error("unable to extract characters", "error", err)
				eFn(reqState, nil, fmt.Errorf("%s: %w: %w", op, oauth.ErrForwardingFailed, err), w, req)
				return
			}
			result.Characters = chars
			if err := forward(ctx, opts.withForwarder, result); err != nil {
				logger.Error("forwarding failed", "correlation_id", result.CorrelationID, "error", err)
				eFn(reqState, nil, fmt.Errorf("%s: %w: %w", op, oauth.ErrForwardingFailed, err), w, req)
				return
			}
			result.Forwarded = true
		}
		logger.Debug("callback complete", "correlation_id", result.CorrelationID, "forwarded", result.Forwarded)
		sFn(result, w, req)
	}, nil
}

// forward calls the forwarder once, turning a panic into an error so a
// misbehaving forwarder still produces an error response.
func forward(ctx context.Context, f Forwarder, r *Result) (retErr error) {
	defer func() {
		if v := recover(); v != nil {
			retErr = fmt.Errorf("forwarder panic: %v", v)
		}
	}()
	return f.Forward(ctx, r)
}

// logFailure logs an upstream failure, including the provider's status and
// body when it replied.
func logFailure(l hclog.Logger, msg string, err error) {
	args := []interface{}{"error", err}
	var statusErr *sdkHttp.StatusError
	if errors.As(err, &statusErr) {
		args = append(args, "status", statusErr.StatusCode, "body", statusErr.Body)
	}
	l.Error(msg, args...)
}
