// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hashicorp/bnet-relay/oauth"
)

// Result is the outcome of a successful callback.
type Result struct {
	// State is the state parameter the provider returned.
	State string

	// CorrelationID is the identifier decoded from the state. It's zero when
	// the correlation scheme isn't in use.
	CorrelationID int64

	// Profile is the user's WoW profile summary.
	Profile *oauth.Profile

	// Characters is the first account's character list. It's only set when
	// the result was forwarded.
	Characters json.RawMessage

	// Forwarded is true when the result was relayed by a Forwarder.
	Forwarded bool
}

// Forwarder relays a callback's result downstream. Forward is called at most
// once per callback and any error it returns fails the callback.
type Forwarder interface {
	Forward(ctx context.Context, r *Result) error
}

// ForwarderFunc is an adapter to allow the use of ordinary functions as
// Forwarders.
type ForwarderFunc func(ctx context.Context, r *Result) error

// Forward calls f(ctx, r).
func (f ForwarderFunc) Forward(ctx context.Context, r *Result) error {
	return f(ctx, r)
}

// SuccessResponseFunc is used by AuthCode to create a http response when the
// callback is successful.
//
// The function should use the http.ResponseWriter to send back whatever
// content (headers, html, JSON, etc) it wishes to the client that originated
// the flow.
type SuccessResponseFunc func(r *Result, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by Authorize and AuthCode to create a http
// response when the request fails.
//
// The function receives the state returned as part of the authentication
// response (empty for Authorize). It also gets the provider's authentication
// error response and/or the error raised while processing the request. Errors
// wrap one of oauth.ErrMissingParameters, oauth.ErrTokenExchangeFailed,
// oauth.ErrProfileFetchFailed or oauth.ErrForwardingFailed.
type ErrorResponseFunc func(state string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// AuthenErrorResponse represents Oauth2 error responses.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthError
type AuthenErrorResponse struct {
	Error       string
	Description string
	Uri         string
}
