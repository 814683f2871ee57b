// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
handler is a package for creating the http.HandlerFuncs of a Battle.net
authorization code relay.

Authorize creates the handler which redirects the user to the provider's
authorize endpoint, carrying an optional correlation identifier in the state.

AuthCode creates the callback handler: it validates the code and state,
exchanges the code for a token, fetches the profile and, when a Forwarder is
configured, relays the first account's characters downstream. Each step is
terminal on failure and nothing is retried.

Both use an ErrorResponseFunc to write failures, and AuthCode uses a
SuccessResponseFunc to write the result.
*/
package handler
