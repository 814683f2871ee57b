// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
oauth is a package for relaying a Battle.net OAuth2 authorization code flow:
redirecting a user to the provider, exchanging the returned code for an
access token and fetching the user's World of Warcraft profile with it.

Primary types provided by the package

* Config: the static client configuration (client id/secret, redirect URL,
scopes, region, locale). ClientSecret redacts itself when printed or
marshaled.

* Provider: generates auth URLs, exchanges authorization codes for Tokens and
fetches Profiles. Every provider response must carry a 200 status, anything
else is an error.

* Token: the access token returned by an exchange. It is never persisted.

* Profile: the WoW profile summary, with each account's characters kept as
raw JSON so they can be forwarded verbatim.

* StateCodec: maps an optional correlation identifier to and from the oauth
"state" parameter. PlainState round-trips the identifier as-is, SignedState
wraps it in a short lived HS256 JWT.

* Region: a Battle.net region which determines the default endpoints and the
profile namespace.

The oauth/handler package

The handler package creates the http.HandlerFuncs for the two legs of the
flow this package supports: the authorize redirect and the callback.

Testing

TestProvider is an in-process Battle.net stand-in (authorize, token and
profile endpoints) which records the calls it receives.
*/
package oauth
