// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// bnetrelay is a Battle.net OAuth authorization code relay. It sends a user
// through Battle.net's authorization flow, fetches their World of Warcraft
// profile and can forward their characters to a webhook.
//
// Packages:
//
//	oauth          provider configuration, token exchange, profile fetch and state codecs
//	oauth/handler  http handlers for /authorize and /callback
//	webhook        at-most-once JSON delivery of a user's characters
//	relay          the assembled service, configured from the environment
//	cmd/bnet-relay the server binary
package bnetrelay
