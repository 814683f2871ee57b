// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package relay assembles the Battle.net authorization relay service: it loads
the environment configuration, builds the provider, state codec and optional
webhook client, and serves these routes:

	GET /           landing page linking to /authorize
	GET /authorize  redirects the browser to Battle.net
	GET /callback   exchanges the code, fetches the profile, forwards it
	GET /healthz    liveness probe

Example:

	cfg, err := relay.LoadConfig()
	if err != nil {
		// handle error
	}
	s, err := relay.New(cfg, relay.WithLogger(logger))
	if err != nil {
		// handle error
	}
	_ = http.ListenAndServe(cfg.Addr(), s)
*/
package relay
