// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package relay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp/bnet-relay/oauth"
)

const testRedirectURI = "https://relay.example.com/callback"

// testEnv returns an environment pointing the relay at the TestProvider,
// with extra overriding or adding variables.
func testEnv(tp *oauth.TestProvider, extra map[string]string) map[string]string {
	clientID, clientSecret := tp.ClientCreds()
	env := map[string]string{
		"BLIZZ_CLIENT_ID":     clientID,
		"BLIZZ_CLIENT_SECRET": clientSecret,
		"REDIRECT_URI":        testRedirectURI,
		"BNET_ISSUER":         tp.Addr(),
		"BNET_API_URL":        tp.Addr(),
		"BNET_PROVIDER_CA":    tp.CACert(),
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}

// testServer loads the config from env and builds a Server.
func testServer(t *testing.T, env map[string]string, opt ...Option) *Server {
	t.Helper()
	require := require.New(t)
	c, err := LoadConfig(WithEnvironment(env))
	require.NoError(err)
	s, err := New(c, opt...)
	require.NoError(err)
	return s
}
