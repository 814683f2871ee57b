// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp/bnet-relay/oauth"
)

// testSuccessFn is a test SuccessResponseFunc which writes the result's
// characters (or the raw profile) as JSON.
func testSuccessFn(r *Result, w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Forwarded {
		_, _ = w.Write(r.Characters)
		return
	}
	_, _ = w.Write(r.Profile.Raw())
}

// testFailFn is a test ErrorResponseFunc
func testFailFn(state string, r *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
	if r != nil {
		w.WriteHeader(http.StatusUnauthorized)
		j, _ := json.Marshal(r)
		_, _ = w.Write(j)
		return
	}
	status := http.StatusBadGateway
	if errors.Is(e, oauth.ErrMissingParameters) {
		status = http.StatusBadRequest
	}
	w.WriteHeader(status)
	j, _ := json.Marshal(&AuthenErrorResponse{
		Error:       "internal-callback-error",
		Description: e.Error(),
	})
	_, _ = w.Write(j)
}

// testNewProvider creates a new Provider pointed at the TestProvider.
func testNewProvider(t *testing.T, tp *oauth.TestProvider, redirectURL string) *oauth.Provider {
	t.Helper()
	require := require.New(t)
	clientID, clientSecret := tp.ClientCreds()
	c, err := oauth.NewConfig(clientID, oauth.ClientSecret(clientSecret), redirectURL, tp.ConfigOptions()...)
	require.NoError(err)
	p, err := oauth.NewProvider(c)
	require.NoError(err)
	return p
}
