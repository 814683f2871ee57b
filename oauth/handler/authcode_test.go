// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/bnet-relay/oauth"
)

func TestAuthCode(t *testing.T) {
	t.Parallel()
	tp := oauth.StartTestProvider(t)
	p := testNewProvider(t, tp, "https://relay.example.com/callback")

	tests := []struct {
		name      string
		p         *oauth.Provider
		codec     oauth.StateCodec
		sFn       SuccessResponseFunc
		eFn       ErrorResponseFunc
		wantIsErr error
	}{
		{"valid", p, oauth.PlainState{}, testSuccessFn, testFailFn, nil},
		{"nil-p", nil, oauth.PlainState{}, testSuccessFn, testFailFn, oauth.ErrInvalidParameter},
		{"nil-codec", p, nil, testSuccessFn, testFailFn, oauth.ErrInvalidParameter},
		{"nil-sFn", p, oauth.PlainState{}, nil, testFailFn, oauth.ErrInvalidParameter},
		{"nil-eFn", p, oauth.PlainState{}, testSuccessFn, nil, oauth.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := AuthCode(tt.p, tt.codec, tt.sFn, tt.eFn)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.NotNil(got)
		})
	}
}

// testForwarder records what it was asked to forward.
type testForwarder struct {
	calls int
	got   *Result
	err   error
	panic bool
}

func (f *testForwarder) Forward(_ context.Context, r *Result) error {
	f.calls++
	f.got = r
	if f.panic {
		panic("webhook exploded")
	}
	return f.err
}

func Test_AuthCodeResponses(t *testing.T) {
	t.Parallel()
	const redirect = "https://relay.example.com/callback"
	signed, err := oauth.NewSignedState([]byte("0123456789abcdef"))
	require.NoError(t, err)
	signedState, err := signed.Encode("123")
	require.NoError(t, err)

	tests := []struct {
		name               string
		query              url.Values
		setup              func(tp *oauth.TestProvider)
		codec              oauth.StateCodec
		require            bool
		forwarder          *testForwarder
		wantStatusCode     int
		wantIsErr          error
		wantTokenCalls     int
		wantProfileCalls   int
		wantForwarderCalls int
		wantBody           string
		wantCorrelationID  int64
	}{
		{
			name:             "basic",
			query:            url.Values{"code": {"test-code"}, "state": {"st_random"}},
			wantStatusCode:   http.StatusOK,
			wantTokenCalls:   1,
			wantProfileCalls: 1,
			wantBody:         oauth.TestProfile,
		},
		{
			name:             "basic-no-state",
			query:            url.Values{"code": {"test-code"}},
			wantStatusCode:   http.StatusOK,
			wantTokenCalls:   1,
			wantProfileCalls: 1,
			wantBody:         oauth.TestProfile,
		},
		{
			name:           "missing-code",
			query:          url.Values{"state": {"123"}},
			wantStatusCode: http.StatusBadRequest,
			wantIsErr:      oauth.ErrMissingParameters,
		},
		{
			name:           "missing-state-required",
			query:          url.Values{"code": {"test-code"}},
			require:        true,
			wantStatusCode: http.StatusBadRequest,
			wantIsErr:      oauth.ErrMissingParameters,
		},
		{
			name:           "non-integer-state-required",
			query:          url.Values{"code": {"test-code"}, "state": {"alice"}},
			require:        true,
			wantStatusCode: http.StatusBadRequest,
			wantIsErr:      oauth.ErrMissingParameters,
		},
		{
			name:           "forwarder-implies-required",
			query:          url.Values{"code": {"test-code"}},
			forwarder:      &testForwarder{},
			wantStatusCode: http.StatusBadRequest,
			wantIsErr:      oauth.ErrMissingParameters,
		},
		{
			name:           "provider-error",
			query:          url.Values{"error": {"access_denied"}, "error_description": {"user said no"}, "state": {"123"}},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token-not-200",
			query:          url.Values{"code": {"test-code"}, "state": {"123"}},
			setup:          func(tp *oauth.TestProvider) { tp.SetTokenStatus(http.StatusBadRequest) },
			wantStatusCode: http.StatusBadGateway,
			wantIsErr:      oauth.ErrTokenExchangeFailed,
			wantTokenCalls: 1,
		},
		{
			name:           "token-wrong-code",
			query:          url.Values{"code": {"stale-code"}, "state": {"123"}},
			wantStatusCode: http.StatusBadGateway,
			wantIsErr:      oauth.ErrTokenExchangeFailed,
			wantTokenCalls: 1,
		},
		{
			name:             "profile-not-200",
			query:            url.Values{"code": {"test-code"}, "state": {"123"}},
			setup:            func(tp *oauth.TestProvider) { tp.SetProfileStatus(http.StatusServiceUnavailable) },
			wantStatusCode:   http.StatusBadGateway,
			wantIsErr:        oauth.ErrProfileFetchFailed,
			wantTokenCalls:   1,
			wantProfileCalls: 1,
		},
		{
			name:               "forwarded",
			query:              url.Values{"code": {"test-code"}, "state": {"123"}},
			setup:              func(tp *oauth.TestProvider) { tp.SetProfile(`{"wow_accounts":[{"characters":[{"name":"Thrall"}]}]}`) },
			forwarder:          &testForwarder{},
			wantStatusCode:     http.StatusOK,
			wantTokenCalls:     1,
			wantProfileCalls:   1,
			wantForwarderCalls: 1,
			wantBody:           `[{"name":"Thrall"}]`,
			wantCorrelationID:  123,
		},
		{
			name:               "forward-error",
			query:              url.Values{"code": {"test-code"}, "state": {"123"}},
			forwarder:          &testForwarder{err: errors.New("connection refused")},
			wantStatusCode:     http.StatusBadGateway,
			wantIsErr:          oauth.ErrForwardingFailed,
			wantTokenCalls:     1,
			wantProfileCalls:   1,
			wantForwarderCalls: 1,
		},
		{
			name:               "forward-panic",
			query:              url.Values{"code": {"test-code"}, "state": {"123"}},
			forwarder:          &testForwarder{panic: true},
			wantStatusCode:     http.StatusBadGateway,
			wantIsErr:          oauth.ErrForwardingFailed,
			wantTokenCalls:     1,
			wantProfileCalls:   1,
			wantForwarderCalls: 1,
		},
		{
			name:             "forward-no-accounts",
			query:            url.Values{"code": {"test-code"}, "state": {"123"}},
			setup:            func(tp *oauth.TestProvider) { tp.SetProfile(`{"wow_accounts":[]}`) },
			forwarder:        &testForwarder{},
			wantStatusCode:   http.StatusBadGateway,
			wantIsErr:        oauth.ErrForwardingFailed,
			wantTokenCalls:   1,
			wantProfileCalls: 1,
		},
		{
			name:               "signed-state",
			query:              url.Values{"code": {"test-code"}, "state": {signedState}},
			codec:              signed,
			forwarder:          &testForwarder{},
			wantStatusCode:     http.StatusOK,
			wantTokenCalls:     1,
			wantProfileCalls:   1,
			wantForwarderCalls: 1,
			wantCorrelationID:  123,
		},
		{
			name:           "signed-state-forged",
			query:          url.Values{"code": {"test-code"}, "state": {"123"}},
			codec:          signed,
			wantStatusCode: http.StatusBadRequest,
			wantIsErr:      oauth.ErrMissingParameters,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			tp := oauth.StartTestProvider(t)
			p := testNewProvider(t, tp, redirect)
			if tt.setup != nil {
				tt.setup(tp)
			}
			codec := tt.codec
			if codec == nil {
				codec = oauth.PlainState{}
			}

			var gotErr error
			var gotResult *Result
			sFn := func(r *Result, w http.ResponseWriter, req *http.Request) {
				gotResult = r
				testSuccessFn(r, w, req)
			}
			eFn := func(state string, r *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
				gotErr = e
				testFailFn(state, r, e, w, req)
			}
			opts := []oauth.Option{WithRequireCorrelation(tt.require)}
			if tt.forwarder != nil {
				opts = append(opts, WithForwarder(tt.forwarder))
			}
			h, err := AuthCode(p, codec, sFn, eFn, opts...)
			require.NoError(err)

			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query.Encode(), nil))
			resp := w.Result()
			body, err := io.ReadAll(resp.Body)
			require.NoError(err)

			assert.Equal(tt.wantStatusCode, resp.StatusCode, string(body))
			assert.Equal(tt.wantTokenCalls, tp.Calls("/token"))
			assert.Equal(tt.wantProfileCalls, tp.Calls("/profile/user/wow"))
			if tt.forwarder != nil {
				assert.Equal(tt.wantForwarderCalls, tt.forwarder.calls)
			}
			if tt.wantIsErr != nil {
				require.Error(gotErr)
				assert.ErrorIs(gotErr, tt.wantIsErr)
				assert.Nil(gotResult)
				return
			}
			if tt.wantStatusCode != http.StatusOK {
				return
			}
			require.NotNil(gotResult)
			assert.Equal(tt.wantCorrelationID, gotResult.CorrelationID)
			assert.Equal(tt.forwarder != nil, gotResult.Forwarded)
			if tt.wantBody != "" {
				assert.JSONEq(tt.wantBody, string(body))
			}
			if tt.forwarder != nil && tt.wantBody != "" {
				assert.JSONEq(tt.wantBody, string(tt.forwarder.got.Characters))
			}
		})
	}
}

func Test_AuthCodeProviderRoundTrip(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	tp := oauth.StartTestProvider(t)

	mux := http.NewServeMux()
	callbackSrv := httptest.NewServer(mux)
	t.Cleanup(callbackSrv.Close)
	p := testNewProvider(t, tp, callbackSrv.URL+"/callback")

	fwd := &testForwarder{}
	authorize, err := Authorize(p, oauth.PlainState{}, testFailFn, WithRequireCorrelation(true))
	require.NoError(err)
	callback, err := AuthCode(p, oauth.PlainState{}, testSuccessFn, testFailFn, WithForwarder(fwd))
	require.NoError(err)
	mux.HandleFunc("/authorize", authorize)
	mux.HandleFunc("/callback", callback)

	client := tp.HTTPClient()
	client.CheckRedirect = nil

	resp, err := client.Get(callbackSrv.URL + "/authorize?discord_id=987654321")
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	var chars []map[string]interface{}
	require.NoError(json.NewDecoder(resp.Body).Decode(&chars))
	require.Len(chars, 1)
	assert.Equal("Thrall", chars[0]["name"])
	assert.Equal(int64(987654321), fwd.got.CorrelationID)
	assert.Equal(1, tp.Calls("/authorize"))
	assert.Equal(1, tp.Calls("/token"))
}
