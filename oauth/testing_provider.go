// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"bytes"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestProfile is the profile document a TestProvider returns by default.
const TestProfile = `{"id":1,"wow_accounts":[{"id":11,"characters":[{"id":101,"name":"Thrall","level":70,"realm":{"id":3,"name":"Durotan","slug":"durotan"},"playable_class":{"id":7,"name":"Shaman"},"playable_race":{"id":2,"name":"Orc"},"faction":{"type":"HORDE","name":"Horde"}}]}]}`

// TestProvider is a local TLS server which plays Battle.net's authorize,
// token and profile endpoints, which makes writing tests much easier.  It
// records how many times each endpoint was called and the last token request
// it received.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu               sync.Mutex
	clientID         string
	clientSecret     string
	expectedAuthCode string
	accessToken      string
	tokenStatus      int
	profileStatus    int
	profile          string
	calls            map[string]int
	lastTokenForm    url.Values
	lastProfileQuery url.Values

	t *testing.T
}

// StartTestProvider creates a disposable TestProvider. The server is closed
// when the test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		clientID:         "test-client-id",
		clientSecret:     "test-client-secret",
		expectedAuthCode: "test-code",
		accessToken:      "test-access-token",
		profile:          TestProfile,
		calls:            map[string]int{},
		t:                t,
	}
	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	cert := p.httpServer.Certificate()

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the base URL of the provider, usable as both the issuer and
// the API URL.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the PEM encoded CA certificate of the provider's server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns a client which trusts the provider's certificate and
// doesn't follow redirects.
func (p *TestProvider) HTTPClient() *http.Client {
	c := p.httpServer.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

// ConfigOptions returns the options which point a Config at the provider.
func (p *TestProvider) ConfigOptions() []Option {
	return []Option{
		WithIssuer(p.Addr()),
		WithAPIURL(p.Addr()),
		WithProviderCA(p.CACert()),
	}
}

// ClientCreds returns the client id and secret the provider accepts.
func (p *TestProvider) ClientCreds() (clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clientID, p.clientSecret
}

// SetClientCreds configures the client id and secret the provider accepts.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// SetExpectedAuthCode configures the auth code to return from /authorize and the
// allowed auth code for /token.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetAccessToken configures the access_token issued by /token and required
// by the profile endpoint.
func (p *TestProvider) SetAccessToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessToken = token
}

// SetTokenStatus forces /token to reply with the status code. Zero restores
// the normal behavior.
func (p *TestProvider) SetTokenStatus(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenStatus = code
}

// SetProfileStatus forces the profile endpoint to reply with the status code.
// Zero restores the normal behavior.
func (p *TestProvider) SetProfileStatus(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileStatus = code
}

// SetProfile configures the profile document returned by the profile
// endpoint.
func (p *TestProvider) SetProfile(doc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = doc
}

// Calls returns how many requests were made to the path.
func (p *TestProvider) Calls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

// TotalCalls returns how many requests the provider received.
func (p *TestProvider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for _, c := range p.calls {
		n += c
	}
	return n
}

// LastTokenForm returns the form of the last /token request.
func (p *TestProvider) LastTokenForm() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTokenForm
}

// LastProfileQuery returns the query of the last profile request.
func (p *TestProvider) LastProfileQuery() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastProfileQuery
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, errorCode, errorMessage string) {
	qv := req.URL.Query()

	v := url.Values{}
	v.Set("state", qv.Get("state"))
	v.Set("error", errorCode)
	if errorMessage != "" {
		v.Set("error_description", errorMessage)
	}
	http.Redirect(w, req, qv.Get("redirect_uri")+"?"+v.Encode(), http.StatusFound)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) error {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}

	w.WriteHeader(statusCode)
	return p.writeJSON(w, &body)
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[req.URL.Path]++

	w.Header().Set("Content-Type", "application/json")

	switch req.URL.Path {
	case authorizePath:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		qv := req.URL.Query()

		if qv.Get("redirect_uri") == "" {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing redirect_uri parameter")
			return
		}
		if qv.Get("response_type") != "code" {
			p.writeAuthErrorResponse(w, req, "unsupported_response_type", "")
			return
		}
		if qv.Get("client_id") != p.clientID {
			p.writeAuthErrorResponse(w, req, "unauthorized_client", "")
			return
		}
		if p.expectedAuthCode == "" {
			p.writeAuthErrorResponse(w, req, "access_denied", "")
			return
		}
		v := url.Values{}
		v.Set("code", p.expectedAuthCode)
		if state := qv.Get("state"); state != "" {
			v.Set("state", state)
		}
		http.Redirect(w, req, qv.Get("redirect_uri")+"?"+v.Encode(), http.StatusFound)

	case tokenPath:
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := req.ParseForm(); err != nil {
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		p.lastTokenForm = req.PostForm

		if p.tokenStatus != 0 {
			_ = p.writeTokenErrorResponse(w, p.tokenStatus, "server_error", "forced status")
			return
		}
		id, secret, ok := req.BasicAuth()
		if ok {
			id, _ = url.QueryUnescape(id)
			secret, _ = url.QueryUnescape(secret)
		}
		if !ok || id != p.clientID || secret != p.clientSecret {
			_ = p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "")
			return
		}
		switch {
		case req.PostForm.Get("grant_type") != "authorization_code":
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "unsupported_grant_type", "")
			return
		case req.PostForm.Get("redirect_uri") == "":
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "missing redirect_uri parameter")
			return
		case req.PostForm.Get("code") != p.expectedAuthCode:
			_ = p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_grant", "unexpected auth code")
			return
		}
		reply := struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int    `json:"expires_in"`
			Scope       string `json:"scope,omitempty"`
		}{
			AccessToken: p.accessToken,
			TokenType:   "bearer",
			ExpiresIn:   86399,
			Scope:       DefaultScope,
		}
		_ = p.writeJSON(w, &reply)

	case profilePath:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.lastProfileQuery = req.URL.Query()
		if p.profileStatus != 0 {
			w.WriteHeader(p.profileStatus)
			_, _ = w.Write([]byte(`{"code":500,"type":"BLZWEBAPI00000500","detail":"forced status"}`))
			return
		}
		if req.Header.Get("Authorization") != "Bearer "+p.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"type":"BLZWEBAPI00000401","detail":"Unauthorized"}`))
			return
		}
		if p.lastProfileQuery.Get("namespace") == "" || p.lastProfileQuery.Get("locale") == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":404,"type":"BLZWEBAPI00000404","detail":"Not Found"}`))
			return
		}
		_, _ = w.Write([]byte(p.profile))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
