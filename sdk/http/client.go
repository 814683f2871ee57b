// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidCertificatePem = errors.New("invalid certificate PEM")
	ErrUnexpectedStatus      = errors.New("unexpected status code")
)

// maxStatusBody is the most of an unexpected response body that is kept for
// logging.
const maxStatusBody = 4096

// StatusError is returned by clients created with NewStrictClient when a
// response doesn't carry the required status code. The response body has
// already been read (up to a limit) and closed.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s: %d", e.Method, e.URL, ErrUnexpectedStatus, e.StatusCode)
}

// Unwrap returns ErrUnexpectedStatus so callers can use errors.Is
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// NewClient creates a new http client which will use the optional CA certificate PEM
// if provided, otherwise it will use the installed system CA chain.
func NewClient(caPEM string) (*http.Client, error) {
	tr, err := newTransport(caPEM)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: tr,
	}, nil
}

// NewStrictClient creates a new http client like NewClient, except that every
// response whose status code is not exactly 200 is turned into a *StatusError.
// Redirects are not followed, they are failures too.
func NewStrictClient(caPEM string) (*http.Client, error) {
	tr, err := newTransport(caPEM)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &statusTransport{
			base: tr,
			want: http.StatusOK,
		},
	}, nil
}

func newTransport(caPEM string) (*http.Transport, error) {
	tr := cleanhttp.DefaultPooledTransport()

	if caPEM != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(caPEM)); !ok {
			return nil, ErrInvalidCertificatePem
		}

		tr.TLSClientConfig = &tls.Config{
			RootCAs: certPool,
		}
	}
	return tr, nil
}

type statusTransport struct {
	base http.RoundTripper
	want int
}

// RoundTrip implements http.RoundTripper
func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == t.want {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
	u := *req.URL
	u.RawQuery = ""
	return nil, &StatusError{
		Method:     req.Method,
		URL:        u.String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// ClientContext is a helper function that returns a new Context that
// carries the provided HTTP client. This method sets the same context key used
// by the golang.org/x/oauth2 package, so the returned context works for
// oauth2 token exchanges and token sources as well.
func ClientContext(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
