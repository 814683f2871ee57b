// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// AccessToken is an oauth access_token.
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token.
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token.
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// MarshalJSON will redact the token.
func (t AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedAccessToken)
}

// Token is the result of a successful code exchange. It lives for the
// duration of a single callback request and is never stored or refreshed.
type Token struct {
	accessToken AccessToken
	tokenType   string
	expiry      time.Time
}

// NewToken creates a new Token from an oauth2.Token.
func NewToken(t *oauth2.Token) (*Token, error) {
	const op = "NewToken"
	if t == nil {
		return nil, fmt.Errorf("%s: token is nil: %w", op, ErrNilParameter)
	}
	if t.AccessToken == "" {
		return nil, fmt.Errorf("%s: access_token is empty: %w", op, ErrInvalidParameter)
	}
	return &Token{
		accessToken: AccessToken(t.AccessToken),
		tokenType:   t.TokenType,
		expiry:      t.Expiry,
	}, nil
}

// AccessToken returns the token's access_token.
func (t *Token) AccessToken() AccessToken { return t.accessToken }

// Expiry returns the access_token's expiry, which is zero when the provider
// didn't include one.
func (t *Token) Expiry() time.Time { return t.expiry }

// Valid reports whether the token has an access_token which hasn't expired.
func (t *Token) Valid() bool {
	if t == nil || t.accessToken == "" {
		return false
	}
	return t.expiry.IsZero() || time.Now().Before(t.expiry)
}

// StaticTokenSource returns a TokenSource which always returns the same
// access_token. It's used to sign the profile request with a bearer token.
func (t *Token) StaticTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: string(t.accessToken),
		TokenType:   t.tokenType,
		Expiry:      t.expiry,
	})
}
