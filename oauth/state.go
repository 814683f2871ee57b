// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateCodec maps an optional correlation identifier (for example an external
// account id) to the oauth "state" parameter and back. The state is the only
// value the provider echoes to the callback, so it's the only place the
// identifier can survive the round trip without server side storage.
//
// Implementations must be concurrently safe.
type StateCodec interface {
	// Encode returns the state for a new authorization request. The
	// correlationID may be empty.
	Encode(correlationID string) (string, error)

	// Decode returns the correlation identifier carried by state.
	Decode(state string) (string, error)
}

// PlainState uses the correlation identifier itself as the state. When
// there's no identifier, a random id is used instead. Decode never fails and
// returns the state unchanged: nothing about the state is verified, so it
// offers no CSRF protection.
type PlainState struct{}

// ensure that PlainState implements the StateCodec interface
var _ StateCodec = PlainState{}

// Encode implements StateCodec.
func (PlainState) Encode(correlationID string) (string, error) {
	const op = "PlainState.Encode"
	if correlationID != "" {
		return correlationID, nil
	}
	s, err := NewID(WithPrefix("st"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Decode implements StateCodec.
func (PlainState) Decode(state string) (string, error) {
	return state, nil
}

// DefaultStateTTL is how long a SignedState is accepted after it's issued.
const DefaultStateTTL = 10 * time.Minute

// MinStateKeyLength is the minimum length of a SignedState signing key.
const MinStateKeyLength = 16

// SignedState encodes the correlation identifier in a short lived HS256 JWT
// with a random jti. Decode rejects states which weren't signed with the same
// key, use another algorithm or have expired.
type SignedState struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// ensure that SignedState implements the StateCodec interface
var _ StateCodec = (*SignedState)(nil)

type stateClaims struct {
	jwt.RegisteredClaims
	CorrelationID string `json:"cid,omitempty"`
}

// NewSignedState creates a new SignedState.
//
// Supported options:
//	WithStateTTL
//	WithNow
func NewSignedState(key []byte, opt ...Option) (*SignedState, error) {
	const op = "NewSignedState"
	if len(key) < MinStateKeyLength {
		return nil, fmt.Errorf("%s: key must be at least %d bytes: %w", op, MinStateKeyLength, ErrInvalidParameter)
	}
	opts := getSignedStateOpts(opt...)
	if opts.withTTL <= 0 {
		return nil, fmt.Errorf("%s: ttl not greater than zero: %w", op, ErrInvalidParameter)
	}
	return &SignedState{
		key: append([]byte(nil), key...),
		ttl: opts.withTTL,
		now: opts.withNow,
	}, nil
}

// Encode implements StateCodec.
func (s *SignedState) Encode(correlationID string) (string, error) {
	const op = "SignedState.Encode"
	nonce, err := NewID()
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate nonce: %w", op, err)
	}
	now := s.now()
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		CorrelationID: correlationID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%s: unable to sign state: %w", op, err)
	}
	return signed, nil
}

// Decode implements StateCodec.
func (s *SignedState) Decode(state string) (string, error) {
	const op = "SignedState.Decode"
	if state == "" {
		return "", fmt.Errorf("%s: state is empty: %w", op, ErrInvalidState)
	}
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%s: state is expired: %w", op, ErrInvalidState)
	case err != nil:
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidState, err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%s: state has no nonce: %w", op, ErrInvalidState)
	}
	return claims.CorrelationID, nil
}

// signedStateOptions is the set of available options for SignedState
type signedStateOptions struct {
	withTTL time.Duration
	withNow func() time.Time
}

func signedStateDefaults() signedStateOptions {
	return signedStateOptions{
		withTTL: DefaultStateTTL,
		withNow: time.Now,
	}
}

func getSignedStateOpts(opt ...Option) signedStateOptions {
	opts := signedStateDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithStateTTL provides an optional lifetime for signed states.
func WithStateTTL(ttl time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*signedStateOptions); ok {
			o.withTTL = ttl
		}
	}
}
