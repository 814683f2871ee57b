// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"errors"
)

var (
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrNilParameter        = errors.New("nil parameter")
	ErrInvalidCACert       = errors.New("invalid CA certificate")
	ErrIdGeneratorFailed   = errors.New("id generation failed")
	ErrInvalidState        = errors.New("invalid state")
	ErrMissingParameters   = errors.New("missing parameters")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrProfileFetchFailed  = errors.New("profile fetch failed")
	ErrForwardingFailed    = errors.New("forwarding failed")
	ErrNoAccounts          = errors.New("profile has no wow accounts")
)
