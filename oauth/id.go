// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"fmt"

	"github.com/hashicorp/bnet-relay/sdk/id"
)

// NewID generates a random, url safe ID suitable for an oauth state value
// or a nonce. Supports the WithPrefix option.
func NewID(opt ...Option) (string, error) {
	const op = "oauth.NewID"
	opts := getIDOpts(opt...)
	s, err := id.New(opts.withPrefix)
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate id: %w", op, ErrIdGeneratorFailed)
	}
	return s, nil
}

// idOptions is the set of available options.
type idOptions struct {
	withPrefix string
}

func idDefaults() idOptions {
	return idOptions{}
}

func getIDOpts(opt ...Option) idOptions {
	opts := idDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithPrefix provides an optional prefix for a new ID.  When this options is
// provided, NewID will prepend the prefix and an underscore to the new
// identifier.
func WithPrefix(prefix string) Option {
	return func(o interface{}) {
		if o, ok := o.(*idOptions); ok {
			o.withPrefix = prefix
		}
	}
}
