// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// DefaultLength is the number of random bytes used for an id, before
// encoding.
const DefaultLength = 15

// New generates a random, url safe ID with an optional prefix.
func New(optionalPrefix string) (string, error) {
	b, err := uuid.GenerateRandomBytes(DefaultLength)
	if err != nil {
		return "", fmt.Errorf("unable to generate id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(b)
	switch {
	case optionalPrefix != "":
		return fmt.Sprintf("%s_%s", optionalPrefix, id), nil
	default:
		return id, nil
	}
}
