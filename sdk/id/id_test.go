// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	// 15 random bytes encode to 20 unpadded base64 characters
	const encodedLen = 20
	tests := []struct {
		name    string
		prefix  string
		wantLen int
	}{
		{
			name:    "valid",
			prefix:  "id",
			wantLen: encodedLen + len("id_"),
		},
		{
			name:    "no-prefix",
			prefix:  "",
			wantLen: encodedLen,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := New(tt.prefix)
			require.NoError(err)
			if tt.prefix != "" {
				assert.True(strings.HasPrefix(got, tt.prefix+"_"))
			}
			assert.Len(got, tt.wantLen)
			assert.NotContains(got, "=")
		})
	}
	t.Run("unique", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		first, err := New("st")
		require.NoError(err)
		second, err := New("st")
		require.NoError(err)
		assert.NotEqual(first, second)
	})
}
