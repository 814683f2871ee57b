// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ApplyOpts(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	opts := getConfigOpts(nil, WithScopes("wow.profile", "openid"), nil)
	assert.Equal([]string{"wow.profile", "openid"}, opts.withScopes)
	assert.Equal(US, opts.withRegion)

	// options for another type are ignored
	opts = getConfigOpts(WithPrefix("ignored"))
	assert.Equal(configDefaults(), opts)
}
