// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Region is a Battle.net region. It determines the default issuer, the API
// host and the profile namespace.
type Region string

const (
	US Region = "us"
	EU Region = "eu"
	KR Region = "kr"
	TW Region = "tw"
	CN Region = "cn"
)

// DefaultLocale is the profile locale used when none is configured.
const DefaultLocale = "en_US"

var supportedRegions = map[Region]bool{
	US: true,
	EU: true,
	KR: true,
	TW: true,
	CN: true,
}

// ParseRegion returns the Region for s, which is case insensitive.
func ParseRegion(s string) (Region, error) {
	const op = "oauth.ParseRegion"
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%s: unsupported region %q: %w", op, s, ErrInvalidParameter)
	}
	return r, nil
}

// Valid reports whether r is a supported region.
func (r Region) Valid() bool {
	return supportedRegions[r]
}

// Issuer returns the base URL of the region's authorize and token endpoints.
func (r Region) Issuer() string {
	if r == CN {
		return "https://oauth.battlenet.com.cn"
	}
	return "https://oauth.battle.net"
}

// APIURL returns the base URL of the region's game data and profile APIs.
func (r Region) APIURL() string {
	if r == CN {
		return "https://gateway.battlenet.com.cn"
	}
	return fmt.Sprintf("https://%s.api.blizzard.com", r)
}

// ProfileNamespace returns the namespace query value for profile requests.
func (r Region) ProfileNamespace() string {
	return "profile-" + string(r)
}

// NormalizeLocale validates a locale such as "en_US" or "de-DE" and returns
// it in the form Battle.net expects: a lower case language, an underscore
// and an upper case region. A region is required.
func NormalizeLocale(s string) (string, error) {
	const op = "oauth.NormalizeLocale"
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%s: invalid locale %q: %w", op, s, ErrInvalidParameter)
	}
	base, _ := tag.Base()
	reg, conf := tag.Region()
	if conf != language.Exact {
		return "", fmt.Errorf("%s: locale %q has no region: %w", op, s, ErrInvalidParameter)
	}
	return base.String() + "_" + reg.String(), nil
}
