// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfileJSON = `{
  "id": 42,
  "wow_accounts": [
    {
      "id": 1,
      "characters": [
        {
          "id": 7,
          "name": "Thrall",
          "level": 70,
          "realm": {"id": 3, "name": "Durotan", "slug": "durotan"},
          "playable_class": {"id": 7, "name": "Shaman"},
          "playable_race": {"id": 2, "name": "Orc"},
          "faction": {"type": "HORDE", "name": "Horde"},
          "protected_character": {"href": "https://example.com"}
        }
      ]
    },
    {
      "id": 2,
      "characters": [{"name": "Jaina", "level": 60}]
    }
  ]
}`

func TestParseProfile(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	p, err := ParseProfile([]byte(testProfileJSON))
	require.NoError(err)
	assert.Equal(int64(42), p.ID)
	require.Len(p.WowAccounts, 2)
	assert.JSONEq(testProfileJSON, string(p.Raw()))

	chars, err := p.Characters()
	require.NoError(err)
	require.Len(chars, 2)
	assert.Equal(Character{
		ID:            7,
		Name:          "Thrall",
		Level:         70,
		Realm:         NamedRef{ID: 3, Name: "Durotan", Slug: "durotan"},
		PlayableClass: NamedRef{ID: 7, Name: "Shaman"},
		PlayableRace:  NamedRef{ID: 2, Name: "Orc"},
		Faction:       TypedName{Type: "HORDE", Name: "Horde"},
	}, chars[0])
	assert.Equal("Jaina", chars[1].Name)

	_, err = ParseProfile([]byte("not json"))
	require.Error(err)
}

func TestProfile_FirstAccountCharacters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		profile   string
		want      string
		wantIsErr error
	}{
		{
			name:    "verbatim",
			profile: `{"wow_accounts":[{"characters":[{"name":"Thrall","unknown":{"a":1}}]},{"characters":[{"name":"Jaina"}]}]}`,
			want:    `[{"name":"Thrall","unknown":{"a":1}}]`,
		},
		{
			name:    "missing-characters",
			profile: `{"wow_accounts":[{"id":1}]}`,
			want:    `[]`,
		},
		{
			name:    "null-characters",
			profile: `{"wow_accounts":[{"id":1,"characters":null}]}`,
			want:    `[]`,
		},
		{
			name:      "no-accounts",
			profile:   `{"wow_accounts":[]}`,
			wantIsErr: ErrNoAccounts,
		},
		{
			name:      "no-accounts-field",
			profile:   `{}`,
			wantIsErr: ErrNoAccounts,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			p, err := ParseProfile([]byte(tt.profile))
			require.NoError(err)
			got, err := p.FirstAccountCharacters()
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.JSONEq(tt.want, string(got))
		})
	}
	t.Run("nil", func(t *testing.T) {
		var p *Profile
		_, err := p.FirstAccountCharacters()
		assert.ErrorIs(t, err, ErrNilParameter)
	})
}

func TestDecodeCharacters(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	chars, err := DecodeCharacters(json.RawMessage(`[{"name":"Thrall"}]`))
	require.NoError(err)
	assert.Equal([]Character{{Name: "Thrall"}}, chars)

	chars, err = DecodeCharacters(nil)
	require.NoError(err)
	assert.Empty(chars)

	_, err = DecodeCharacters(json.RawMessage(`{"name":"Thrall"}`))
	require.Error(err)
}
