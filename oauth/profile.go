// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Profile is a user's WoW profile summary, as returned by the
// /profile/user/wow endpoint.
type Profile struct {
	ID          int64        `json:"id"`
	WowAccounts []WowAccount `json:"wow_accounts"`

	raw json.RawMessage
}

// WowAccount is a single WoW account of a profile. Its characters are kept
// as raw JSON so they can be relayed without losing fields.
type WowAccount struct {
	ID         int64           `json:"id"`
	Characters json.RawMessage `json:"characters"`
}

// Character is the typed view of a character used when rendering.
type Character struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Level         int       `json:"level"`
	Realm         NamedRef  `json:"realm"`
	PlayableClass NamedRef  `json:"playable_class"`
	PlayableRace  NamedRef  `json:"playable_race"`
	Faction       TypedName `json:"faction"`
}

// NamedRef is a reference to a game data document.
type NamedRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// TypedName is an enum like value with a localized name.
type TypedName struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ParseProfile decodes a profile summary document and keeps the raw bytes.
func ParseProfile(data []byte) (*Profile, error) {
	const op = "oauth.ParseProfile"
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: unable to decode profile: %w", op, err)
	}
	p.raw = append(json.RawMessage(nil), data...)
	return &p, nil
}

// Raw returns the profile document as it was received.
func (p *Profile) Raw() json.RawMessage { return p.raw }

// FirstAccountCharacters returns the character list of the first WoW account,
// exactly as the provider sent it. A missing list is returned as an empty
// array. A profile without accounts returns ErrNoAccounts.
func (p *Profile) FirstAccountCharacters() (json.RawMessage, error) {
	const op = "Profile.FirstAccountCharacters"
	if p == nil {
		return nil, fmt.Errorf("%s: profile is nil: %w", op, ErrNilParameter)
	}
	if len(p.WowAccounts) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoAccounts)
	}
	chars := bytes.TrimSpace(p.WowAccounts[0].Characters)
	if len(chars) == 0 || bytes.Equal(chars, []byte("null")) {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(chars), nil
}

// CharacterList decodes the account's characters.
func (a WowAccount) CharacterList() ([]Character, error) {
	return decodeCharacters(a.Characters)
}

// Characters decodes every character of every account of the profile.
func (p *Profile) Characters() ([]Character, error) {
	const op = "Profile.Characters"
	var all []Character
	for _, a := range p.WowAccounts {
		chars, err := a.CharacterList()
		if err != nil {
			return nil, fmt.Errorf("%s: account %d: %w", op, a.ID, err)
		}
		all = append(all, chars...)
	}
	return all, nil
}

// DecodeCharacters decodes a raw character list, such as the one returned by
// FirstAccountCharacters.
func DecodeCharacters(raw json.RawMessage) ([]Character, error) {
	return decodeCharacters(raw)
}

func decodeCharacters(raw json.RawMessage) ([]Character, error) {
	const op = "oauth.decodeCharacters"
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var chars []Character
	if err := json.Unmarshal(raw, &chars); err != nil {
		return nil, fmt.Errorf("%s: unable to decode characters: %w", op, err)
	}
	return chars, nil
}
