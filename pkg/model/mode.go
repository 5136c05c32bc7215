package model

import (
	"errors"
	"fmt"
)

// GameMode is one of the four osu! rulesets.
type GameMode uint8

const (
	ModeOsu GameMode = iota
	ModeTaiko
	ModeFruits
	ModeMania
)

// ErrUnknownMode is returned when parsing a ruleset name that does not exist.
var ErrUnknownMode = errors.New("unknown game mode")

var modeNames = [...]string{
	ModeOsu:    "osu",
	ModeTaiko:  "taiko",
	ModeFruits: "fruits",
	ModeMania:  "mania",
}

// Valid reports whether m is a known ruleset.
func (m GameMode) Valid() bool {
	return int(m) < len(modeNames)
}

func (m GameMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("GameMode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParseGameMode returns the ruleset named by s, as spelled by the osu! API.
func ParseGameMode(s string) (GameMode, error) {
	for i, name := range modeNames {
		if name == s {
			return GameMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m GameMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *GameMode) UnmarshalText(text []byte) error {
	parsed, err := ParseGameMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
