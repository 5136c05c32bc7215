package model

import "unique"

// CountryCode is an interned country identifier such as "JP". Codes are
// stored as given; no case folding or validation is applied.
type CountryCode struct {
	h unique.Handle[string]
}

// NewCountryCode interns code. It accepts any string; the empty string gives
// the zero CountryCode.
func NewCountryCode(code string) CountryCode {
	if code == "" {
		return CountryCode{}
	}
	return CountryCode{h: unique.Make(code)}
}

// String returns the code, or "" for the zero CountryCode.
func (c CountryCode) String() string {
	if c.IsZero() {
		return ""
	}
	return c.h.Value()
}

// IsZero reports whether c holds no code.
func (c CountryCode) IsZero() bool {
	return c.h == unique.Handle[string]{}
}

// Equal reports whether two codes hold the same text.
func (c CountryCode) Equal(o CountryCode) bool {
	return c.String() == o.String()
}

func (c CountryCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CountryCode) UnmarshalText(text []byte) error {
	*c = NewCountryCode(string(text))
	return nil
}

// Username is a player's display name.
type Username string

// NewUsername wraps name. It accepts any string.
func NewUsername(name string) Username {
	return Username(name)
}

func (u Username) String() string {
	return string(u)
}
