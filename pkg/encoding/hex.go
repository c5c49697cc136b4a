// Package encoding provides byte slice types that render as hexadecimal in
// JSON and YAML output.
package encoding

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HexData is a byte slice that serializes to/from hexadecimal in JSON and
// YAML.
type HexData []byte

// MarshalJSON implements json.Marshaler.
func (h HexData) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(h) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexData) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("unmarshal json hex data: empty data")
	}
	switch data[0] {
	case 'n': // null
		return nil
	case '"':
		if len(data) < 2 || data[len(data)-1] != '"' {
			return errors.New("unmarshal json hex data: invalid string")
		}
		return h.decode(string(data[1 : len(data)-1]))
	default:
		return fmt.Errorf("invalid hex data: %s", string(data))
	}
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (h HexData) MarshalYAML() (any, error) {
	return hex.EncodeToString(h), nil
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler. Spaces between byte
// pairs are allowed.
func (h *HexData) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return h.decode(strings.ReplaceAll(s, " ", ""))
}

func (h *HexData) decode(s string) error {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex data: %w", err)
	}
	*h = decoded
	return nil
}

// String returns the hex-encoded string representation.
func (h HexData) String() string {
	return hex.EncodeToString(h)
}

// Text returns p as a string when it is valid UTF-8 made of printable
// characters and whitespace.
func Text(p []byte) (string, bool) {
	if !utf8.Valid(p) {
		return "", false
	}
	s := string(p)
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", false
		}
	}
	return s, true
}
