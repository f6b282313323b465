// Package version provides wire format version parsing and compatibility checks.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the wire format version implemented by this library.
const Current = "1.0"

// ErrIncompatible is returned for frames from an incompatible major version.
var ErrIncompatible = errors.New("incompatible wire version")

// WireVersion represents a parsed "major.minor" wire format version.
type WireVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (WireVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return WireVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return WireVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return WireVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return WireVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v WireVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v WireVersion) Compatible(other WireVersion) bool {
	return v.Major == other.Major
}

// CheckCompatible parses s and reports whether a peer speaking it can
// be understood by this library. Minor versions only add fields.
func CheckCompatible(s string) error {
	peer, err := Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	current, _ := Parse(Current)
	if !current.Compatible(peer) {
		return fmt.Errorf("%w: peer %s, local %s", ErrIncompatible, peer, current)
	}
	return nil
}
