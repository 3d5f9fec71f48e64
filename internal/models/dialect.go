package models

import (
	"fmt"
	"strings"
)

// Dialect is one of the two Kurdish variants the translator works between.
type Dialect string

const (
	Sorani Dialect = "Sorani"
	Badini Dialect = "Badini"
)

// Other returns the complementary dialect.
func (d Dialect) Other() Dialect {
	if d == Sorani {
		return Badini
	}
	return Sorani
}

// Code returns the ISO 639-3 code of the dialect (ckb for Sorani, kmr for Badini/Kurmanji).
func (d Dialect) Code() string {
	if d == Sorani {
		return "ckb"
	}
	return "kmr"
}

// Label returns the display name, e.g. "Sorani Kurdish".
func (d Dialect) Label() string {
	return string(d) + " Kurdish"
}

func (d Dialect) String() string {
	return string(d)
}

// Valid reports whether d is one of the two known dialects
func (d Dialect) Valid() bool {
	return d == Sorani || d == Badini
}

// ParseDialect accepts a dialect name or code, case-insensitively.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sorani", "ckb":
		return Sorani, nil
	case "badini", "kmr":
		return Badini, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (expected sorani or badini)", s)
	}
}
