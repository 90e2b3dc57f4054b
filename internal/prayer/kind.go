package prayer

import (
	"fmt"
	"strings"
)

// Kind is one of the six daily prayer times. The zero value None means "no
// prayer" and is never part of a day's sequence.
type Kind int

const (
	None Kind = iota
	Fajr
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

// Kinds lists the six prayers in canonical order. The order is both the
// display order and the cyclic successor order.
var Kinds = [...]Kind{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

var kindNames = map[Kind]string{
	Fajr:    "Fajr",
	Sunrise: "Sunrise",
	Dhuhr:   "Dhuhr",
	Asr:     "Asr",
	Maghrib: "Maghrib",
	Isha:    "Isha",
}

// Valid reports whether k is one of the six prayers.
func (k Kind) Valid() bool {
	return k >= Fajr && k <= Isha
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "None"
}

// Next returns the prayer following k, wrapping from Isha to Fajr.
func (k Kind) Next() Kind {
	if !k.Valid() {
		return None
	}
	if k == Isha {
		return Fajr
	}
	return k + 1
}

// Prev returns the prayer preceding k, wrapping from Fajr to Isha.
func (k Kind) Prev() Kind {
	if !k.Valid() {
		return None
	}
	if k == Fajr {
		return Isha
	}
	return k - 1
}

// ParseKind accepts the display name in any case. An empty string or "none"
// parse to None.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return None, nil
	}
	for _, k := range Kinds {
		if strings.EqualFold(kindNames[k], s) {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown prayer %q", s)
}

// MarshalText encodes k as its lower-case name; None encodes as "".
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return []byte{}, nil
	}
	return []byte(strings.ToLower(kindNames[k])), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
