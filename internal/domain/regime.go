package domain

import "fmt"

// TideRegime is the qualitative amplitude class of a day's tide.
// Declaration order is significance order, Spring highest.
type TideRegime int

const (
	Spring TideRegime = iota + 1
	Intermediate
	Neap
	Long
	Young
)

// Regimes lists every regime in significance order.
var Regimes = []TideRegime{Spring, Intermediate, Neap, Long, Young}

func (r TideRegime) String() string {
	switch r {
	case Spring:
		return "Spring"
	case Intermediate:
		return "Intermediate"
	case Neap:
		return "Neap"
	case Long:
		return "Long"
	case Young:
		return "Young"
	default:
		return fmt.Sprintf("TideRegime(%d)", int(r))
	}
}

// Emoji returns the marker used in record titles and the legend.
func (r TideRegime) Emoji() string {
	switch r {
	case Spring:
		return "🔴"
	case Intermediate:
		return "🟠"
	case Neap:
		return "🔵"
	case Long:
		return "⚪"
	case Young:
		return "🟢"
	default:
		return "❔"
	}
}

// Valid reports whether r is one of the declared regimes.
func (r TideRegime) Valid() bool {
	return r >= Spring && r <= Young
}

// ParseTideRegime parses a regime name as produced by String.
func ParseTideRegime(s string) (TideRegime, error) {
	for _, r := range Regimes {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown tide regime %q", s)
}

func (r TideRegime) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid tide regime %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *TideRegime) UnmarshalText(b []byte) error {
	v, err := ParseTideRegime(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
