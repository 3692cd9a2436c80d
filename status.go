package statuspage

import "fmt"

// StatusIndicator is the page wide health of a status page. Indicators are
// ordered by severity, so they can be compared with < and >.
type StatusIndicator int

const (
	IndicatorNone StatusIndicator = iota
	IndicatorMaintenance
	IndicatorMinor
	IndicatorMajor
	IndicatorCritical
)

var indicatorTokens = [...]string{"none", "maintenance", "minor", "major", "critical"}

func (i StatusIndicator) String() string {
	if i < 0 || int(i) >= len(indicatorTokens) {
		return fmt.Sprintf("StatusIndicator(%d)", int(i))
	}
	return indicatorTokens[i]
}

// MarshalText encodes the indicator as its wire token.
func (i StatusIndicator) MarshalText() ([]byte, error) {
	if i < 0 || int(i) >= len(indicatorTokens) {
		return nil, fmt.Errorf("statuspage: invalid status indicator %d", int(i))
	}
	return []byte(indicatorTokens[i]), nil
}

// UnmarshalText accepts exactly one of the lowercase wire tokens.
func (i *StatusIndicator) UnmarshalText(text []byte) error {
	for n, token := range indicatorTokens {
		if string(text) == token {
			*i = StatusIndicator(n)
			return nil
		}
	}
	return &EnumError{Type: "status indicator", Value: string(text)}
}

// Status is the overall status of a page.
type Status struct {
	Indicator   StatusIndicator `json:"indicator"`
	Description string          `json:"description"`
}

// Operational reports whether nothing is currently wrong with the page.
func (s Status) Operational() bool {
	return s.Indicator == IndicatorNone
}
