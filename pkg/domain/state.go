package domain

import dErrors "accredis/pkg/domain-errors"

// State is an Australian state or territory.
// Invariant: the value must be one of the eight jurisdictions below.
//
// Construct via ParseState at trust boundaries; direct casting bypasses
// validation.
type State string

const (
	StateNSW State = "NSW"
	StateVIC State = "VIC"
	StateQLD State = "QLD"
	StateSA  State = "SA"
	StateWA  State = "WA"
	StateTAS State = "TAS"
	StateNT  State = "NT"
	StateACT State = "ACT"
)

var stateNames = map[State]string{
	StateNSW: "New South Wales",
	StateVIC: "Victoria",
	StateQLD: "Queensland",
	StateSA:  "South Australia",
	StateWA:  "Western Australia",
	StateTAS: "Tasmania",
	StateNT:  "Northern Territory",
	StateACT: "Australian Capital Territory",
}

// ParseState constructs a State from external input.
// Returns CodeValidation when the value is empty or unsupported.
func ParseState(s string) (State, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "state cannot be empty")
	}
	st := State(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid state")
	}
	return st, nil
}

func (s State) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// Name is the full name, empty for an invalid state.
func (s State) Name() string {
	return stateNames[s]
}

func (s State) String() string {
	return string(s)
}
