package domain

// ShiftType is the work schedule an employee is registered under.
type ShiftType string

const (
	Shift8h    ShiftType = "8h"
	Shift12h   ShiftType = "12h"
	Shift16h   ShiftType = "16h"
	Shift24h   ShiftType = "24h"
	Shift12x36 ShiftType = "12x36"
	Shift24x72 ShiftType = "24x72"
	Shift32h   ShiftType = "32h"
	Shift20h   ShiftType = "20h"
)

// DefaultShiftType is applied when an employee has no (or an unknown) shift.
const DefaultShiftType = Shift8h

// ValidShiftTypes lists every accepted shift in registration order.
var ValidShiftTypes = []ShiftType{
	Shift8h, Shift12h, Shift16h, Shift24h, Shift12x36, Shift24x72, Shift32h, Shift20h,
}

// ParseShiftType reports whether s is one of the accepted shift codes.
func ParseShiftType(s string) (ShiftType, bool) {
	for _, st := range ValidShiftTypes {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ShiftPolicy is the punch behaviour derived from a shift type.
type ShiftPolicy struct {
	Shift                   ShiftType
	LookbackDays            int
	CompletionRequiredDaily bool
}

// PolicyFor maps a shift code to its policy. Unknown codes get the 8h policy.
func PolicyFor(shift ShiftType) ShiftPolicy {
	if _, ok := ParseShiftType(string(shift)); !ok {
		shift = DefaultShiftType
	}

	lookback := 0
	switch shift {
	case Shift24h, Shift24x72:
		// overnight shifts close on the following calendar day
		lookback = 1
	}

	return ShiftPolicy{
		Shift:                   shift,
		LookbackDays:            lookback,
		CompletionRequiredDaily: true,
	}
}

// LookbackDays returns how many prior calendar days are searched for an open punch.
func (s ShiftType) LookbackDays() int {
	return PolicyFor(s).LookbackDays
}

// IsCompletionRequiredDaily is true for every shift: a day's cycle is complete
// once entry and exit are both recorded in its window.
func (s ShiftType) IsCompletionRequiredDaily() bool {
	return PolicyFor(s).CompletionRequiredDaily
}
