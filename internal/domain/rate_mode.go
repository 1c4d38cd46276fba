package domain

import (
	"errors"
	"fmt"
)

// RateMode is the interest-rate regime of a borrow position.
type RateMode string

const (
	RateModeStable   RateMode = "Stable"
	RateModeVariable RateMode = "Variable"
)

// Raw on-chain rate mode codes.
const (
	rateModeCodeStable   = 1
	rateModeCodeVariable = 2
)

// ErrUnknownRateMode is returned for rate mode codes outside {1, 2}.
var ErrUnknownRateMode = errors.New("unknown borrow rate mode code")

// DecodeRateMode maps a raw numeric mode code to a RateMode.
// Unrecognized codes are an error, never silently defaulted.
func DecodeRateMode(code uint64) (RateMode, error) {
	switch code {
	case rateModeCodeStable:
		return RateModeStable, nil
	case rateModeCodeVariable:
		return RateModeVariable, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownRateMode, code)
	}
}

// Other returns the complementary mode of the binary toggle.
func (m RateMode) Other() RateMode {
	if m == RateModeStable {
		return RateModeVariable
	}
	return RateModeStable
}

// String returns the string representation of RateMode.
func (m RateMode) String() string {
	return string(m)
}

// IsValid checks if the mode is a valid value.
func (m RateMode) IsValid() bool {
	return m == RateModeStable || m == RateModeVariable
}
