package domain

import (
	"errors"
	"testing"
)

func TestDecodeRateMode(t *testing.T) {
	tests := []struct {
		name    string
		code    uint64
		want    RateMode
		wantErr bool
	}{
		{name: "stable", code: 1, want: RateModeStable},
		{name: "variable", code: 2, want: RateModeVariable},
		{name: "none", code: 0, wantErr: true},
		{name: "out of range", code: 3, wantErr: true},
		{name: "large", code: 255, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRateMode(tt.code)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeRateMode(%d) expected error, got %q", tt.code, got)
				}
				if !errors.Is(err, ErrUnknownRateMode) {
					t.Errorf("DecodeRateMode(%d) error = %v, want ErrUnknownRateMode", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeRateMode(%d) unexpected error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("DecodeRateMode(%d) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestRateModeOther(t *testing.T) {
	if got := RateModeStable.Other(); got != RateModeVariable {
		t.Errorf("Stable.Other() = %q, want Variable", got)
	}
	if got := RateModeVariable.Other(); got != RateModeStable {
		t.Errorf("Variable.Other() = %q, want Stable", got)
	}

	// Other is an involution over valid modes
	for _, m := range []RateMode{RateModeStable, RateModeVariable} {
		if m.Other().Other() != m {
			t.Errorf("%q.Other().Other() != %q", m, m)
		}
	}
}

func TestReserveIDs(t *testing.T) {
	if got := ReserveID("0xabc", "0xpool"); got != "0xabc:0xpool" {
		t.Errorf("ReserveID = %q", got)
	}
	if got := UserReserveID("0xuser", "0xabc", "0xpool"); got != "0xuser:0xabc:0xpool" {
		t.Errorf("UserReserveID = %q", got)
	}
}
