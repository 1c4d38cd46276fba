package postgres

import (
	"fmt"
	"math/big"
)

// Amounts are stored as NUMERIC(78,0), wide enough for uint256. They
// cross the wire as decimal strings: parameters go through numericArg,
// selected columns are cast to text and parsed back with parseNumeric.

func numericArg(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}

func parseNumeric(column, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("column %s holds a non-integer numeric: %q", column, s)
	}
	return v, nil
}
