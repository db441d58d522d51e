package types

import (
	"fmt"
	"math/big"
)

// Currency is an arbitrary-precision token amount. The daemon serializes
// these as decimal strings because they overflow every JSON number type, but
// some older endpoints still send bare numbers, so both are accepted.
type Currency struct {
	i big.Int
}

func NewCurrency(v uint64) Currency {
	var c Currency
	c.i.SetUint64(v)
	return c
}

func ParseCurrency(s string) (Currency, error) {
	var c Currency
	if _, ok := c.i.SetString(s, 10); !ok {
		return Currency{}, fmt.Errorf("invalid currency %q", s)
	}
	if c.i.Sign() < 0 {
		return Currency{}, fmt.Errorf("negative currency %q", s)
	}
	return c, nil
}

func (c Currency) String() string {
	return c.i.String()
}

func (c Currency) Cmp(o Currency) int {
	return c.i.Cmp(&o.i)
}

func (c Currency) IsZero() bool {
	return c.i.Sign() == 0
}

func (c Currency) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.i.String() + `"`), nil
}

func (c *Currency) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseCurrency(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
