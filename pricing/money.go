package pricing

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Money is an exact decimal amount backed by big.Rat. The zero value is 0.
type Money struct {
	rat *big.Rat
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{rat: new(big.Rat)}
}

// Cents creates an amount from a whole number of cents.
// Example: Cents(999) represents 9.99
func Cents(c int64) Money {
	return Money{rat: big.NewRat(c, 100)}
}

// FromFloat converts a stored DECIMAL value. The shortest decimal
// representation of f is used, so 79.99 becomes exactly 7999/100.
func FromFloat(f float64) Money {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	if !ok {
		return Zero()
	}
	return Money{rat: r}
}

// Parse reads a decimal string such as "12.50".
func Parse(s string) (Money, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return Money{rat: r}, nil
}

func (m Money) value() *big.Rat {
	if m.rat == nil {
		return new(big.Rat)
	}
	return m.rat
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{rat: new(big.Rat).Add(m.value(), other.value())}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{rat: new(big.Rat).Sub(m.value(), other.value())}
}

// MulInt returns m * n.
func (m Money) MulInt(n int64) Money {
	return Money{rat: new(big.Rat).Mul(m.value(), new(big.Rat).SetInt64(n))}
}

// MulRat returns m * r.
func (m Money) MulRat(r *big.Rat) Money {
	return Money{rat: new(big.Rat).Mul(m.value(), r)}
}

// Round rounds to whole cents, halves away from zero.
func (m Money) Round() Money {
	scaled := new(big.Rat).Mul(m.value(), big.NewRat(100, 1))
	num := new(big.Int).Abs(scaled.Num())
	den := scaled.Denom()

	// (2*num + den) / (2*den) == floor(num/den + 1/2)
	q := new(big.Int).Mul(num, big.NewInt(2))
	q.Add(q, den)
	q.Quo(q, new(big.Int).Mul(den, big.NewInt(2)))
	if scaled.Sign() < 0 {
		q.Neg(q)
	}
	return Money{rat: new(big.Rat).SetFrac(q, big.NewInt(100))}
}

// Cmp compares m and other.
func (m Money) Cmp(other Money) int {
	return m.value().Cmp(other.value())
}

func (m Money) IsZero() bool     { return m.value().Sign() == 0 }
func (m Money) IsPositive() bool { return m.value().Sign() > 0 }

// Max returns the larger of a and b.
func Max(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Float64 returns the nearest float64, for storage in DECIMAL columns.
func (m Money) Float64() float64 {
	f, _ := m.value().Float64()
	return f
}

// String formats the amount with two decimals.
func (m Money) String() string {
	return m.value().FloatString(2)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string. null and
// "" leave m unchanged.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if uq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(uq)
		if s == "" {
			return nil
		}
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
