package payroll

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// TaxBracket is one marginal PAYE tier. A nil Upper means the tier is unbounded.
type TaxBracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// FlatFeeBracket is one NHIF band. A nil Upper means the band is unbounded.
type FlatFeeBracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Fee   decimal.Decimal
}

type NSSFRule struct {
	Rate decimal.Decimal
	Cap  decimal.Decimal
}

// Rates is the full statutory configuration a Calculator works from.
// Brackets use whole currency unit boundaries: each tier starts one unit
// above the previous tier's upper bound.
type Rates struct {
	Name string
	PAYE []TaxBracket
	NSSF NSSFRule
	NHIF []FlatFeeBracket
}

var one = decimal.NewFromInt(1)

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func taxBracket(lower, upper int64, rate string) TaxBracket {
	b := TaxBracket{Lower: decimal.NewFromInt(lower), Rate: decimal.RequireFromString(rate)}
	if upper >= 0 {
		b.Upper = bound(upper)
	}
	return b
}

func feeBracket(lower, upper, fee int64) FlatFeeBracket {
	b := FlatFeeBracket{Lower: decimal.NewFromInt(lower), Fee: decimal.NewFromInt(fee)}
	if upper >= 0 {
		b.Upper = bound(upper)
	}
	return b
}

// DefaultRates returns the Kenyan 2024 PAYE, NSSF and NHIF tables.
func DefaultRates() Rates {
	return Rates{
		Name: "KE-2024",
		PAYE: []TaxBracket{
			taxBracket(0, 24000, "0.10"),
			taxBracket(24001, 32333, "0.25"),
			taxBracket(32334, 500000, "0.30"),
			taxBracket(500001, 800000, "0.325"),
			taxBracket(800001, -1, "0.35"),
		},
		NSSF: NSSFRule{
			Rate: decimal.RequireFromString("0.06"),
			Cap:  decimal.NewFromInt(2160),
		},
		NHIF: []FlatFeeBracket{
			feeBracket(0, 5999, 150),
			feeBracket(6000, 7999, 300),
			feeBracket(8000, 11999, 400),
			feeBracket(12000, 14999, 500),
			feeBracket(15000, 19999, 600),
			feeBracket(20000, 24999, 750),
			feeBracket(25000, 29999, 850),
			feeBracket(30000, 34999, 900),
			feeBracket(35000, 39999, 950),
			feeBracket(40000, 44999, 1000),
			feeBracket(45000, 49999, 1100),
			feeBracket(50000, 59999, 1200),
			feeBracket(60000, 69999, 1300),
			feeBracket(70000, 79999, 1400),
			feeBracket(80000, 89999, 1500),
			feeBracket(90000, 99999, 1600),
			feeBracket(100000, -1, 1700),
		},
	}
}

// Validate reports ErrMalformedBracketTable when a table is empty, does not
// start at zero, has gaps or overlaps, or is not open-ended at the top.
func (r Rates) Validate() error {
	if err := validatePAYE(r.PAYE); err != nil {
		return errors.Wrap(err, "paye")
	}
	if err := validateNHIF(r.NHIF); err != nil {
		return errors.Wrap(err, "nhif")
	}
	if r.NSSF.Rate.IsNegative() || r.NSSF.Rate.GreaterThan(one) {
		return errors.Wrapf(ErrMalformedBracketTable, "nssf rate %s outside [0,1]", r.NSSF.Rate)
	}
	if r.NSSF.Cap.IsNegative() {
		return errors.Wrapf(ErrMalformedBracketTable, "nssf cap %s is negative", r.NSSF.Cap)
	}
	return nil
}

func validatePAYE(brackets []TaxBracket) error {
	spans := make([]span, len(brackets))
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return errors.Wrapf(ErrMalformedBracketTable, "bracket %d rate %s outside [0,1]", i, b.Rate)
		}
		spans[i] = span{lower: b.Lower, upper: b.Upper}
	}
	return validateSpans(spans)
}

func validateNHIF(brackets []FlatFeeBracket) error {
	spans := make([]span, len(brackets))
	for i, b := range brackets {
		if b.Fee.IsNegative() {
			return errors.Wrapf(ErrMalformedBracketTable, "bracket %d fee %s is negative", i, b.Fee)
		}
		spans[i] = span{lower: b.Lower, upper: b.Upper}
	}
	return validateSpans(spans)
}

type span struct {
	lower decimal.Decimal
	upper *decimal.Decimal
}

func validateSpans(spans []span) error {
	if len(spans) == 0 {
		return errors.Wrap(ErrMalformedBracketTable, "table is empty")
	}
	if !spans[0].lower.IsZero() {
		return errors.Wrapf(ErrMalformedBracketTable, "first bracket starts at %s, want 0", spans[0].lower)
	}
	last := len(spans) - 1
	for i, s := range spans {
		if !s.lower.IsInteger() || (s.upper != nil && !s.upper.IsInteger()) {
			return errors.Wrapf(ErrMalformedBracketTable, "bracket %d bounds must be whole units", i)
		}
		if s.upper == nil {
			if i != last {
				return errors.Wrapf(ErrMalformedBracketTable, "bracket %d is unbounded but not last", i)
			}
			continue
		}
		if s.upper.LessThan(s.lower) {
			return errors.Wrapf(ErrMalformedBracketTable, "bracket %d upper %s below lower %s", i, s.upper, s.lower)
		}
		if i == last {
			return errors.Wrapf(ErrMalformedBracketTable, "last bracket must be unbounded, ends at %s", s.upper)
		}
		if next := spans[i+1].lower; !next.Equal(s.upper.Add(one)) {
			return errors.Wrapf(ErrMalformedBracketTable, "bracket %d starts at %s, want %s", i+1, next, s.upper.Add(one))
		}
	}
	return nil
}
