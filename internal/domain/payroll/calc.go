package payroll

import "github.com/shopspring/decimal"

// Calculator computes statutory deductions from an immutable, validated
// rate table. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	rates  Rates
	maxFee decimal.Decimal
}

func NewCalculator(rates Rates) (*Calculator, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	maxFee := decimal.Zero
	for _, b := range rates.NHIF {
		if b.Fee.GreaterThan(maxFee) {
			maxFee = b.Fee
		}
	}
	return &Calculator{rates: cloneRates(rates), maxFee: maxFee}, nil
}

// MustCalculator panics on a malformed table. Intended for the shipped defaults.
func MustCalculator(rates Rates) *Calculator {
	c, err := NewCalculator(rates)
	if err != nil {
		panic(err)
	}
	return c
}

// Rates returns a copy of the active rate table.
func (c *Calculator) Rates() Rates {
	return cloneRates(c.rates)
}

// PAYE applies the marginal brackets lowest first and rounds the total
// half away from zero to whole units.
func (c *Calculator) PAYE(gross decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount("", FieldGrossSalary, gross); err != nil {
		return decimal.Zero, err
	}
	tax := decimal.Zero
	remaining := gross
	for _, b := range c.rates.PAYE {
		if !remaining.IsPositive() {
			break
		}
		taxable := remaining
		if b.Upper != nil {
			taxable = decimal.Min(remaining, b.Upper.Sub(b.Lower).Add(one))
		}
		tax = tax.Add(taxable.Mul(b.Rate))
		remaining = remaining.Sub(taxable)
	}
	return tax.Round(0), nil
}

// NSSF is min(round(gross * rate), cap).
func (c *Calculator) NSSF(gross decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount("", FieldGrossSalary, gross); err != nil {
		return decimal.Zero, err
	}
	return decimal.Min(gross.Mul(c.rates.NSSF.Rate).Round(0), c.rates.NSSF.Cap), nil
}

// NHIF returns the flat fee of the band containing gross. A band covers
// [Lower, Upper+1) so fractional salaries between whole-unit bounds land in
// the lower band.
func (c *Calculator) NHIF(gross decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAmount("", FieldGrossSalary, gross); err != nil {
		return decimal.Zero, err
	}
	for _, b := range c.rates.NHIF {
		if gross.LessThan(b.Lower) {
			continue
		}
		if b.Upper == nil || gross.LessThan(b.Upper.Add(one)) {
			return b.Fee, nil
		}
	}
	return c.maxFee, nil
}

// Compute produces the full breakdown for one employee.
func (c *Calculator) Compute(rec EmployeeGrossRecord) (Breakdown, error) {
	if err := checkAmount(rec.ID, FieldGrossSalary, rec.GrossSalary); err != nil {
		return Breakdown{}, err
	}
	if err := checkAmount(rec.ID, FieldOtherDeductions, rec.OtherDeductions); err != nil {
		return Breakdown{}, err
	}
	paye, err := c.PAYE(rec.GrossSalary)
	if err != nil {
		return Breakdown{}, err
	}
	nssf, err := c.NSSF(rec.GrossSalary)
	if err != nil {
		return Breakdown{}, err
	}
	nhif, err := c.NHIF(rec.GrossSalary)
	if err != nil {
		return Breakdown{}, err
	}
	net := rec.GrossSalary.Sub(paye).Sub(nssf).Sub(nhif).Sub(rec.OtherDeductions)
	return Breakdown{
		EmployeeID:      rec.ID,
		GrossSalary:     rec.GrossSalary,
		PAYE:            paye,
		NSSF:            nssf,
		NHIF:            nhif,
		OtherDeductions: rec.OtherDeductions,
		NetSalary:       net,
	}, nil
}

func checkAmount(employeeID, field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return &InputError{EmployeeID: employeeID, Field: field, Reason: "must not be negative"}
	}
	return nil
}

func cloneRates(r Rates) Rates {
	out := Rates{Name: r.Name, NSSF: r.NSSF}
	out.PAYE = make([]TaxBracket, len(r.PAYE))
	for i, b := range r.PAYE {
		out.PAYE[i] = TaxBracket{Lower: b.Lower, Upper: cloneBound(b.Upper), Rate: b.Rate}
	}
	out.NHIF = make([]FlatFeeBracket, len(r.NHIF))
	for i, b := range r.NHIF {
		out.NHIF[i] = FlatFeeBracket{Lower: b.Lower, Upper: cloneBound(b.Upper), Fee: b.Fee}
	}
	return out
}

func cloneBound(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
