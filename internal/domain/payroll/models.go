package payroll

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeGrossRecord struct {
	ID              string
	GrossSalary     decimal.Decimal
	OtherDeductions decimal.Decimal
}

// NewGrossRecord converts float inputs, rejecting NaN, infinities and
// negative amounts before they reach decimal arithmetic.
func NewGrossRecord(id string, gross, other float64) (EmployeeGrossRecord, error) {
	g, err := Amount(id, FieldGrossSalary, gross)
	if err != nil {
		return EmployeeGrossRecord{}, err
	}
	o, err := Amount(id, FieldOtherDeductions, other)
	if err != nil {
		return EmployeeGrossRecord{}, err
	}
	return EmployeeGrossRecord{ID: id, GrossSalary: g, OtherDeductions: o}, nil
}

// Amount validates a float currency value and converts it to a decimal.
func Amount(employeeID, field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &InputError{EmployeeID: employeeID, Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return decimal.Zero, &InputError{EmployeeID: employeeID, Field: field, Reason: "must not be negative"}
	}
	return decimal.NewFromFloat(v), nil
}

// Breakdown is one employee's statutory deductions for a period.
type Breakdown struct {
	EmployeeID      string
	GrossSalary     decimal.Decimal
	PAYE            decimal.Decimal
	NSSF            decimal.Decimal
	NHIF            decimal.Decimal
	OtherDeductions decimal.Decimal
	NetSalary       decimal.Decimal
}

func (b Breakdown) TotalDeductions() decimal.Decimal {
	return b.PAYE.Add(b.NSSF).Add(b.NHIF).Add(b.OtherDeductions)
}

type PeriodSummary struct {
	TotalGross           decimal.Decimal
	TotalPAYE            decimal.Decimal
	TotalNSSF            decimal.Decimal
	TotalNHIF            decimal.Decimal
	TotalOtherDeductions decimal.Decimal
	TotalNet             decimal.Decimal
}

// RemittanceTotals are the amounts owed to each statutory body.
type RemittanceTotals struct {
	KRA      decimal.Decimal
	NSSF     decimal.Decimal
	NHIF     decimal.Decimal
	TotalDue decimal.Decimal
}

type Employee struct {
	ID              string
	Name            string
	Email           string
	Position        string
	Department      string
	GrossSalary     decimal.Decimal
	OtherDeductions decimal.Decimal
	Status          string
}

func (e Employee) GrossRecord() EmployeeGrossRecord {
	return EmployeeGrossRecord{ID: e.ID, GrossSalary: e.GrossSalary, OtherDeductions: e.OtherDeductions}
}

type Run struct {
	ID           string
	Period       string
	Breakdowns   []Breakdown
	Summary      PeriodSummary
	Remittance   RemittanceTotals
	CalculatedAt time.Time
}

type RemittanceLine struct {
	Body        string
	Description string
	Amount      decimal.Decimal
}

type RemittanceReport struct {
	RunID         string
	Period        string
	EmployeeCount int
	Lines         []RemittanceLine
	Totals        RemittanceTotals
}

type PayslipLine struct {
	Label  string
	Amount decimal.Decimal
}

type Payslip struct {
	ID         string
	Period     string
	Employee   Employee
	Earnings   []PayslipLine
	Deductions []PayslipLine
	Breakdown  Breakdown
	Gross      decimal.Decimal
	Net        decimal.Decimal
	IssuedAt   time.Time
}

type ProcessResult struct {
	RunID          string
	Period         string
	ProcessedCount int
	TotalNet       decimal.Decimal
	Remittance     RemittanceTotals
}

type PaymentResult struct {
	RunID     string
	Period    string
	PaidCount int
	TotalNet  decimal.Decimal
}

type Dashboard struct {
	Headcount    int
	StatusCounts map[string]int
	LatestPeriod string
	Summary      PeriodSummary
	Remittance   RemittanceTotals
}
