package payroll

import (
	"context"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var employerNSSFMultiplier = decimal.NewFromInt(2)

// ComputeBreakdowns computes a breakdown per record, restricted to selected
// ids when any are given. Output order follows the input order. The first
// invalid record aborts the batch: records not yet started are skipped and
// no breakdowns are returned.
func (c *Calculator) ComputeBreakdowns(records []EmployeeGrossRecord, selected []string) ([]Breakdown, error) {
	targets := filterRecords(records, selected)
	out := make([]Breakdown, len(targets))

	if len(targets) <= parallelThreshold {
		for i, rec := range targets {
			b, err := c.Compute(rec)
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rec := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			b, err := c.Compute(rec)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func filterRecords(records []EmployeeGrossRecord, selected []string) []EmployeeGrossRecord {
	if len(selected) == 0 {
		return records
	}
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	out := make([]EmployeeGrossRecord, 0, len(selected))
	for _, rec := range records {
		if _, ok := want[rec.ID]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Summarize sums every breakdown field. An empty list gives a zero summary.
func Summarize(breakdowns []Breakdown) PeriodSummary {
	s := PeriodSummary{
		TotalGross:           decimal.Zero,
		TotalPAYE:            decimal.Zero,
		TotalNSSF:            decimal.Zero,
		TotalNHIF:            decimal.Zero,
		TotalOtherDeductions: decimal.Zero,
		TotalNet:             decimal.Zero,
	}
	for _, b := range breakdowns {
		s.TotalGross = s.TotalGross.Add(b.GrossSalary)
		s.TotalPAYE = s.TotalPAYE.Add(b.PAYE)
		s.TotalNSSF = s.TotalNSSF.Add(b.NSSF)
		s.TotalNHIF = s.TotalNHIF.Add(b.NHIF)
		s.TotalOtherDeductions = s.TotalOtherDeductions.Add(b.OtherDeductions)
		s.TotalNet = s.TotalNet.Add(b.NetSalary)
	}
	return s
}

// Remittance derives what the employer owes each statutory body. NSSF is
// doubled because the employer matches the employee contribution.
func Remittance(s PeriodSummary) RemittanceTotals {
	kra := s.TotalPAYE
	nssf := s.TotalNSSF.Mul(employerNSSFMultiplier)
	nhif := s.TotalNHIF
	return RemittanceTotals{
		KRA:      kra,
		NSSF:     nssf,
		NHIF:     nhif,
		TotalDue: kra.Add(nssf).Add(nhif),
	}
}
