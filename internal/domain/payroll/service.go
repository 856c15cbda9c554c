package payroll

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrpay/internal/platform/logger"
)

type Service struct {
	store     StoreAPI
	calc      *Calculator
	mailer    Mailer
	emailFrom string
	now       func() time.Time

	// runMu serializes read-merge-save of period runs and status transitions.
	runMu sync.Mutex
}

type Option func(*Service)

func WithMailer(m Mailer, from string) Option {
	return func(s *Service) {
		s.mailer = m
		s.emailFrom = from
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store StoreAPI, calc *Calculator, opts ...Option) *Service {
	s := &Service{store: store, calc: calc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Calculator() *Calculator {
	return s.calc
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.store.ListEmployees(ctx)
}

// Calculate runs the statutory calculator over the roster (or the selected
// ids) and merges the result into the period's run. The returned run always
// covers every employee calculated for the period so far.
func (s *Service) Calculate(ctx context.Context, period string, ids []string) (Run, error) {
	run, _, err := s.calculate(ctx, period, ids)
	return run, err
}

func (s *Service) calculate(ctx context.Context, period string, ids []string) (Run, []Breakdown, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return Run{}, nil, &InputError{Field: "period", Reason: "is required"}
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return Run{}, nil, errors.Wrap(err, "list employees")
	}
	records := make([]EmployeeGrossRecord, len(employees))
	for i, e := range employees {
		records[i] = e.GrossRecord()
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	breakdowns, err := s.calc.ComputeBreakdowns(records, ids)
	if err != nil {
		return Run{}, nil, err
	}
	if len(ids) > 0 && len(breakdowns) == 0 {
		return Run{}, nil, &InputError{Field: "employeeIds", Reason: "match no employee"}
	}

	merged := breakdowns
	if len(ids) > 0 {
		prev, err := s.store.GetRun(ctx, period)
		switch {
		case err == nil:
			merged = mergeBreakdowns(prev.Breakdowns, breakdowns)
		case !errors.Is(err, ErrNoRunForPeriod):
			return Run{}, nil, errors.Wrap(err, "load period run")
		}
	}
	summary := Summarize(merged)
	run := Run{
		ID:           uuid.NewString(),
		Period:       period,
		Breakdowns:   merged,
		Summary:      summary,
		Remittance:   Remittance(summary),
		CalculatedAt: s.now().UTC(),
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return Run{}, nil, errors.Wrap(err, "save run")
	}
	if _, err := s.store.SetStatus(ctx, breakdownIDs(breakdowns), StatusCalculated); err != nil {
		return Run{}, nil, errors.Wrap(err, "mark calculated")
	}

	logger.Info(ctx, "payroll calculated",
		zap.String("runId", run.ID),
		zap.String("period", period),
		zap.Int("calculated", len(breakdowns)),
		zap.Int("employees", len(merged)),
		zap.String("totalNet", summary.TotalNet.String()),
	)
	return run, breakdowns, nil
}

// mergeBreakdowns replaces the previous figures of every recalculated
// employee and keeps the rest, ordered by employee id like the roster.
func mergeBreakdowns(prev, fresh []Breakdown) []Breakdown {
	byID := make(map[string]Breakdown, len(prev)+len(fresh))
	for _, b := range prev {
		byID[b.EmployeeID] = b
	}
	for _, b := range fresh {
		byID[b.EmployeeID] = b
	}
	out := make([]Breakdown, 0, len(byID))
	for _, b := range byID {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Breakdown) int { return strings.Compare(a.EmployeeID, b.EmployeeID) })
	return out
}

func (s *Service) LatestRun(ctx context.Context, period string) (Run, error) {
	return s.store.GetRun(ctx, strings.TrimSpace(period))
}

// Remittance reports the statutory amounts due for period, calculating the
// whole roster first when the period has no run yet.
func (s *Service) Remittance(ctx context.Context, period string) (RemittanceReport, error) {
	run, err := s.store.GetRun(ctx, strings.TrimSpace(period))
	if errors.Is(err, ErrNoRunForPeriod) {
		run, err = s.Calculate(ctx, period, nil)
	}
	if err != nil {
		return RemittanceReport{}, err
	}
	totals := run.Remittance
	return RemittanceReport{
		RunID:         run.ID,
		Period:        run.Period,
		EmployeeCount: len(run.Breakdowns),
		Lines: []RemittanceLine{
			{Body: "KRA", Description: "PAYE withheld", Amount: totals.KRA},
			{Body: "NSSF", Description: "Employee and employer contributions", Amount: totals.NSSF},
			{Body: "NHIF", Description: "Employee contributions", Amount: totals.NHIF},
		},
		Totals: totals,
	}, nil
}

// UpdateEmployeePay stores new pay figures and returns the recalculated breakdown.
func (s *Service) UpdateEmployeePay(ctx context.Context, id string, gross, other float64) (Employee, Breakdown, error) {
	rec, err := NewGrossRecord(id, gross, other)
	if err != nil {
		return Employee{}, Breakdown{}, err
	}
	b, err := s.calc.Compute(rec)
	if err != nil {
		return Employee{}, Breakdown{}, err
	}
	e, err := s.store.UpdatePay(ctx, id, rec.GrossSalary, rec.OtherDeductions)
	if err != nil {
		return Employee{}, Breakdown{}, err
	}
	logger.Info(ctx, "employee pay updated",
		zap.String("employeeId", id),
		zap.String("gross", rec.GrossSalary.String()),
		zap.String("net", b.NetSalary.String()),
	)
	return e, b, nil
}

// Process calculates the period and marks the calculated employees as
// processed. TotalNet covers those employees; Remittance covers the period.
func (s *Service) Process(ctx context.Context, period string, ids []string) (ProcessResult, error) {
	run, calculated, err := s.calculate(ctx, period, ids)
	if err != nil {
		return ProcessResult{}, err
	}
	processed, err := s.store.SetStatus(ctx, breakdownIDs(calculated), StatusProcessed)
	if err != nil {
		return ProcessResult{}, errors.Wrap(err, "mark processed")
	}
	return ProcessResult{
		RunID:          run.ID,
		Period:         run.Period,
		ProcessedCount: processed,
		TotalNet:       Summarize(calculated).TotalNet,
		Remittance:     run.Remittance,
	}, nil
}

// MarkPaid moves the processed employees of the period's run to Paid.
// TotalNet is the net pay of the employees paid by this call.
func (s *Service) MarkPaid(ctx context.Context, period string) (PaymentResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	run, err := s.store.GetRun(ctx, strings.TrimSpace(period))
	if err != nil {
		return PaymentResult{}, err
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "list employees")
	}
	processed := make(map[string]bool, len(employees))
	for _, e := range employees {
		processed[e.ID] = e.Status == StatusProcessed
	}
	var paid []Breakdown
	for _, b := range run.Breakdowns {
		if processed[b.EmployeeID] {
			paid = append(paid, b)
		}
	}
	if len(paid) == 0 {
		return PaymentResult{}, ErrNothingToPay
	}
	n, err := s.store.TransitionStatus(ctx, breakdownIDs(paid), StatusProcessed, StatusPaid)
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "mark paid")
	}
	result := PaymentResult{
		RunID:     run.ID,
		Period:    run.Period,
		PaidCount: n,
		TotalNet:  Summarize(paid).TotalNet,
	}
	logger.Info(ctx, "payroll marked paid",
		zap.String("runId", run.ID),
		zap.String("period", run.Period),
		zap.Int("employees", n),
	)
	return result, nil
}

// Payslip builds the payslip for one employee from the period's latest run,
// or from the current roster figures when the employee was not in it.
func (s *Service) Payslip(ctx context.Context, period, employeeID string) (Payslip, error) {
	e, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Payslip{}, err
	}
	b, found := Breakdown{}, false
	if run, err := s.store.GetRun(ctx, strings.TrimSpace(period)); err == nil {
		for _, candidate := range run.Breakdowns {
			if candidate.EmployeeID == employeeID {
				b, found = candidate, true
				break
			}
		}
	} else if !errors.Is(err, ErrNoRunForPeriod) {
		return Payslip{}, err
	}
	if !found {
		if b, err = s.calc.Compute(e.GrossRecord()); err != nil {
			return Payslip{}, err
		}
	}

	return Payslip{
		ID:        uuid.NewString(),
		Period:    strings.TrimSpace(period),
		Employee:  e,
		Earnings:  []PayslipLine{{Label: "Basic salary", Amount: b.GrossSalary}},
		Deductions: []PayslipLine{
			{Label: "PAYE", Amount: b.PAYE},
			{Label: "NSSF", Amount: b.NSSF},
			{Label: "NHIF", Amount: b.NHIF},
			{Label: "Other deductions", Amount: b.OtherDeductions},
		},
		Breakdown: b,
		Gross:     b.GrossSalary,
		Net:       b.NetSalary,
		IssuedAt:  s.now().UTC(),
	}, nil
}

func (s *Service) SendPayslip(ctx context.Context, period, employeeID, channel string) (Payslip, error) {
	if !strings.EqualFold(strings.TrimSpace(channel), ChannelEmail) {
		return Payslip{}, errors.Wrapf(ErrUnsupportedChannel, "channel %q", channel)
	}
	slip, err := s.Payslip(ctx, period, employeeID)
	if err != nil {
		return Payslip{}, err
	}
	if s.mailer == nil {
		return slip, nil
	}
	subject := fmt.Sprintf("Payslip for %s", slip.Period)
	if err := s.mailer.Send(ctx, s.emailFrom, slip.Employee.Email, subject, RenderPayslip(slip)); err != nil {
		return Payslip{}, errors.Wrap(err, "send payslip")
	}
	logger.Info(ctx, "payslip sent", zap.String("employeeId", employeeID), zap.String("period", slip.Period))
	return slip, nil
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Headcount: len(employees), StatusCounts: map[string]int{}}
	for _, e := range employees {
		d.StatusCounts[e.Status]++
	}
	run, ok, err := s.store.LatestRun(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	if ok {
		d.LatestPeriod = run.Period
		d.Summary = run.Summary
		d.Remittance = run.Remittance
	} else {
		d.Summary = Summarize(nil)
		d.Remittance = Remittance(d.Summary)
	}
	return d, nil
}

// RenderPayslip formats a payslip as plain text.
func RenderPayslip(p Payslip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payslip %s\n", p.Period)
	fmt.Fprintf(&b, "Employee: %s (%s)\n", p.Employee.Name, p.Employee.ID)
	fmt.Fprintf(&b, "Position: %s, %s\n\n", p.Employee.Position, p.Employee.Department)
	for _, line := range p.Earnings {
		fmt.Fprintf(&b, "%-18s %12s\n", line.Label, line.Amount.StringFixed(2))
	}
	for _, line := range p.Deductions {
		fmt.Fprintf(&b, "%-18s %12s\n", line.Label, line.Amount.Neg().StringFixed(2))
	}
	fmt.Fprintf(&b, "%-18s %12s\n", "Net pay", p.Net.StringFixed(2))
	return b.String()
}

func breakdownIDs(breakdowns []Breakdown) []string {
	ids := make([]string, len(breakdowns))
	for i, b := range breakdowns {
		ids[i] = b.EmployeeID
	}
	return ids
}
