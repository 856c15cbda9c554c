package payrollhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/jobs"
	"hrpay/internal/platform/logger"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

const maxPeriodLength = 32

// RunRecorder observes completed payroll runs; the metrics collector implements it.
type RunRecorder interface {
	RecordRun(employees int, remittanceDue float64, err error)
}

type Handler struct {
	Service  *payroll.Service
	Jobs     *jobs.Service
	Perms    middleware.PermissionStore
	Metrics  RunRecorder
	Idem     *middleware.IdempotencyStore
	Audit    *audit.Service
	Currency string
}

func NewHandler(svc *payroll.Service, jobSvc *jobs.Service, perms middleware.PermissionStore, metrics RunRecorder, idem *middleware.IdempotencyStore, auditSvc *audit.Service, currency string) *Handler {
	return &Handler{Service: svc, Jobs: jobSvc, Perms: perms, Metrics: metrics, Idem: idem, Audit: auditSvc, Currency: currency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/employees", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Put("/employees/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms), middleware.Idempotency(h.Idem)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/periods/{period}/summary", h.handlePeriodSummary)
		r.With(middleware.RequirePermission(auth.PermPayrollPay, h.Perms), middleware.Idempotency(h.Idem)).Post("/periods/{period}/pay", h.handleMarkPaid)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/remittance", h.handleRemittance)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms), middleware.Idempotency(h.Idem)).Post("/process", h.handleProcess)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/jobs/{jobID}", h.handleGetJob)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips/{employeeID}", h.handlePayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Post("/payslips/{employeeID}/send", h.handleSendPayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/rates", h.handleRates)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/audit", h.handleListAudit)
	})
}

type EmployeePayroll struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Position        string  `json:"position"`
	Department      string  `json:"department"`
	GrossSalary     float64 `json:"grossSalary"`
	PAYE            float64 `json:"paye"`
	NSSF            float64 `json:"nssf"`
	NHIF            float64 `json:"nhif"`
	OtherDeductions float64 `json:"otherDeductions"`
	NetSalary       float64 `json:"netSalary"`
	Status          string  `json:"status"`
}

type Breakdown struct {
	EmployeeID      string  `json:"employeeId"`
	GrossSalary     float64 `json:"grossSalary"`
	PAYE            float64 `json:"paye"`
	NSSF            float64 `json:"nssf"`
	NHIF            float64 `json:"nhif"`
	OtherDeductions float64 `json:"otherDeductions"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetSalary       float64 `json:"netSalary"`
}

type Summary struct {
	TotalGross           float64 `json:"totalGross"`
	TotalPAYE            float64 `json:"totalPaye"`
	TotalNSSF            float64 `json:"totalNssf"`
	TotalNHIF            float64 `json:"totalNhif"`
	TotalOtherDeductions float64 `json:"totalOtherDeductions"`
	TotalNet             float64 `json:"totalNet"`
}

type RemittanceTotals struct {
	KRA      float64 `json:"kra"`
	NSSF     float64 `json:"nssf"`
	NHIF     float64 `json:"nhif"`
	TotalDue float64 `json:"totalDue"`
}

type PayrollRun struct {
	ID           string           `json:"id"`
	Period       string           `json:"period"`
	Breakdowns   []Breakdown      `json:"breakdowns"`
	Summary      Summary          `json:"summary"`
	Remittance   RemittanceTotals `json:"remittance"`
	CalculatedAt time.Time        `json:"calculatedAt"`
}

type RemittanceLine struct {
	Body        string  `json:"body"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type RemittanceReport struct {
	RunID         string           `json:"runId"`
	Period        string           `json:"period"`
	EmployeeCount int              `json:"employeeCount"`
	Lines         []RemittanceLine `json:"lines"`
	Totals        RemittanceTotals `json:"totals"`
}

type PayslipLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type Payslip struct {
	ID         string          `json:"id"`
	Period     string          `json:"period"`
	Employee   EmployeePayroll `json:"employee"`
	Earnings   []PayslipLine   `json:"earnings"`
	Deductions []PayslipLine   `json:"deductions"`
	Gross      float64         `json:"gross"`
	Net        float64         `json:"net"`
	IssuedAt   time.Time       `json:"issuedAt"`
}

type ProcessResult struct {
	RunID          string  `json:"runId"`
	Period         string  `json:"period"`
	ProcessedCount int     `json:"processedCount"`
	TotalNet       float64 `json:"totalNet"`
}

type PaymentResult struct {
	RunID     string  `json:"runId"`
	Period    string  `json:"period"`
	PaidCount int     `json:"paidCount"`
	TotalNet  float64 `json:"totalNet"`
}

type Dashboard struct {
	Headcount    int              `json:"headcount"`
	StatusCounts map[string]int   `json:"statusCounts"`
	LatestPeriod string           `json:"latestPeriod,omitempty"`
	Summary      Summary          `json:"summary"`
	Remittance   RemittanceTotals `json:"remittance"`
	Currency     string           `json:"currency"`
}

type TaxBracket struct {
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper"`
	Rate  float64  `json:"rate"`
}

type FlatFeeBracket struct {
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper"`
	Fee   float64  `json:"fee"`
}

type Rates struct {
	Name     string           `json:"name"`
	Currency string           `json:"currency"`
	PAYE     []TaxBracket     `json:"paye"`
	NSSF     map[string]any   `json:"nssf"`
	NHIF     []FlatFeeBracket `json:"nhif"`
}

type periodPayload struct {
	Period      string   `json:"period"`
	EmployeeIDs []string `json:"employeeIds"`
}

type updatePayPayload struct {
	GrossSalary     *float64 `json:"grossSalary"`
	OtherDeductions *float64 `json:"otherDeductions"`
}

type sendPayload struct {
	Period string `json:"period"`
	Method string `json:"method"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := shared.ParsePage(r)
	start, end := page.Bounds(len(employees))

	out := make([]EmployeePayroll, 0, end-start)
	for _, e := range employees[start:end] {
		b, err := h.Service.Calculator().Compute(e.GrossRecord())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		out = append(out, employeeDTO(e, b))
	}
	meta := page.Meta(len(employees))
	meta["currency"] = h.Currency
	api.SuccessWithMeta(w, out, meta, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload updatePayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	validator := shared.NewValidator()
	if payload.GrossSalary == nil {
		validator.Add(payroll.FieldGrossSalary, "is required")
	} else {
		validator.Amount(payroll.FieldGrossSalary, *payload.GrossSalary)
	}
	other := 0.0
	if payload.OtherDeductions != nil {
		other = *payload.OtherDeductions
		validator.Amount(payroll.FieldOtherDeductions, other)
	}
	if validator.Reject(w, reqID) {
		return
	}

	employee, b, err := h.Service.UpdateEmployeePay(r.Context(), chi.URLParam(r, "employeeID"), *payload.GrossSalary, other)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "payroll.employee.update", "employee", employee.ID, payload)
	api.Success(w, employeeDTO(employee, b), reqID)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	payload, ok := decodePeriodPayload(w, r)
	if !ok {
		return
	}

	run, err := h.Service.Calculate(r.Context(), payload.Period, payload.EmployeeIDs)
	h.recordRun(run, err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "payroll.run.calculate", "payroll_run", run.ID, payload)
	api.Success(w, runDTO(run), reqID)
}

func (h *Handler) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.LatestRun(r.Context(), pathParam(r, "period"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, runDTO(run), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemittance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	payload, ok := decodePeriodPayload(w, r)
	if !ok {
		return
	}

	report, err := h.Service.Remittance(r.Context(), payload.Period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lines := make([]RemittanceLine, len(report.Lines))
	for i, l := range report.Lines {
		lines[i] = RemittanceLine{Body: l.Body, Description: l.Description, Amount: money(l.Amount)}
	}
	api.Success(w, RemittanceReport{
		RunID:         report.RunID,
		Period:        report.Period,
		EmployeeCount: report.EmployeeCount,
		Lines:         lines,
		Totals:        remittanceDTO(report.Totals),
	}, reqID)
}

// handleProcess queues a processing job. With ?wait=true the job runs inline
// and its result is returned directly.
func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	payload, ok := decodePeriodPayload(w, r)
	if !ok {
		return
	}

	run := func(ctx context.Context) (any, error) {
		res, err := h.Service.Process(ctx, payload.Period, payload.EmployeeIDs)
		if h.Metrics != nil {
			h.Metrics.RecordRun(res.ProcessedCount, money(res.Remittance.TotalDue), err)
		}
		if err != nil {
			return nil, err
		}
		return processDTO(res), nil
	}

	if r.URL.Query().Get("wait") == "true" {
		out, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollProcess, run)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit(r, "payroll.run.process", "job", out.ID, payload)
		api.Success(w, out, reqID)
		return
	}

	id, err := h.Jobs.Enqueue(jobs.JobPayrollProcess, run)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "payroll.run.process", "job", id, payload)
	logger.Info(r.Context(), "payroll processing queued", zap.String("jobId", id), zap.String("period", payload.Period))
	api.Accepted(w, map[string]string{"jobId": id, "status": jobs.StatusQueued}, reqID)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	period := strings.TrimSpace(pathParam(r, "period"))
	validator := shared.NewValidator()
	validator.MaxLength("period", period, maxPeriodLength)
	if validator.Reject(w, reqID) {
		return
	}

	res, err := h.Service.MarkPaid(r.Context(), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "payroll.run.paid", "payroll_run", res.RunID, map[string]any{"period": res.Period, "paidCount": res.PaidCount})
	api.Success(w, PaymentResult{
		RunID:     res.RunID,
		Period:    res.Period,
		PaidCount: res.PaidCount,
		TotalNet:  money(res.TotalNet),
	}, reqID)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	run, err := h.Jobs.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	validator := shared.NewValidator()
	validator.Required("period", period, "is required")
	validator.MaxLength("period", period, maxPeriodLength)
	if validator.Reject(w, reqID) {
		return
	}

	slip, err := h.Service.Payslip(r.Context(), period, pathParam(r, "employeeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, payslipDTO(slip), reqID)
}

func (h *Handler) handleSendPayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload sendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if strings.TrimSpace(payload.Method) == "" {
		payload.Method = payroll.ChannelEmail
	}
	validator := shared.NewValidator()
	validator.Required("period", payload.Period, "is required")
	validator.MaxLength("period", payload.Period, maxPeriodLength)
	if validator.Reject(w, reqID) {
		return
	}

	slip, err := h.Service.SendPayslip(r.Context(), payload.Period, pathParam(r, "employeeID"), payload.Method)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, "payroll.payslip.send", "employee", slip.Employee.ID, payload)
	api.Success(w, map[string]any{
		"payslipId": slip.ID,
		"method":    strings.ToLower(payload.Method),
		"recipient": slip.Employee.Email,
		"sent":      true,
	}, reqID)
}

func (h *Handler) handleRates(w http.ResponseWriter, r *http.Request) {
	rates := h.Service.Calculator().Rates()
	out := Rates{
		Name:     rates.Name,
		Currency: h.Currency,
		NSSF: map[string]any{
			"rate": rates.NSSF.Rate.InexactFloat64(),
			"cap":  money(rates.NSSF.Cap),
		},
	}
	for _, b := range rates.PAYE {
		out.PAYE = append(out.PAYE, TaxBracket{Lower: money(b.Lower), Upper: upper(b.Upper), Rate: b.Rate.InexactFloat64()})
	}
	for _, b := range rates.NHIF {
		out.NHIF = append(out.NHIF, FlatFeeBracket{Lower: money(b.Lower), Upper: upper(b.Upper), Fee: money(b.Fee)})
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, Dashboard{
		Headcount:    d.Headcount,
		StatusCounts: d.StatusCounts,
		LatestPeriod: d.LatestPeriod,
		Summary:      summaryDTO(d.Summary),
		Remittance:   remittanceDTO(d.Remittance),
		Currency:     h.Currency,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if h.Audit == nil {
		api.SuccessWithMeta(w, []audit.Event{}, map[string]any{"total": 0}, reqID)
		return
	}
	query := r.URL.Query()
	filter := audit.Filter{
		Action:     strings.TrimSpace(query.Get("action")),
		EntityType: strings.TrimSpace(query.Get("entityType")),
		ActorUser:  strings.TrimSpace(query.Get("actor")),
	}
	page := shared.ParsePage(r)
	events := h.Audit.List(r.Context(), filter, page.Limit, page.Offset)
	api.SuccessWithMeta(w, events, page.Meta(h.Audit.Count(r.Context(), filter)), reqID)
}

// audit records a payroll mutation. Failures are logged and never fail the request.
func (h *Handler) audit(r *http.Request, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	actor := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actor = user.UserID
	}
	if err := h.Audit.Record(r.Context(), actor, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), after); err != nil {
		logger.Warn(r.Context(), "audit record failed", zap.String("action", action), zap.Error(err))
	}
}

func (h *Handler) recordRun(run payroll.Run, err error) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.RecordRun(len(run.Breakdowns), money(run.Remittance.TotalDue), err)
}

// fail maps domain errors onto the response envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	var inputErr *payroll.InputError
	switch {
	case errors.As(err, &inputErr):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: inputErr.Field, Reason: inputErr.Reason}})
	case errors.Is(err, payroll.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, payroll.ErrNoRunForPeriod):
		api.Fail(w, http.StatusNotFound, "run_not_found", "no payroll run for period", reqID)
	case errors.Is(err, jobs.ErrRunNotFound):
		api.Fail(w, http.StatusNotFound, "job_not_found", "job not found", reqID)
	case errors.Is(err, payroll.ErrNothingToPay):
		api.Fail(w, http.StatusConflict, "nothing_to_pay", "no processed employees to mark paid", reqID)
	case errors.Is(err, payroll.ErrUnsupportedChannel):
		api.Fail(w, http.StatusBadRequest, "unsupported_channel", "only email delivery is supported", reqID)
	case errors.Is(err, jobs.ErrQueueFull):
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "payroll job queue is full, retry later", reqID)
	default:
		logger.Error(r.Context(), "payroll request failed", zap.String("path", r.URL.Path), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", "payroll request failed", reqID)
	}
}

func decodePeriodPayload(w http.ResponseWriter, r *http.Request) (periodPayload, bool) {
	reqID := middleware.GetRequestID(r.Context())
	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return payload, false
	}
	payload.Period = strings.TrimSpace(payload.Period)
	validator := shared.NewValidator()
	validator.Required("period", payload.Period, "is required")
	validator.MaxLength("period", payload.Period, maxPeriodLength)
	for _, id := range payload.EmployeeIDs {
		if strings.TrimSpace(id) == "" {
			validator.Add("employeeIds", "must not contain empty ids")
			break
		}
	}
	if validator.Reject(w, reqID) {
		return payload, false
	}
	return payload, true
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(raw)
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func upper(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

func employeeDTO(e payroll.Employee, b payroll.Breakdown) EmployeePayroll {
	return EmployeePayroll{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Position:        e.Position,
		Department:      e.Department,
		GrossSalary:     money(b.GrossSalary),
		PAYE:            money(b.PAYE),
		NSSF:            money(b.NSSF),
		NHIF:            money(b.NHIF),
		OtherDeductions: money(b.OtherDeductions),
		NetSalary:       money(b.NetSalary),
		Status:          e.Status,
	}
}

func breakdownDTO(b payroll.Breakdown) Breakdown {
	return Breakdown{
		EmployeeID:      b.EmployeeID,
		GrossSalary:     money(b.GrossSalary),
		PAYE:            money(b.PAYE),
		NSSF:            money(b.NSSF),
		NHIF:            money(b.NHIF),
		OtherDeductions: money(b.OtherDeductions),
		TotalDeductions: money(b.TotalDeductions()),
		NetSalary:       money(b.NetSalary),
	}
}

func summaryDTO(s payroll.PeriodSummary) Summary {
	return Summary{
		TotalGross:           money(s.TotalGross),
		TotalPAYE:            money(s.TotalPAYE),
		TotalNSSF:            money(s.TotalNSSF),
		TotalNHIF:            money(s.TotalNHIF),
		TotalOtherDeductions: money(s.TotalOtherDeductions),
		TotalNet:             money(s.TotalNet),
	}
}

func remittanceDTO(t payroll.RemittanceTotals) RemittanceTotals {
	return RemittanceTotals{
		KRA:      money(t.KRA),
		NSSF:     money(t.NSSF),
		NHIF:     money(t.NHIF),
		TotalDue: money(t.TotalDue),
	}
}

func runDTO(run payroll.Run) PayrollRun {
	out := PayrollRun{
		ID:           run.ID,
		Period:       run.Period,
		Breakdowns:   make([]Breakdown, len(run.Breakdowns)),
		Summary:      summaryDTO(run.Summary),
		Remittance:   remittanceDTO(run.Remittance),
		CalculatedAt: run.CalculatedAt,
	}
	for i, b := range run.Breakdowns {
		out.Breakdowns[i] = breakdownDTO(b)
	}
	return out
}

func payslipDTO(p payroll.Payslip) Payslip {
	out := Payslip{
		ID:       p.ID,
		Period:   p.Period,
		Employee: employeeDTO(p.Employee, p.Breakdown),
		Gross:    money(p.Gross),
		Net:      money(p.Net),
		IssuedAt: p.IssuedAt,
	}
	for _, l := range p.Earnings {
		out.Earnings = append(out.Earnings, PayslipLine{Label: l.Label, Amount: money(l.Amount)})
	}
	for _, l := range p.Deductions {
		out.Deductions = append(out.Deductions, PayslipLine{Label: l.Label, Amount: money(l.Amount)})
	}
	return out
}

func processDTO(res payroll.ProcessResult) ProcessResult {
	return ProcessResult{
		RunID:          res.RunID,
		Period:         res.Period,
		ProcessedCount: res.ProcessedCount,
		TotalNet:       money(res.TotalNet),
	}
}
