package payrollhandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/jobs"
	"hrpay/internal/transport/http/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type fakeRunRecorder struct {
	mu   sync.Mutex
	runs int
}

func (f *fakeRunRecorder) RecordRun(int, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
}

func newTestRouter(t *testing.T) (http.Handler, *fakeRunRecorder) {
	t.Helper()
	store := payroll.NewStore(payroll.SeedEmployees())
	svc := payroll.NewService(store, payroll.MustCalculator(payroll.DefaultRates()))
	jobSvc := jobs.New(8, nil)
	jobSvc.Start(t.Context())
	rec := &fakeRunRecorder{}

	h := NewHandler(svc, jobSvc, nil, rec, middleware.NewIdempotencyStore(time.Hour), audit.New(100), "KES")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", h.RegisterRoutes)
	return r, rec
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestListEmployeesComputesBreakdowns(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodGet, "/api/v1/payroll/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var employees []EmployeePayroll
	require.NoError(t, json.Unmarshal(env.Data, &employees))
	require.Len(t, employees, 5)
	require.Equal(t, EmployeePayroll{
		ID:              "emp_001",
		Name:            "John Doe",
		Email:           "john.doe@example.com",
		Position:        "Senior Developer",
		Department:      "Engineering",
		GrossSalary:     120000,
		PAYE:            30783,
		NSSF:            2160,
		NHIF:            1700,
		OtherDeductions: 5000,
		NetSalary:       80357,
		Status:          payroll.StatusPending,
	}, employees[0])

	rec, env = do(t, h, http.MethodGet, "/api/v1/payroll/employees?limit=2&offset=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &employees))
	require.Len(t, employees, 1)
	require.Equal(t, "emp_005", employees[0].ID)
	require.JSONEq(t, `{"total":5,"limit":2,"offset":4,"currency":"KES"}`, string(env.Meta))
}

func TestCalculateSelectedEmployees(t *testing.T) {
	h, metrics := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/calculate", map[string]any{
		"period":      "December 2024",
		"employeeIds": []string{"emp_003", "emp_001", "emp_404"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var run PayrollRun
	require.NoError(t, json.Unmarshal(env.Data, &run))
	require.Len(t, run.Breakdowns, 2)
	require.Equal(t, "emp_001", run.Breakdowns[0].EmployeeID)
	require.Equal(t, "emp_003", run.Breakdowns[1].EmployeeID)
	require.Equal(t, Summary{
		TotalGross:           200000,
		TotalPAYE:            49566,
		TotalNSSF:            4320,
		TotalNHIF:            3200,
		TotalOtherDeductions: 7000,
		TotalNet:             135914,
	}, run.Summary)
	require.Equal(t, RemittanceTotals{KRA: 49566, NSSF: 8640, NHIF: 3200, TotalDue: 61406}, run.Remittance)
	require.Equal(t, 1, metrics.runs)

	rec, env = do(t, h, http.MethodGet, "/api/v1/payroll/periods/December%202024/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stored PayrollRun
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	require.Equal(t, run.ID, stored.ID)
}

func TestCalculateRequiresPeriod(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/calculate", map[string]any{"period": " "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", env.Error.Code)
	require.Contains(t, string(env.Error.Details), `"period"`)
}

func TestCalculateRejectsUnknownSelection(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/calculate", map[string]any{
		"period":      "December 2024",
		"employeeIds": []string{"typo"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", env.Error.Code)
	require.Contains(t, string(env.Error.Details), `"employeeIds"`)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/payroll/periods/December%202024/summary", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPeriodSummaryWithoutRun(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodGet, "/api/v1/payroll/periods/January%202025/summary", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "run_not_found", env.Error.Code)
}

func TestRemittanceCalculatesWholeRoster(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/remittance", map[string]any{"period": "December 2024"})
	require.Equal(t, http.StatusOK, rec.Code)

	var report RemittanceReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Equal(t, 5, report.EmployeeCount)
	require.Equal(t, RemittanceTotals{KRA: 140415, NSSF: 21600, NHIF: 8200, TotalDue: 170215}, report.Totals)
	require.Len(t, report.Lines, 3)
	require.Equal(t, "KRA", report.Lines[0].Body)
}

func TestUpdateEmployeePay(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := do(t, h, http.MethodPut, "/api/v1/payroll/employees/emp_003", map[string]any{"grossSalary": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", env.Error.Code)

	rec, env = do(t, h, http.MethodPut, "/api/v1/payroll/employees/emp_999", map[string]any{"grossSalary": 50000})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "employee_not_found", env.Error.Code)

	rec, env = do(t, h, http.MethodPut, "/api/v1/payroll/employees/emp_003", map[string]any{"grossSalary": 24000, "otherDeductions": 100})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated EmployeePayroll
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, 2400.0, updated.PAYE)
	require.Equal(t, 1440.0, updated.NSSF)
	require.Equal(t, 750.0, updated.NHIF)
	require.Equal(t, 19310.0, updated.NetSalary)
	require.Equal(t, payroll.StatusPending, updated.Status)
}

func TestProcessInline(t *testing.T) {
	h, metrics := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/process?wait=true", map[string]any{"period": "December 2024"})
	require.Equal(t, http.StatusOK, rec.Code)

	var run jobs.Run
	require.NoError(t, json.Unmarshal(env.Data, &run))
	require.Equal(t, jobs.StatusCompleted, run.Status)
	details, err := json.Marshal(run.Details)
	require.NoError(t, err)
	var result ProcessResult
	require.NoError(t, json.Unmarshal(details, &result))
	require.Equal(t, 5, result.ProcessedCount)
	require.Equal(t, 381585.0, result.TotalNet)
	require.Equal(t, 1, metrics.runs)

	_, env = do(t, h, http.MethodGet, "/api/v1/payroll/dashboard", nil)
	var dash Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	require.Equal(t, 5, dash.Headcount)
	require.Equal(t, map[string]int{payroll.StatusProcessed: 5}, dash.StatusCounts)
	require.Equal(t, "December 2024", dash.LatestPeriod)
	require.Equal(t, 170215.0, dash.Remittance.TotalDue)
}

func TestMarkPeriodPaid(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/periods/January%202025/pay", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "run_not_found", env.Error.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/payroll/process?wait=true", map[string]any{"period": "December 2024", "employeeIds": []string{"emp_001"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/payroll/periods/December%202024/pay", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var paid PaymentResult
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	require.Equal(t, 1, paid.PaidCount)
	require.Equal(t, 80357.0, paid.TotalNet)

	rec, env = do(t, h, http.MethodPost, "/api/v1/payroll/periods/December%202024/pay", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "nothing_to_pay", env.Error.Code)

	_, env = do(t, h, http.MethodGet, "/api/v1/payroll/dashboard", nil)
	var dash Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	require.Equal(t, map[string]int{payroll.StatusPaid: 1, payroll.StatusPending: 4}, dash.StatusCounts)
}

func TestProcessQueuedJob(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodPost, "/api/v1/payroll/process", map[string]any{"period": "December 2024", "employeeIds": []string{"emp_002"}})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var queued struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &queued))
	require.NotEmpty(t, queued.JobID)

	require.Eventually(t, func() bool {
		rec, env := do(t, h, http.MethodGet, "/api/v1/payroll/jobs/"+queued.JobID, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		var run jobs.Run
		return json.Unmarshal(env.Data, &run) == nil && run.Status == jobs.StatusCompleted
	}, time.Second, 10*time.Millisecond)

	rec, env = do(t, h, http.MethodGet, "/api/v1/payroll/jobs/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "job_not_found", env.Error.Code)
}

func TestPayslipAndDelivery(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/payroll/payslips/emp_001", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(t, h, http.MethodGet, "/api/v1/payroll/payslips/emp_001?period=December%202024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slip Payslip
	require.NoError(t, json.Unmarshal(env.Data, &slip))
	require.Equal(t, 120000.0, slip.Gross)
	require.Equal(t, 80357.0, slip.Net)
	require.Equal(t, 30783.0, slip.Employee.PAYE)
	require.Len(t, slip.Deductions, 4)
	require.Equal(t, "PAYE", slip.Deductions[0].Label)

	rec, env = do(t, h, http.MethodPost, "/api/v1/payroll/payslips/emp_001/send", map[string]any{"period": "December 2024", "method": "sms"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "unsupported_channel", env.Error.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/payroll/payslips/emp_001/send", map[string]any{"period": "December 2024", "method": "email"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"payslipId":"`+slip.ID+`","method":"email","recipient":"john.doe@example.com","sent":true}`,
		replaceID(t, env.Data, slip.ID))
}

func TestRates(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, env := do(t, h, http.MethodGet, "/api/v1/payroll/rates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rates Rates
	require.NoError(t, json.Unmarshal(env.Data, &rates))
	require.Equal(t, "KE-2024", rates.Name)
	require.Equal(t, "KES", rates.Currency)
	require.Len(t, rates.PAYE, 5)
	require.Nil(t, rates.PAYE[4].Upper)
	require.Equal(t, 24000.0, *rates.PAYE[0].Upper)
	require.Len(t, rates.NHIF, 17)
	require.Equal(t, 2160.0, rates.NSSF["cap"])
}

// replaceID swaps the freshly minted payslip id so the payload can be compared whole.
func replaceID(t *testing.T, raw json.RawMessage, id string) string {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload["payslipId"] = id
	out, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(out)
}

func TestAuditTrailRecordsMutations(t *testing.T) {
	h, _ := newTestRouter(t)
	rec, _ := do(t, h, http.MethodPost, "/api/v1/payroll/calculate", map[string]any{"period": "December 2024"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodPut, "/api/v1/payroll/employees/emp_002", map[string]any{"grossSalary": 160000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, h, http.MethodGet, "/api/v1/payroll/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []audit.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 2)
	require.Equal(t, "payroll.employee.update", events[0].Action)
	require.Equal(t, "emp_002", events[0].EntityID)
	require.Equal(t, "payroll.run.calculate", events[1].Action)

	_, env = do(t, h, http.MethodGet, "/api/v1/payroll/audit?entityType=payroll_run", nil)
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
}
