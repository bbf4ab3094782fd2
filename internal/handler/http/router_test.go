package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/workdays"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/service"
	attendanceService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-payroll-engine/internal/service/payroll"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string            `json:"code"`
		Message   string            `json:"message"`
		Details   map[string]string `json:"details"`
		Retryable bool              `json:"retryable"`
	} `json:"error"`
}

type testServer struct {
	router     *chi.Mux
	jwtService jwt.Service
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	employees := memory.NewEmployeeRepository(
		employee.Employee{
			ID:           "emp-1",
			EmployeeCode: "EMP001",
			FullName:     "Ayu Lestari",
			Salary: employee.SalaryStructure{
				Basic: decimal.NewFromInt(1000),
				HRA:   decimal.NewFromInt(200),
			},
		},
		employee.Employee{
			ID:           "emp-2",
			EmployeeCode: "EMP002",
			FullName:     "Budi Santoso",
			Salary:       employee.SalaryStructure{Basic: decimal.NewFromInt(900)},
		},
	)
	attendanceRepo := memory.NewAttendanceRepository()
	cal, err := workdays.NewCalendar(nil)
	require.NoError(t, err)

	rec := metrics.NewRecorder()
	rt := service.Runtime{
		Policy:  retry.Policy{Timeout: time.Second, Delay: time.Millisecond, MaxRetries: 1},
		Metrics: rec,
	}

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(
		jwtService,
		RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, Env: "test", Metrics: rec.Handler()},
		NewPayrollHandler(payrollService.NewPayrollService(
			memory.NewTransactor(),
			memory.NewPayrollRepository(),
			employees,
			attendanceRepo,
			cal,
			payroll.GenerationSettings{OvertimeRatePerHour: decimal.NewFromInt(20)},
			rt,
		)),
		NewLeaveHandler(leaveService.NewLeaveService(
			memory.NewLeaveRequestRepository(),
			employees,
			map[string]int{"Annual": 12, "Sick": 5},
			lock.NewKeyedMutex(),
			rt,
		)),
		NewAttendanceHandler(attendanceService.NewAttendanceService(attendanceRepo, employees, rt)),
	)
	return testServer{router: router, jwtService: jwtService}
}

func (s testServer) token(t *testing.T, isAdmin bool) string {
	t.Helper()
	token, _, err := s.jwtService.GenerateAccessToken("user-1", "hr@example.com", "", isAdmin)
	require.NoError(t, err)
	return token
}

func (s testServer) employeeToken(t *testing.T, employeeID string) string {
	t.Helper()
	token, _, err := s.jwtService.GenerateAccessToken("user-"+employeeID, employeeID+"@example.com", employeeID, false)
	require.NoError(t, err)
	return token
}

func (s testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestRouter_Heartbeat(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/leave/types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/v1/payroll/compute", s.token(t, false), map[string]string{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestPayrollHandler_ComputeNetSalary(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, true)

	// Act
	w, env := s.do(t, http.MethodPost, "/api/v1/payroll/compute", admin, map[string]any{
		"basic_salary": 5000,
		"hra":          2000,
		"allowances":   1000,
		"overtime":     500,
		"bonus":        "250.555",
		"deductions":   300,
		"tax":          700,
	})

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var result payroll.ComputeNetSalaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "7750.56", result.NetSalary.StringFixed(2))

	w, env = s.do(t, http.MethodPost, "/api/v1/payroll/compute", admin, map[string]any{"basic_salary": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "basic_salary")
	assert.Contains(t, env.Error.Details, "tax")

	w, env = s.do(t, http.MethodPost, "/api/v1/payroll/compute", admin, "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestPayrollHandler_GenerateAndMarkPaid(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, true)

	w, env := s.do(t, http.MethodPost, "/api/v1/payroll/generate", admin, map[string]string{"month": "2024-13"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_MONTH", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/payroll/generate", admin, map[string]string{"month": "2024-01"})
	require.Equal(t, http.StatusCreated, w.Code)
	var generated payroll.GeneratePayrollResponse
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	require.Equal(t, 2, generated.Count)

	w, env = s.do(t, http.MethodPost, "/api/v1/payroll/generate", admin, map[string]string{"month": "2024-01"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	// Act
	w, env = s.do(t, http.MethodPost, "/api/v1/payroll/mark-paid", admin, map[string]any{
		"record_ids": []string{generated.Records[0].ID, "missing"},
	})

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var paid payroll.MarkPaidResponse
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, 1, paid.UpdatedCount)
	assert.Equal(t, []string{"missing"}, paid.AlreadyResolved)

	w, env = s.do(t, http.MethodGet, "/api/v1/payroll/"+generated.Records[0].ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var record payroll.PayrollRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, payroll.PayrollStatusPaid, record.Status)
	require.NotNil(t, record.PaidBy)
	assert.Equal(t, "hr@example.com", *record.PaidBy)

	w, env = s.do(t, http.MethodGet, "/api/v1/payroll/summary?month=2024-01", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary payroll.PayrollSummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.PaidCount)
	assert.Equal(t, 1, summary.PendingCount)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/payroll/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaveHandler_SubmitAndDecide(t *testing.T) {
	s := newTestServer(t)
	employeeToken := s.employeeToken(t, "emp-2")
	admin := s.token(t, true)

	w, env := s.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"employee_id": "emp-2",
		"leave_type":  "Sick",
		"start_date":  "2025-03-03",
		"end_date":    "2025-03-09",
		"reason":      "flu",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var submitted struct {
		ID         string `json:"id"`
		PaidDays   int    `json:"paid_days"`
		UnpaidDays int    `json:"unpaid_days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.Equal(t, 5, submitted.PaidDays)
	assert.Equal(t, 2, submitted.UnpaidDays)

	decisionPath := "/api/v1/leave/requests/" + submitted.ID + "/decision"
	w, _ = s.do(t, http.MethodPost, decisionPath, employeeToken, map[string]string{"status": "Approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Act
	w, env = s.do(t, http.MethodPost, decisionPath, admin, map[string]string{"status": "Approved"})

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var decided struct {
		Status    string `json:"status"`
		DecidedBy string `json:"decided_by"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &decided))
	assert.Equal(t, "Approved", decided.Status)
	assert.Equal(t, "hr@example.com", decided.DecidedBy)

	w, env = s.do(t, http.MethodPost, decisionPath, admin, map[string]string{"status": "Rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/balances/emp-2", employeeToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/balances/nobody", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/leave/requests/usage?type=Sick&year=2025", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage struct {
		TotalRequests int `json:"total_requests"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &usage))
	assert.Equal(t, 1, usage.TotalRequests)
}

func TestLeaveHandler_NonAdminIsScopedToOwnEmployee(t *testing.T) {
	s := newTestServer(t)
	own := s.employeeToken(t, "emp-2")
	admin := s.token(t, true)

	other := map[string]string{
		"employee_id": "emp-1",
		"leave_type":  "Annual",
		"start_date":  "2025-03-03",
		"end_date":    "2025-03-04",
		"reason":      "family",
	}
	w, _ := s.do(t, http.MethodPost, "/api/v1/leave/requests", own, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/v1/leave/requests", admin, other)
	require.Equal(t, http.StatusCreated, w.Code)
	var othersRequest struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &othersRequest))

	// Act
	w, env = s.do(t, http.MethodPost, "/api/v1/leave/requests", own, map[string]string{
		"leave_type": "Annual",
		"start_date": "2025-03-05",
		"end_date":   "2025-03-05",
		"reason":     "errand",
	})

	// Assert
	require.Equal(t, http.StatusCreated, w.Code)
	var mine struct {
		EmployeeID string `json:"employee_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Equal(t, "emp-2", mine.EmployeeID)

	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/balances/emp-1", own, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/balances/emp-2", own, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/requests?employee_id=emp-1", own, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = s.do(t, http.MethodGet, "/api/v1/leave/requests", own, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []struct {
		EmployeeID string `json:"employee_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "emp-2", listed[0].EmployeeID)

	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/requests/"+othersRequest.ID, own, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/requests/"+othersRequest.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/leave/balances/emp-2", s.token(t, false), nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "tokens without an employee_id claim")
}

func TestAttendanceHandler_BulkUpsert(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, true)

	w, env := s.do(t, http.MethodPost, "/api/v1/attendance/bulk", admin, map[string]any{
		"records": []map[string]string{
			{"employee_id": "emp-1", "date": "2024-01-03", "status": "Present"},
			{"employee_id": "nobody", "date": "2024-01-03", "status": "Present"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Created int `json:"created"`
		Failed  []struct {
			Index int    `json:"index"`
			Kind  string `json:"kind"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Equal(t, "not_found", result.Failed[0].Kind)

	w, _ = s.do(t, http.MethodGet, "/api/v1/attendance/statistics?date=2024-01-03", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/attendance?month=2024-1", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_MONTH", env.Error.Code)
}

func TestRouter_Reports(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, true)

	w, _ := s.do(t, http.MethodPut, "/api/v1/attendance", admin, map[string]string{
		"employee_id": "emp-1", "date": "2024-01-03", "status": "Late",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Act
	w, env := s.do(t, http.MethodGet, "/api/v1/attendance/report?from=2024-01-01&to=2024-01-31&employee_id=emp-1", admin, nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var attendanceReport struct {
		Employees []struct {
			EmployeeID string `json:"employee_id"`
			LateDays   int    `json:"late_days"`
		} `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &attendanceReport))
	require.Len(t, attendanceReport.Employees, 1)
	assert.Equal(t, 1, attendanceReport.Employees[0].LateDays)

	w, env = s.do(t, http.MethodGet, "/api/v1/payroll/report?from=2024-01&to=2024-03", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payrollReport struct {
		Months []struct {
			Month string `json:"month"`
		} `json:"months"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payrollReport))
	assert.Len(t, payrollReport.Months, 3)

	w, env = s.do(t, http.MethodGet, "/api/v1/payroll/report?from=2024-03&to=2024-01", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	employeeToken := s.employeeToken(t, "emp-1")
	w, _ = s.do(t, http.MethodGet, "/api/v1/payroll/report?from=2024-01&to=2024-03", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/attendance/report?from=2024-01-01&to=2024-01-31", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/payroll/compute", s.token(t, true), map[string]int{
		"basic_salary": 100, "hra": 0, "allowances": 0, "deductions": 0, "tax": 0,
	})

	w, _ := s.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "payroll_engine_operation_duration_seconds")
}
