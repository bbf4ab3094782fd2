package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	r := NewRecorder()

	var okErr error
	r.Observe("payroll.generate", time.Now(), &okErr)

	failed := error(apperror.New(apperror.KindInvalidMonth, "bad month"))
	r.Observe("payroll.generate", time.Now(), &failed)

	plain := errors.New("boom")
	r.Observe("payroll.generate", time.Now(), &plain)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("payroll.generate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("payroll.generate", "invalid_month")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("payroll.generate", "internal")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe("leave.submit", time.Now(), nil)
		r.BatchItems("payroll.mark_paid", "updated", 3)
	})
}

func TestHandler(t *testing.T) {
	r := NewRecorder()
	r.BatchItems("payroll.mark_paid", "updated", 2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `payroll_engine_batch_items_total{operation="payroll.mark_paid",result="updated"} 2`))
}
