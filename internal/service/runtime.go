// Package service holds what every engine service shares: the retry
// policy for collaborator calls, metrics, the logger and the clock.
package service

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/retry"
	"go.uber.org/zap"
)

type Runtime struct {
	Policy  retry.Policy
	Metrics *metrics.Recorder
	Logger  *zap.Logger
	Now     func() time.Time
}

// WithDefaults fills unset fields. A nil Metrics stays nil; Recorder
// methods are no-ops on nil.
func (r Runtime) WithDefaults() Runtime {
	if r.Policy.Timeout == 0 && r.Policy.Delay == 0 && r.Policy.MaxRetries == 0 {
		r.Policy = retry.DefaultPolicy()
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	if r.Policy.OnRetry == nil {
		logger := r.Logger
		r.Policy.OnRetry = func(err error, wait time.Duration) {
			logger.Warn("retrying collaborator call", zap.Error(err), zap.Duration("wait", wait))
		}
	}
	if r.Now == nil {
		r.Now = func() time.Time { return time.Now().UTC() }
	}
	return r
}
