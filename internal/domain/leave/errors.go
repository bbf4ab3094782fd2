package leave

import "github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound         = apperror.New(apperror.KindNotFound, "leave request not found")
	ErrLeaveRequestAlreadyProcessed = apperror.New(apperror.KindInvalidState, "leave request already processed")
	ErrLeaveRequestAlreadyExists    = apperror.New(apperror.KindInvalidState, "leave request already exists")
	ErrEmployeeNotFound             = apperror.New(apperror.KindNotFound, "employee not found")
	ErrUnknownLeaveType             = apperror.New(apperror.KindValidation, "leave type is not configured")
)
