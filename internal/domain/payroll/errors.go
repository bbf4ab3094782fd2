package payroll

import "github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"

var (
	ErrPayrollRecordNotFound      = apperror.New(apperror.KindNotFound, "payroll record not found")
	ErrPayrollRecordAlreadyExists = apperror.New(apperror.KindInvalidState, "payroll record already exists for this employee and month")
	ErrPayrollAlreadyGenerated    = apperror.New(apperror.KindInvalidState, "payroll already generated for this month")
	ErrInvalidMonth               = apperror.New(apperror.KindInvalidMonth, "month must be in YYYY-MM format")
	ErrEmployeeNotFound           = apperror.New(apperror.KindNotFound, "employee not found")
)
