package employee

import "github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"

var (
	ErrEmployeeNotFound   = apperror.New(apperror.KindNotFound, "employee not found")
	ErrEmployeeCodeExists = apperror.New(apperror.KindValidation, "employee code already exists")
)
