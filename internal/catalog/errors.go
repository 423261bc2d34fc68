package catalog

import (
	"github.com/tansive/conductor/internal/common/apperrors"
)

var ErrCatalog = apperrors.New("catalog error")

var (
	ErrInvalidCatalog  = ErrCatalog.New("invalid catalog").SetExitCode(apperrors.ExitCodeState)
	ErrInvalidDataType = ErrCatalog.New("invalid data type").SetExitCode(apperrors.ExitCodeInput)
	ErrDiff            = ErrCatalog.New("unable to diff catalogs").SetExitCode(apperrors.ExitCodeState)
	ErrApply           = ErrCatalog.New("unable to apply edit").SetExitCode(apperrors.ExitCodeState)
)

var (
	ErrNamespaceNotFound = ErrApply.New("namespace not found")
	ErrNamespaceExists   = ErrApply.New("namespace already exists")
	ErrNamespaceNotEmpty = ErrApply.New("namespace is not empty")
	ErrTableNotFound     = ErrApply.New("table not found")
	ErrTableExists       = ErrApply.New("table already exists")
	ErrColumnNotFound    = ErrApply.New("column not found")
	ErrColumnExists      = ErrApply.New("column already exists")
	ErrHandlerNotFound   = ErrApply.New("http handler not found")
	ErrPolicyNotFound    = ErrApply.New("policy not found")
	ErrUnknownEdit       = ErrApply.New("unknown edit")
)
