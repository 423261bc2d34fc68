package store

import (
	"github.com/tansive/conductor/internal/common/apperrors"
)

var (
	ErrStore               = apperrors.New("catalog store error").SetExitCode(apperrors.ExitCodeStorage)
	ErrUnsupportedVersion  = ErrStore.New("unsupported catalog record version")
	ErrCorruptRecord       = ErrStore.New("corrupt catalog record")
	ErrFingerprintMismatch = ErrCorruptRecord.New("catalog fingerprint mismatch")
)
