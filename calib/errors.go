package calib

import "errors"

// Calibration failures are fatal and never retried internally: a calibrator
// either returns a fully valid parameter set or one of these errors.
var (
	// ErrDimensionMismatch: exact calibration requires one instrument per
	// free parameter. Raised before any pricer call.
	ErrDimensionMismatch = errors.New("calib: instrument count does not match free parameter count")

	// ErrNonConvergence: the solver exhausted its step budget; the last
	// iterate is discarded.
	ErrNonConvergence = errors.New("calib: solver exceeded its maximum step count without converging")

	// ErrSingularJacobian: the finite-difference Jacobian is numerically
	// singular, typically from duplicate or degenerate instruments.
	ErrSingularJacobian = errors.New("calib: jacobian is numerically singular")
)
