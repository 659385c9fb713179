package coco

import "github.com/pkg/errors"

// Error classes shared by every dataset operation. Failures wrap one of these
// so callers can branch with errors.Is.
var (
	// ErrIntegrity marks a broken reference: a dangling foreign key, a keypoint
	// label bound twice, or a contained object without a container.
	ErrIntegrity = errors.New("integrity error")
	// ErrDataQuality marks input that is well formed but unusable, such as an
	// empty mask for a visible object. Each case has a tolerance flag.
	ErrDataQuality = errors.New("data quality error")
	// ErrInvalidInput marks arguments rejected before any work begins.
	ErrInvalidInput = errors.New("invalid input")
)
