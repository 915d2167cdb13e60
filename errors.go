package g2d

import "errors"

var (
	// ErrDeleted is returned when a deleted primitive is deleted again.
	ErrDeleted = errors.New("g2d: primitive deleted")

	// ErrUnknownColor is returned for unparseable colour strings.
	ErrUnknownColor = errors.New("g2d: unknown colour")

	// ErrBadSize is returned for non-positive dimensions.
	ErrBadSize = errors.New("g2d: invalid size")

	// ErrGroupCycle is returned when a group would contain itself.
	ErrGroupCycle = errors.New("g2d: group cycle")

	// ErrBadShape is returned for shapes with too few points.
	ErrBadShape = errors.New("g2d: invalid shape")
)
