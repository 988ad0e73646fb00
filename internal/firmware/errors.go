package firmware

import "errors"

// Domain errors for the firmware package.
var (
	// ErrInvalidVersion is returned when a version string is not dotted numeric.
	ErrInvalidVersion = errors.New("firmware: invalid version")

	// ErrUnrecognisedImage is returned when a file name does not follow the
	// firmware naming convention.
	ErrUnrecognisedImage = errors.New("firmware: unrecognised image name")

	// ErrInvalidFileName is returned for empty upload names.
	ErrInvalidFileName = errors.New("firmware: invalid file name")
)
