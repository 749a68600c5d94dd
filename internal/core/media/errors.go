package media

import "errors"

var (
	// ErrInvalidImage is returned when the upload cannot be decoded as an image
	// or exceeds the accepted source size or pixel count.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidMaxDimension is returned when MaxDimension is not positive.
	ErrInvalidMaxDimension = errors.New("MaxDimension must be positive")

	// ErrInvalidQuality is returned when Quality is outside 1..100.
	ErrInvalidQuality = errors.New("Quality must be between 1 and 100")

	// ErrInvalidMaxSourceSize is returned when MaxSourceSizeMB is not positive.
	ErrInvalidMaxSourceSize = errors.New("MaxSourceSizeMB must be positive")

	// ErrInvalidMaxSourcePixels is returned when MaxSourcePixels is not positive.
	ErrInvalidMaxSourcePixels = errors.New("MaxSourcePixels must be positive")

	// ErrInvalidWorkers is returned when Workers is not positive.
	ErrInvalidWorkers = errors.New("Workers must be positive")
)
