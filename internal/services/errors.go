package services

import "errors"

// Service-level sentinels. The HTTP layer maps these to 400-class
// problems; anything else surfaces as a storage failure.
var (
	// ErrUnknownSource means a series query named a production source the
	// API does not report on (including crude_oil, which is persisted but
	// never presented).
	ErrUnknownSource = errors.New("unknown production source")

	// ErrInvalidYearRange means the query's from year is after its to year.
	ErrInvalidYearRange = errors.New("invalid year range")
)
