package owm

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned by New when the API key is rejected or
	// the probe request could not be completed.
	ErrAuthentication = errors.New("invalid API key")

	// ErrFetch is returned when a lookup could not be sent or its body
	// could not be decoded. The underlying cause is logged, not returned.
	ErrFetch = errors.New("unable to fetch data from OpenWeatherMap")

	// ErrInvalidSelector is wrapped by LocationSelector.Validate failures.
	ErrInvalidSelector = errors.New("invalid location selector")

	// ErrNormalization matches every *NormalizationError.
	ErrNormalization = errors.New("unexpected weather payload")
)

// APIError is the upstream's own report of a failed lookup, such as an
// unknown city (404) or a bad key (401). It is returned as part of a
// Result rather than as the call's error.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openweathermap: %d %s", e.Code, e.Message)
}

// NormalizationError reports a success payload that did not have the
// expected shape.
type NormalizationError struct {
	Field  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrNormalization, e.Field, e.Reason)
}

func (e *NormalizationError) Is(target error) bool {
	return target == ErrNormalization
}
