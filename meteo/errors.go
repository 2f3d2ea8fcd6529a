package meteo

import "fmt"

// APIError is a non-200 answer from the MET API
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("met.no %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// ValidationError reports a location outside the accepted ranges
type ValidationError struct {
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %g", e.Field, e.Value)
}
