package drafting

import "fmt"

// APICallError represents a transport or provider failure talking to the model
type APICallError struct {
	Operation string
	Cause     error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("API call failed during %s", e.Operation)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
