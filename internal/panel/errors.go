package panel

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

// CodeNetwork marks failures where the panel could not be reached at all.
const CodeNetwork = "NETWORK_ERROR"

// APIError is returned for every failed panel call
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("panel error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("panel error %d: %s", e.Status, e.Message)
}

// AsAPIError unwraps err into an *APIError if it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a panel 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// NotFound builds the error returned when a resource does not exist.
func NotFound(kind, uuid string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", kind, uuid),
	}
}
