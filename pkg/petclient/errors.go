package petclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/limbo/virtualpet/pkg/httputil"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// APIError is any non-2xx answer that is not a care action rejection.
type APIError struct {
	Status  int
	Message string
	Fields  []httputil.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// RejectionError is a care action the server refused. The pet is unchanged.
type RejectionError struct {
	Status  int
	Reason  string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("action rejected: %s", e.Reason)
}

// ResyncError reports an action whose outcome is unknown. Current is the pet as
// refetched from the server afterwards.
type ResyncError struct {
	Cause   error
	Current *entity.Pet
}

func (e *ResyncError) Error() string {
	return "action outcome unknown, pet refetched: " + e.Cause.Error()
}

func (e *ResyncError) Unwrap() error {
	return e.Cause
}

func hasReason(err error, reason string) bool {
	var rej *RejectionError
	return errors.As(err, &rej) && rej.Reason == reason
}

func IsAlreadySatiated(err error) bool { return hasReason(err, httputil.ReasonAlreadySatiated) }
func IsAlreadyClean(err error) bool    { return hasReason(err, httputil.ReasonAlreadyClean) }
func IsAlreadyJoyful(err error) bool   { return hasReason(err, httputil.ReasonAlreadyJoyful) }
func IsDeceased(err error) bool        { return hasReason(err, httputil.ReasonDeceased) }
func IsUnknownAction(err error) bool   { return hasReason(err, httputil.ReasonUnknownAction) }
