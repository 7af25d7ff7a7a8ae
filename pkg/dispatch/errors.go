package dispatch

import (
	"fmt"

	"httpfs/pkg/http"
)

// StatusError is an expected per-request failure with the status code that
// reports it. Reason is a short human-readable explanation that may be shown
// to the client.
type StatusError struct {
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Reason)
}

// Is matches any StatusError with the same code, so callers can test
// errors.Is(err, dispatch.ErrNotFound) regardless of the reason text.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrBadRequest           = &StatusError{Code: http.StatusBadRequest, Reason: reasonBadRequest}
	ErrNotFound             = &StatusError{Code: http.StatusNotFound, Reason: reasonNotFound}
	ErrUnsupportedMediaType = &StatusError{Code: http.StatusUnsupportedMediaType, Reason: reasonUnsupportedMediaType}
	ErrNotImplemented       = &StatusError{Code: http.StatusNotImplemented, Reason: reasonNotImplemented}
	ErrInternal             = &StatusError{Code: http.StatusInternalServerError, Reason: reasonInternal}
)

const (
	reasonBadRequest           = "You sent a bad request to the server!"
	reasonNotFound             = "Oh!! My god!! The server couldn't find the requested resource!"
	reasonUnsupportedMediaType = "The server does not support POST for requests that aren't of type text/plain."
	reasonNotImplemented       = "The server does not implement this request."
	reasonInternal             = "Oh!! My God!! The server broke and there are no monkeys to fix it!"
)

// unsupportedHeader builds the 501 returned for a PUT carrying an entity
// header the server does not understand.
func unsupportedHeader(name string) *StatusError {
	return &StatusError{
		Code: http.StatusNotImplemented,
		Reason: fmt.Sprintf("`%s` HTTP header is not supported by this server, "+
			"and HTTP/1.1 does not allow it to be ignored for PUT requests.", name),
	}
}

// unsupportedMethod builds the 501 returned for a method outside the four
// the server handles.
func unsupportedMethod(method string) *StatusError {
	return &StatusError{
		Code:   http.StatusNotImplemented,
		Reason: fmt.Sprintf("`%s` requests are not implemented by this server.", method),
	}
}
