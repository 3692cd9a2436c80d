package statuspage

import (
	"fmt"
	"net/http"
)

// TransportInitError is returned by NewClient when the HTTP transport cannot
// be built.
type TransportInitError struct {
	Err error
}

func (e *TransportInitError) Error() string {
	return "statuspage: cannot build HTTP transport: " + e.Err.Error()
}

func (e *TransportInitError) Unwrap() error { return e.Err }

// TransportError wraps a failure of the HTTP transport itself, before any
// response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("statuspage: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for any response outside the 2xx range. Body holds
// the start of the response body.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("statuspage: %s %s: unexpected HTTP status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// DecodeError is returned when a document does not match the expected
// schema. Path is a JSON pointer to the offending value, empty when the
// document as a whole is unreadable. Source names the document, such as the
// request URL.
type DecodeError struct {
	Source string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "statuspage: decoding"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EnumError reports a token outside an enumeration's wire vocabulary.
type EnumError struct {
	Type  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Type, e.Value)
}
