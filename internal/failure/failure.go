// Package failure defines the error kinds surfaced by the classification pipeline.
// Every terminal error carries a Kind so callers can branch on the cause
// without inspecting messages.
package failure

import (
	"errors"
	"net/http"
)

// Kind identifies the category of a pipeline failure.
type Kind int

const (
	Unknown Kind = iota
	// StoreUnavailable means the result store could not be reached or rejected the request.
	StoreUnavailable
	// Decode means the input bytes are not a decodable image.
	Decode
	// Model means the scoring graph failed to load or execute.
	Model
	// LabelLookup means the model produced a class index with no label.
	LabelLookup
	// MalformedRecord means a stored record exists but is not a well-formed cache entry.
	MalformedRecord
)

func (k Kind) String() string {
	switch k {
	case StoreUnavailable:
		return "store unavailable"
	case Decode:
		return "decode error"
	case Model:
		return "model error"
	case LabelLookup:
		return "label lookup error"
	case MalformedRecord:
		return "malformed store record"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is matching by kind.
var (
	ErrStoreUnavailable = &Error{Kind: StoreUnavailable}
	ErrDecode           = &Error{Kind: Decode}
	ErrModel            = &Error{Kind: Model}
	ErrLabelLookup      = &Error{Kind: LabelLookup}
	ErrMalformedRecord  = &Error{Kind: MalformedRecord}
)

// Error is a pipeline failure tagged with its Kind.
// Op names the operation that failed and Err holds the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New creates an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MapHTTPStatus maps failure kinds to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch KindOf(err) {
	case Decode:
		return http.StatusUnsupportedMediaType
	case StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
