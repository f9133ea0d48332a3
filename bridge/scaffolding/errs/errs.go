// Package errs provides the error type rendered by the HTTP layer.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/sdk/validation"
)

// ErrCode is a transport independent error classification.
type ErrCode struct {
	value string
}

var (
	InvalidArgument    = ErrCode{"invalid_argument"}
	NotFound           = ErrCode{"not_found"}
	AlreadyExists      = ErrCode{"already_exists"}
	FailedPrecondition = ErrCode{"failed_precondition"}
	Aborted            = ErrCode{"aborted"}
	Unimplemented      = ErrCode{"unimplemented"}
	ResourceExhausted  = ErrCode{"resource_exhausted"}
	Unavailable        = ErrCode{"unavailable"}
	Internal           = ErrCode{"internal"}

	// InternalOnlyLog is logged with its detail but rendered as Internal.
	InternalOnlyLog = ErrCode{"internal_only_log"}
)

var httpStatus = map[ErrCode]int{
	InvalidArgument:    http.StatusBadRequest,
	NotFound:           http.StatusNotFound,
	AlreadyExists:      http.StatusConflict,
	FailedPrecondition: http.StatusUnprocessableEntity,
	Aborted:            http.StatusConflict,
	Unimplemented:      http.StatusNotImplemented,
	ResourceExhausted:  http.StatusTooManyRequests,
	Unavailable:        http.StatusServiceUnavailable,
	Internal:           http.StatusInternalServerError,
	InternalOnlyLog:    http.StatusInternalServerError,
}

func (c ErrCode) String() string {
	return c.value
}

func (c ErrCode) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// Error is an application error carrying the location it was raised from.
type Error struct {
	Code     ErrCode           `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	FuncName string            `json:"-"`
	FileName string            `json:"-"`
}

// New wraps err with code.
func New(code ErrCode, err error) *Error {
	e := &Error{Code: code, Message: err.Error()}
	e.caller(2)
	return e
}

// Newf builds an error from a format string.
func Newf(code ErrCode, format string, v ...any) *Error {
	e := &Error{Code: code, Message: fmt.Sprintf(format, v...)}
	e.caller(2)
	return e
}

func (e *Error) caller(skip int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return
	}
	e.FileName = fmt.Sprintf("%s:%d", file, line)
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.FuncName = fn.Name()
	}
}

func (e *Error) Error() string {
	return e.Message
}

// Encode implements web.Encoder.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web status interface.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Equal reports whether two errors carry the same code and message.
func (e *Error) Equal(e2 *Error) bool {
	return e.Code == e2.Code && e.Message == e2.Message
}

// FromRepository classifies an error returned by a repository. Errors outside
// the repository taxonomy become InternalOnlyLog so their detail is logged
// but never rendered.
func FromRepository(err error) *Error {
	var code ErrCode
	switch {
	case errors.Is(err, repositories.ErrValidation),
		errors.Is(err, repositories.ErrEmptyFilter),
		errors.Is(err, repositories.ErrNoChanges):
		code = InvalidArgument
	case errors.Is(err, repositories.ErrNotFound):
		code = NotFound
	case errors.Is(err, repositories.ErrUniqueViolation):
		code = AlreadyExists
	case errors.Is(err, repositories.ErrVersionConflict):
		code = Aborted
	case errors.Is(err, repositories.ErrForeignKeyViolation),
		errors.Is(err, repositories.ErrCheckViolation),
		errors.Is(err, repositories.ErrManagerCycle),
		errors.Is(err, repositories.ErrTenantMismatch),
		errors.Is(err, repositories.ErrInvalidTransition):
		code = FailedPrecondition
	case errors.Is(err, repositories.ErrOperationNotSupported):
		code = Unimplemented
	default:
		e := &Error{Code: InternalOnlyLog, Message: err.Error()}
		e.caller(2)
		return e
	}

	e := &Error{Code: code, Message: err.Error()}
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		e.Fields = fields.Fields()
	}
	e.caller(2)
	return e
}
