// Package apierror provides standardized error values for the core and the error
// envelope returned to HTTP clients. Every failure the core reports carries a
// machine-readable Kind and Code plus a detail string; translation for the cashier
// is left to the UI.
package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the caller can decide how to react.
type Kind string

const (
	// KindGuarda marks business rule violations detected before any mutation.
	KindGuarda Kind = "guarda"
	// KindEstado marks state errors: closed register, missing or already voided records.
	KindEstado Kind = "estado"
	// KindRecurso marks resource shortages such as insufficient stock.
	KindRecurso Kind = "recurso"
	// KindCuota marks demo/licensing limits.
	KindCuota Kind = "cuota"
	// KindValidacion marks malformed input.
	KindValidacion Kind = "validacion"
)

// Error is the typed error returned by services and pure calculations.
type Error struct {
	Kind   Kind
	Code   string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Kind, e.Code, e.Detail)
}

// Is matches on Kind and Code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newErr(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Detail: fmt.Sprintf(format, args...)}
}

func Guarda(code, format string, args ...any) *Error {
	return newErr(KindGuarda, code, format, args...)
}

func Estado(code, format string, args ...any) *Error {
	return newErr(KindEstado, code, format, args...)
}

func Recurso(code, format string, args ...any) *Error {
	return newErr(KindRecurso, code, format, args...)
}

func Cuota(code, format string, args ...any) *Error {
	return newErr(KindCuota, code, format, args...)
}

func Validacion(code, format string, args ...any) *Error {
	return newErr(KindValidacion, code, format, args...)
}

// Sentinels for errors.Is checks. Only Kind and Code are compared.
var (
	ErrCajaCerrada         = &Error{Kind: KindEstado, Code: "caja_cerrada"}
	ErrCajaYaAbierta       = &Error{Kind: KindEstado, Code: "caja_ya_abierta"}
	ErrVentaNoEncontrada   = &Error{Kind: KindEstado, Code: "venta_no_encontrada"}
	ErrVentaAnulada        = &Error{Kind: KindEstado, Code: "venta_ya_anulada"}
	ErrGastoNoEncontrado   = &Error{Kind: KindEstado, Code: "gasto_no_encontrado"}
	ErrGastoRevertido      = &Error{Kind: KindEstado, Code: "gasto_ya_revertido"}
	ErrClienteNoEncontrado = &Error{Kind: KindEstado, Code: "cliente_no_encontrado"}
	ErrStockInsuficiente   = &Error{Kind: KindRecurso, Code: "stock_insuficiente"}
	ErrLimiteDemo          = &Error{Kind: KindCuota, Code: "limite_demo"}
	ErrVueltoExcedido      = &Error{Kind: KindGuarda, Code: "vuelto_excedido"}
	ErrVueltoPendiente     = &Error{Kind: KindGuarda, Code: "vuelto_no_distribuido"}
)

// KindOf extracts the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Kind   Kind   `json:"kind,omitempty"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for a typed error. Untyped errors must not reach
// this function; handlers log them and answer with a generic message instead.
func FromError(err *Error) *APIError {
	return &APIError{Detail: err.Detail, Kind: err.Kind, Code: err.Code}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
