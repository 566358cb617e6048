// SPDX-License-Identifier: LGPL-3.0-or-later

// Package literr defines the uniform error taxonomy used across the
// coordinator: every failure surfaced to a caller is either an *Error
// carrying one of the Kind sentinels below, or wraps one.
package literr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure, independent of the human-readable
// message.
type Kind string

const (
	ParamsMissing             Kind = "ParamsMissing"
	InvalidParamType          Kind = "InvalidParamType"
	InvalidArgumentException  Kind = "InvalidArgumentException"
	InvalidEthBlockhash       Kind = "InvalidEthBlockhash"
	WalletSignatureNotFound   Kind = "WalletSignatureNotFound"
	LitNodeClientNotReady     Kind = "LitNodeClientNotReady"
	ParamNull                 Kind = "ParamNull"
	UnknownError               Kind = "UnknownError"
)

// Error is the concrete carrier for every structured failure in the
// coordinator. It implements error and Unwrap so callers can use
// errors.Is/errors.As against the Kind sentinels declared below.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	RequestID string
	Cause     error
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (requestId=%s)", e.Kind, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, literr.Sentinel(Kind)) without allocating for
// every comparison; it also matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an *Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithRequestID returns a copy of e carrying requestID, per §7: "requestId
// is always included when any request was actually issued."
func (e *Error) WithRequestID(requestID string) *Error {
	cp := *e
	cp.RequestID = requestID
	return &cp
}

// sentinel kind-only errors for errors.Is matching against a bare Kind.
var (
	ErrParamsMissing            = &Error{Kind: ParamsMissing, Message: "required parameter missing"}
	ErrInvalidParamType         = &Error{Kind: InvalidParamType, Message: "parameter has invalid type"}
	ErrInvalidArgumentException = &Error{Kind: InvalidArgumentException, Message: "invalid argument"}
	ErrInvalidEthBlockhash      = &Error{Kind: InvalidEthBlockhash, Message: "missing or invalid chain blockhash"}
	ErrWalletSignatureNotFound  = &Error{Kind: WalletSignatureNotFound, Message: "wallet signature not found"}
	ErrLitNodeClientNotReady    = &Error{Kind: LitNodeClientNotReady, Message: "client is not ready"}
	ErrParamNull                = &Error{Kind: ParamNull, Message: "parameter was null"}
	ErrUnknown                  = &Error{Kind: UnknownError, Message: "unknown error"}
)

// Of reports whether err is a *Error of kind k.
func Of(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
