package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeServer       Code = "SERVER_ERROR"
	CodeStorage      Code = "STORAGE_ERROR"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Metadata describes how a code is surfaced to the user.
type Metadata struct {
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      false,
		PublicMessage:  "Please check the highlighted fields.",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		Retryable:      false,
		PublicMessage:  "Please log in to continue.",
		DetailsAllowed: false,
	},
	CodeForbidden: {
		Retryable:      false,
		PublicMessage:  "You do not have access to this.",
		DetailsAllowed: false,
	},
	CodeNotFound: {
		Retryable:      false,
		PublicMessage:  "That item could not be found.",
		DetailsAllowed: false,
	},
	CodeNetwork: {
		Retryable:      true,
		PublicMessage:  "Connection error. Please check your network and try again.",
		DetailsAllowed: false,
	},
	CodeServer: {
		Retryable:      true,
		PublicMessage:  "Something went wrong on our side. Please try again.",
		DetailsAllowed: true,
	},
	CodeStorage: {
		Retryable:      false,
		PublicMessage:  "",
		DetailsAllowed: false,
	},
	CodeRateLimit: {
		Retryable:      true,
		PublicMessage:  "Too many attempts. Please wait a moment.",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Retryable:      false,
		PublicMessage:  "Something went wrong. Please try again.",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code          Code
	message       string
	serverMessage string
	details       any
	cause         error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// WithServerMessage attaches the error text reported by the backend.
func (e *Error) WithServerMessage(msg string) *Error {
	if e == nil {
		return nil
	}
	e.serverMessage = msg
	return e
}

// UserMessage returns the text to show the user: the server-provided
// message verbatim when present, the code's public message otherwise.
func (e *Error) UserMessage() string {
	if e == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	if e.serverMessage != "" {
		return e.serverMessage
	}
	return MetadataFor(e.code).PublicMessage
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// UserMessageFor resolves the display text for any error value.
func UserMessageFor(err error) string {
	if typed := As(err); typed != nil {
		return typed.UserMessage()
	}
	return MetadataFor(CodeInternal).PublicMessage
}
