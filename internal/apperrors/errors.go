package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindIO              Kind = "io"
	KindParse           Kind = "parse"
	KindInvalidArgument Kind = "invalid_argument"
	KindManifestInvalid Kind = "manifest_invalid"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.TrimSpace(e.SafeMessage)
	if msg == "" {
		msg = defaultSafeMessage(e.Kind)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindIO:
		return "Configuration file could not be read or written."
	case KindParse:
		return "Configuration file is malformed."
	case KindInvalidArgument:
		return "Invalid argument."
	case KindManifestInvalid:
		return "Widget manifest is invalid."
	default:
		return "Operation failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func IO(msg string, err error) error {
	return New(KindIO, msg, err)
}

func Parse(msg string, err error) error {
	return New(KindParse, msg, err)
}

func InvalidArgument(msg string) error {
	return New(KindInvalidArgument, msg, nil)
}

func ManifestInvalid(msg string, err error) error {
	return New(KindManifestInvalid, msg, err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// PublicMessage returns the SafeMessage of the outermost *Error without its cause chain.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return strings.TrimSpace(e.SafeMessage)
	}
	return err.Error()
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsIO(err error) bool {
	return IsKind(err, KindIO)
}

func IsParse(err error) bool {
	return IsKind(err, KindParse)
}

func IsInvalidArgument(err error) bool {
	return IsKind(err, KindInvalidArgument)
}
