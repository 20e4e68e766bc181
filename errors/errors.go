package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes.
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration.
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing.
	ErrorFatal
)

// String returns the string representation of ErrorClass.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Named error Kinds surfaced by the core, per the engine's error table.
var (
	// Graph build.
	ErrInvalidName    = errors.New("name violates grammar ^[a-z][a-z0-9-]*$")
	ErrDuplicateName  = errors.New("duplicate block name")
	ErrUnknownClass   = errors.New("no factory registered for class-name")
	ErrUnknownBlock   = errors.New("route references a non-existent block")
	ErrUnknownPort    = errors.New("route references a non-existent port")
	ErrAmbiguousPort  = errors.New("source omitted port on a multi-port block")
	ErrNotAConsumer   = errors.New("destination block lacks the consumer role")
	ErrDuplicateRoute = errors.New("duplicate route name")
	ErrReservedName   = errors.New("dispatcher name \"default\" is reserved")

	// Block init.
	ErrInvalidConfig = errors.New("invalid block configuration")

	// Prefix router build.
	ErrPrefixConflict = errors.New("pattern is a strict prefix of another pattern")
	ErrPatternConflict = errors.New("two ports claim the same pattern")
	ErrEmptyPattern    = errors.New("empty pattern")
	ErrNoRoute         = errors.New("no non-empty patterns configured")

	// Module load.
	ErrModuleLoadFailure = errors.New("module registration failed")

	// Component lifecycle, reused across blocks/dispatchers/manager.
	ErrAlreadyStarted = errors.New("component already started")
	ErrNotStarted     = errors.New("component not started")
	ErrAlreadyStopped = errors.New("component already stopped")
	ErrShuttingDown   = errors.New("component is shutting down")

	// Connection and networking, used by concrete I/O blocks.
	ErrNoConnection      = errors.New("no connection available")
	ErrConnectionLost    = errors.New("connection lost")
	ErrConnectionTimeout = errors.New("connection timeout")
)

// ClassifiedError wraps an error with its classification and operation context.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Is reports whether ce.Err matches target under errors.Is. It adds
// nothing beyond the standard Unwrap-based matching; a ClassifiedError
// with a nil Err matches no target.
func (ce *ClassifiedError) Is(target error) bool {
	return errors.Is(ce.Err, target)
}

// IsTransient reports whether err is transient and may be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}
	if errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection", "network", "temporary", "unavailable", "busy"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// IsFatal reports whether err is unrecoverable and should stop processing.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}
	return errors.Is(err, ErrModuleLoadFailure)
}

// IsInvalid reports whether err stems from invalid input or configuration.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrUnknownClass), errors.Is(err, ErrUnknownBlock),
		errors.Is(err, ErrUnknownPort), errors.Is(err, ErrAmbiguousPort),
		errors.Is(err, ErrNotAConsumer), errors.Is(err, ErrDuplicateRoute),
		errors.Is(err, ErrReservedName), errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrPrefixConflict), errors.Is(err, ErrPatternConflict),
		errors.Is(err, ErrEmptyPattern), errors.Is(err, ErrNoRoute):
		return true
	}
	return false
}

// Classify returns the error class for err.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	if IsTransient(err) {
		return ErrorTransient
	}
	return ErrorInvalid
}

func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{Class: class, Err: err, Message: message, Component: component, Operation: operation}
}

// Wrap creates a standardized error with context following the pattern
// "component.method: action failed: %w".
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps err as transient with context.
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrapped, component, method, wrapped.Error())
}

// WrapFatal wraps err as fatal with context.
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrapped, component, method, wrapped.Error())
}

// WrapInvalid wraps err as invalid with context.
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrapped, component, method, wrapped.Error())
}

