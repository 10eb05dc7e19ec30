package builder

import "fmt"

// ErrorKind classifies build failures.
type ErrorKind int

const (
	// BadType: an attribute or field base type is not an encodable
	// primitive type.
	BadType ErrorKind = iota

	// InvalidValue: an attribute text value does not parse under the
	// required numeric family, or no enum constant matches it.
	InvalidValue

	// StoreFailure: the destination store rejected a definition call.
	StoreFailure
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case BadType:
		return "bad_type"
	case InvalidValue:
		return "invalid_value"
	case StoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// BuildError is the single error shape the build pass returns: an error
// kind, the name of the offending node, and the underlying cause when one
// exists. The first error aborts the pass; definitions already committed
// to the store stay committed.
type BuildError struct {
	Kind    ErrorKind
	Node    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Kind, e.Node, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error { return e.Err }

func badType(node, format string, args ...interface{}) *BuildError {
	return &BuildError{Kind: BadType, Node: node, Message: fmt.Sprintf(format, args...)}
}

func invalidValue(node, format string, args ...interface{}) *BuildError {
	return &BuildError{Kind: InvalidValue, Node: node, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(node string, err error) *BuildError {
	return &BuildError{Kind: StoreFailure, Node: node, Message: "store rejected definition", Err: err}
}
