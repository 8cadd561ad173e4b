package joinsql

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common failures.
var (
	// ErrArgumentNull is returned when a required argument is nil.
	ErrArgumentNull = errors.New("joinsql: argument must not be nil")

	// ErrCannotMerge is returned when two join trees with different roots are merged.
	ErrCannotMerge = errors.New("joinsql: cannot merge join lists")

	// ErrNoJoinFields is returned when a join without join fields is rendered.
	ErrNoJoinFields = errors.New("joinsql: join has no join fields")

	// ErrNotFound is returned when a node, edge or field cannot be resolved.
	ErrNotFound = errors.New("joinsql: not found")
)

// ArgumentNullError represents a nil argument passed where a value is required.
type ArgumentNullError struct {
	Param string
}

// Error returns the error string.
func (e *ArgumentNullError) Error() string {
	return fmt.Sprintf("joinsql: argument %q must not be nil", e.Param)
}

// Is reports whether the target error matches ErrArgumentNull.
func (e *ArgumentNullError) Is(err error) bool {
	return err == ErrArgumentNull
}

// NewArgumentNullError returns a new ArgumentNullError for the given parameter.
func NewArgumentNullError(param string) *ArgumentNullError {
	return &ArgumentNullError{Param: param}
}

// IsArgumentNull returns true if the error is an ArgumentNullError.
func IsArgumentNull(err error) bool {
	if err == nil {
		return false
	}
	var e *ArgumentNullError
	return errors.As(err, &e) || errors.Is(err, ErrArgumentNull)
}

// MergeError is returned when the join list of one source is merged into the
// join list of a source with a different name.
type MergeError struct {
	Source string // Root of the merged-in tree
	Target string // Root of the tree being merged into
}

// Error returns the error string.
func (e *MergeError) Error() string {
	return fmt.Sprintf("joinsql: cannot merge the joins of source %q into source %q: the sources are not the same", e.Source, e.Target)
}

// Is reports whether the target error matches ErrCannotMerge.
func (e *MergeError) Is(err error) bool {
	return err == ErrCannotMerge
}

// NewMergeError returns a new MergeError.
func NewMergeError(source, target string) *MergeError {
	return &MergeError{Source: source, Target: target}
}

// IsMergeError returns true if the error is a MergeError.
func IsMergeError(err error) bool {
	if err == nil {
		return false
	}
	var e *MergeError
	return errors.As(err, &e) || errors.Is(err, ErrCannotMerge)
}

// UnjoinedSourceError is returned when SQL is created for a join that has no
// join fields.
type UnjoinedSourceError struct {
	Source string // Name of the source owning the join
	Target string // Name of the joined source
}

// Error returns the error string.
func (e *UnjoinedSourceError) Error() string {
	return fmt.Sprintf("joinsql: SQL cannot be created for source %q because it has a join to %q without join fields; check how the join was built", e.Source, e.Target)
}

// Is reports whether the target error matches ErrNoJoinFields.
func (e *UnjoinedSourceError) Is(err error) bool {
	return err == ErrNoJoinFields
}

// NewUnjoinedSourceError returns a new UnjoinedSourceError.
func NewUnjoinedSourceError(source, target string) *UnjoinedSourceError {
	return &UnjoinedSourceError{Source: source, Target: target}
}

// IsUnjoinedSource returns true if the error is an UnjoinedSourceError.
func IsUnjoinedSource(err error) bool {
	if err == nil {
		return false
	}
	var e *UnjoinedSourceError
	return errors.As(err, &e) || errors.Is(err, ErrNoJoinFields)
}

// NotFoundError represents a lookup of an unknown node, edge or field.
type NotFoundError struct {
	label string
	name  string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("joinsql: %s %q not found", e.label, e.name)
}

// Is reports whether the target error matches ErrNotFound.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the kind of the missing item.
func (e *NotFoundError) Label() string {
	return e.label
}

// Name returns the name that was searched for.
func (e *NotFoundError) Name() string {
	return e.name
}

// NewNotFoundError returns a new NotFoundError, e.g. NewNotFoundError("edge", "pets").
func NewNotFoundError(label, name string) *NotFoundError {
	return &NotFoundError{label: label, name: name}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ValidationError represents an invalid value in a query definition.
type ValidationError struct {
	Name string // Definition or field name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("joinsql: validation failed for %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// QueryError wraps a failure to render or run the query of a source.
type QueryError struct {
	Source string // Root source of the query
	Op     string // Operation (e.g., "render", "query")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("joinsql: querying %s (%s): %v", e.Source, e.Op, e.Err)
	}
	return fmt.Sprintf("joinsql: querying %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(source, op string, err error) *QueryError {
	return &QueryError{Source: source, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "joinsql: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("joinsql: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
