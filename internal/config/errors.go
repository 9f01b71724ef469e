package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common configuration errors.
var (
	// ErrNotResolved is returned when a domain view is requested from a Manager
	// that has not successfully resolved its configuration.
	ErrNotResolved = errors.New("configuration not resolved")

	// ErrNotPostgres is returned when a PostgreSQL pool configuration is
	// requested for a database URL with a different scheme.
	ErrNotPostgres = errors.New("database url is not a postgres url")
)

// FileReadError indicates that an override file was specified but could not be
// read or parsed. It is fatal in every environment.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read override file %q: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// UnknownEnvironmentError indicates that the environment selector holds a
// value outside the recognized set. It is fatal in every environment.
type UnknownEnvironmentError struct {
	Value string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("unknown environment %q in %s: must be one of development, testing, production",
		e.Value, EnvironmentKey)
}

// CoercionError indicates that a raw string could not be converted to the
// option's declared type. During resolution it is reported as a
// ValidationError with reason ReasonTypeCoercion.
type CoercionError struct {
	Key   string
	Type  ValueType
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("%s: cannot convert %q to %s: %v", e.Key, e.Value, e.Type, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Reason classifies a ValidationError.
type Reason string

// Validation failure reasons.
const (
	ReasonMissingRequired  Reason = "missing_required"
	ReasonTypeCoercion     Reason = "type_coercion_failed"
	ReasonValidatorRejects Reason = "validator_rejected"
)

// ValidationError describes one configuration problem found during resolution.
type ValidationError struct {
	Key     string
	Reason  Reason
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Key, e.Message, e.Reason)
}

// ValidationReport is the complete set of problems found in one resolution
// pass. It is never partial: either every option was checked or resolution
// stopped before validation with a different error.
type ValidationReport struct {
	Errors []ValidationError
}

// newReport sorts errs by key then reason and drops exact duplicates.
func newReport(errs []ValidationError) *ValidationReport {
	sorted := make([]ValidationError, len(errs))
	copy(sorted, errs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Key != sorted[j].Key {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Reason < sorted[j].Reason
	})

	deduped := sorted[:0]
	for i, e := range sorted {
		if i > 0 && e == sorted[i-1] {
			continue
		}
		deduped = append(deduped, e)
	}
	return &ValidationReport{Errors: deduped}
}

// Empty reports whether no problems were found.
func (r *ValidationReport) Empty() bool {
	return r == nil || len(r.Errors) == 0
}

// Has reports whether the report contains a problem for key with the given reason.
func (r *ValidationReport) Has(key string, reason Reason) bool {
	if r == nil {
		return false
	}
	for _, e := range r.Errors {
		if e.Key == key && e.Reason == reason {
			return true
		}
	}
	return false
}

// Keys returns the distinct keys mentioned in the report, sorted.
func (r *ValidationReport) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if len(keys) == 0 || keys[len(keys)-1] != e.Key {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Error lists every problem, one per line.
func (r *ValidationReport) Error() string {
	if r.Empty() {
		return "configuration validation passed"
	}
	if len(r.Errors) == 1 {
		return "configuration validation failed: " + r.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:", len(r.Errors))
	for _, e := range r.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual ValidationErrors to errors.As.
func (r *ValidationReport) Unwrap() []error {
	if r == nil {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errs
}
