package diag

import "fmt"

// ValidationError reports a raw input value that violates the domain
// constraint of its diagnostic kind. It is fatal: no partial result is
// returned alongside it.
type ValidationError struct {
	// Kind is the diagnostic whose constraint was violated.
	Kind Kind

	// Arg names the offending argument or parameter label.
	Arg string

	// Index is the position of the offending value in the input vector.
	Index int

	// Value is the offending value itself.
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("diag: %s value %g at %q[%d] violates constraint %s",
		e.Kind, e.Value, e.Arg, e.Index, e.Kind.constraint())
}

// ConfigurationError reports a lag count that is incompatible with the
// number of available iterations.
type ConfigurationError struct {
	// Arg names the offending argument, always "lags".
	Arg string

	// Lags is the requested max lag.
	Lags int

	// Iterations is the iteration count of the draws array.
	Iterations int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("diag: %s = %d requires more than %d iterations per chain, have %d",
		e.Arg, e.Lags, e.Lags+1, e.Iterations)
}
