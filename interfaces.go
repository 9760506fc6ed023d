package testgen

import "io"

// TestCase is the contract every generated object must satisfy.
//
// WriteInput and WriteAnswer must be deterministic given the instance's own
// data: the seeded builder call already fixed everything there is to know,
// and the writers perform no further randomness.
type TestCase interface {
	// WriteInput writes the test case input data to w.
	WriteInput(w io.Writer) error

	// WriteAnswer writes the expected answer to w. It also receives a
	// reader over the already-written input file, so an answer can be
	// produced by feeding the input to a reference solution.
	WriteAnswer(w io.Writer, input io.Reader) error

	// Validate is a self-check hook, called after both files have been
	// written. inputPath points at the written input file so the check can
	// inspect it rather than only in-memory state. A non-nil error aborts
	// the whole generation run.
	Validate(inputPath string) error
}

// BaseTestCase provides a no-op Validate for test cases with nothing to
// check. Embed it in a concrete test case and override as needed.
type BaseTestCase struct{}

// Validate always succeeds
func (BaseTestCase) Validate(inputPath string) error { return nil }

// Builder is a generator callable. It receives the deterministic random
// source for its invocation and the resolved parameter assignment, and
// returns a fresh TestCase.
//
// Hard contract, not enforced: the builder must not use any randomness
// source outside the provided one, or reproducibility breaks.
type Builder func(rnd *Rand, params Assignment) (TestCase, error)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}
