// Package units implements the loaders for each CFTI unit kind (jig,
// logger, interface, trigger, test, scenario), one file per kind, mirroring
// cfti::types::{jig,logger,interface,trigger,test,scenario}.
package units

// Outcome distinguishes the three ways a unit file load can end: the unit
// file does not apply to this run and should be silently skipped, the unit
// file applies but failed to load and a warning should be logged, or the
// unit loaded successfully. This is the Go rendering of the original's
// `Option<Result<T, E>>` return convention (spec.md §9): Rust's outer
// Option carries "doesn't apply here" and the inner Result carries
// "applies but is broken" — collapsing that into a single bool+error would
// lose the distinction between the two failure modes.
type Outcome int

const (
	Skip Outcome = iota
	Failed
	Loaded
)

// Result is a loader's three-valued return: Skip means "not applicable,
// say nothing"; Failed means "applicable but broken, warn and move on";
// Loaded carries the constructed unit.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

func Skipped[T any]() Result[T] {
	return Result[T]{Outcome: Skip}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{Outcome: Failed, Err: err}
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Outcome: Loaded, Value: v}
}
