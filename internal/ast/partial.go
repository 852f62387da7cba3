package ast

// PartialState discriminates the three outcomes a well-formedness
// pass can produce for a grammar.
type PartialState int

const (
	// StateValue means the pass completed with no errors.
	StateValue PartialState = iota
	// StateFake means errors were reported but a degraded, usable
	// payload was still produced.
	StateFake
	// StateNothing means the pass is unusable; downstream must not run.
	StateNothing
)

// Partial is a three-valued result: Value(x) | Fake(x) | Nothing.
// Nothing carries no payload: it means the result is fatal and
// downstream stages must not run.
type Partial[T any] struct {
	state   PartialState
	payload T
}

// Value wraps a clean result.
func Value[T any](x T) Partial[T] { return Partial[T]{state: StateValue, payload: x} }

// Fake wraps a degraded-but-usable result.
func Fake[T any](x T) Partial[T] { return Partial[T]{state: StateFake, payload: x} }

// Nothing builds a fatal, payload-less result.
func Nothing[T any]() Partial[T] { return Partial[T]{state: StateNothing} }

func (p Partial[T]) State() PartialState { return p.state }
func (p Partial[T]) IsNothing() bool     { return p.state == StateNothing }
func (p Partial[T]) IsFake() bool        { return p.state == StateFake }
func (p Partial[T]) IsValue() bool       { return p.state == StateValue }

// Get returns the payload and whether it is usable (Value or Fake).
// It is the caller's job to check ok before trusting the payload for
// anything beyond best-effort diagnostics.
func (p Partial[T]) Get() (T, bool) {
	return p.payload, p.state != StateNothing
}

// MapPartial transforms the payload while preserving the Value/Fake/
// Nothing discriminant.
func MapPartial[T, U any](p Partial[T], f func(T) U) Partial[U] {
	switch p.state {
	case StateNothing:
		return Nothing[U]()
	case StateFake:
		return Fake(f(p.payload))
	default:
		return Value(f(p.payload))
	}
}
