// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

// unhandledOperation panics with a descriptive message for operations the
// driver does not know. The panic surfaces from Run as a *Defect.
//
//go:noinline
func unhandledOperation(op Operation) {
	panic(&unhandledOperationPanic{op: op})
}

// Operation is the interface for effect operations seen by the driver.
type Operation any

// Resumed is the interface for values flowing through suspension and resumption.
// Effect[A] continuations return Resumed.
type Resumed any

// Op is the F-bounded interface for effect operations.
// The phantom OpResult method ties an operation to the type it resumes with.
type Op[O Op[O, A], A any] interface {
	OpResult() A
}

// Phantom is an embeddable zero-size type that provides the [Op] result marker.
type Phantom[A any] struct{}

// OpResult implements the phantom type marker for [Op].
func (Phantom[A]) OpResult() A { panic("phantom") }

// Effect is an inert description of a computation that produces an A.
//
// An Effect does nothing until a [Runtime] drives it. It may require
// capabilities ([Tag.Get]), fail ([Fail]) or suspend on I/O ([Async]).
// The same Effect value can be run any number of times.
type Effect[A any] func(k func(A) Resumed) Resumed

// AnyEffect is the type-erased view of an effect description.
// Every Effect[A] satisfies it; detection of effect descriptions goes through
// this method set, never through concrete types.
type AnyEffect interface {
	Erase() Effect[any]
}

// Erase forgets the result type of m.
func (m Effect[A]) Erase() Effect[any] {
	return func(k func(any) Resumed) Resumed {
		return m(func(a A) Resumed { return k(a) })
	}
}

// IsEffect reports whether v is an effect description.
func IsEffect(v any) bool {
	_, ok := v.(AnyEffect)
	return ok
}

// resumeOperation resumes a suspension whose continuation expects an A.
// A nil resume value resumes with the zero A.
func resumeOperation[A any](s *suspension, v Resumed) Resumed {
	k := s.k.(func(A) Resumed)
	releaseSuspension(s)
	if v == nil {
		var zero A
		return k(zero)
	}
	return k(v.(A))
}

// Perform suspends the computation on op.
// The driver dispatches op and resumes with its answer, or short-circuits.
func Perform[O Op[O, A], A any](op O) Effect[A] {
	return func(k func(A) Resumed) Resumed {
		s := acquireSuspension()
		s.op = op
		s.k = k
		s.resume = resumeOperation[A]
		return s
	}
}

// toResumed is the terminal continuation used by the driver.
func toResumed[A any](a A) Resumed { return Right[any](a) }
