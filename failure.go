// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"fmt"
)

// Failure is the error returned for an effect that failed without recovery.
// Cause is the failure value exactly as the effect raised it.
type Failure struct {
	Cause any
}

func newFailure(cause any) *Failure {
	if f, ok := cause.(*Failure); ok {
		return f
	}
	return &Failure{Cause: cause}
}

// Error renders the cause: a string cause is its own message.
func (f *Failure) Error() string {
	switch c := f.Cause.(type) {
	case error:
		return c.Error()
	case string:
		return c
	case fmt.Stringer:
		return c.String()
	}
	return fmt.Sprint(f.Cause)
}

// Unwrap returns the cause when it is an error.
func (f *Failure) Unwrap() error {
	if err, ok := f.Cause.(error); ok {
		return err
	}
	return nil
}

// AsFailure reports whether err carries a *Failure and returns it.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Defect is the error returned for an effect that panicked.
// Defects are not failures: error mapping never sees them.
type Defect struct {
	Value any
}

func (d *Defect) Error() string {
	return fmt.Sprintf("kontrt: defect: %v", d.Value)
}

// Unwrap returns the panic value when it is an error.
func (d *Defect) Unwrap() error {
	if err, ok := d.Value.(error); ok {
		return err
	}
	return nil
}

type unhandledOperationPanic struct {
	op Operation
}

func (p *unhandledOperationPanic) Error() string {
	return fmt.Sprintf("kontrt: unhandled operation %T", p.op)
}

// failOp aborts the computation with a failure cause.
type failOp[A any] struct {
	Phantom[A]
	cause any
}

// DispatchFailure short-circuits: the driver returns Left(cause).
func (o failOp[A]) DispatchFailure() (Resumed, bool) {
	return o.cause, false
}

// Fail is the effect that fails with cause. The continuation is never called.
func Fail[A any](cause any) Effect[A] {
	return Perform[failOp[A], A](failOp[A]{cause: cause})
}

// attemptOp runs a body and resumes with its outcome.
type attemptOp[A any] struct {
	Phantom[Either[any, A]]
	body Effect[A]
}

func (o attemptOp[A]) DispatchRun(d *driver) (Resumed, bool) {
	return drive(d, o.body), true
}

// Attempt runs m and succeeds with its outcome: Right on success, Left with
// the failure cause otherwise. Attempt itself never fails.
func Attempt[A any](m Effect[A]) Effect[Either[any, A]] {
	return Perform[attemptOp[A], Either[any, A]](attemptOp[A]{body: m})
}

// asyncOp calls a blocking function with the run's context.
type asyncOp[A any] struct {
	Phantom[A]
	f func(context.Context) (A, error)
}

func (o asyncOp[A]) DispatchRun(d *driver) (Resumed, bool) {
	if err := d.ctx.Err(); err != nil {
		return err, false
	}
	a, err := o.f(d.ctx)
	if err != nil {
		return err, false
	}
	return a, true
}

// Async is the effect that calls f with the context of the run.
// A non-nil error from f becomes the failure cause; an already cancelled
// context fails with the context's error without calling f.
func Async[A any](f func(context.Context) (A, error)) Effect[A] {
	return Perform[asyncOp[A], A](asyncOp[A]{f: f})
}

// Try is the effect that calls f and fails with its error, if any.
func Try[A any](f func() (A, error)) Effect[A] {
	return func(k func(A) Resumed) Resumed {
		a, err := f()
		if err != nil {
			return Fail[A](err)(k)
		}
		return k(a)
	}
}

// FromEither succeeds with a Right value and fails with a Left value.
func FromEither[A any](e Either[any, A]) Effect[A] {
	if e.isRight {
		return Pure(e.right)
	}
	return Fail[A](e.left)
}

// CatchAll runs m and, if it fails, continues with h applied to the cause.
func CatchAll[A any](m Effect[A], h func(cause any) Effect[A]) Effect[A] {
	return FlatMap(Attempt(m), func(e Either[any, A]) Effect[A] {
		if e.isRight {
			return Pure(e.right)
		}
		return h(e.left)
	})
}

// OrElse runs m and falls back to alt if it fails.
func OrElse[A any](m Effect[A], alt Effect[A]) Effect[A] {
	return CatchAll(m, func(any) Effect[A] { return alt })
}
