// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import "context"

// driver holds the state a run dispatches operations against.
// Nested runs (Attempt, WithService) share ctx and notes.
type driver struct {
	ctx   context.Context
	env   Context
	notes *[]Annotation
}

// drive evaluates m to completion, dispatching each suspension.
// A short-circuiting dispatch ends the run with Left.
func drive[A any](d *driver, m Effect[A]) Either[any, A] {
	result := m(toResumed[A])
	for {
		s, ok := result.(*suspension)
		if !ok {
			break
		}
		v, resume := d.dispatch(s.op)
		if !resume {
			releaseSuspension(s)
			return Left[any, A](v)
		}
		result = s.resume(s, v)
	}
	if result == nil {
		var zero A
		return Right[any](zero)
	}
	return result.(Either[any, A])
}

// dispatch routes op by structural interface assertion.
// Dispatch order: service → annotation → failure → run.
func (d *driver) dispatch(op Operation) (Resumed, bool) {
	if sop, ok := op.(interface {
		DispatchService(env *Context) (Resumed, bool)
	}); ok {
		return sop.DispatchService(&d.env)
	}
	if aop, ok := op.(interface {
		DispatchAnnotation(notes *[]Annotation) (Resumed, bool)
	}); ok {
		return aop.DispatchAnnotation(d.notes)
	}
	if fop, ok := op.(interface{ DispatchFailure() (Resumed, bool) }); ok {
		return fop.DispatchFailure()
	}
	if rop, ok := op.(interface {
		DispatchRun(d *driver) (Resumed, bool)
	}); ok {
		return rop.DispatchRun(d)
	}
	unhandledOperation(op)
	return nil, false
}

// evaluate runs m against env without a runtime.
// Panics propagate to the caller.
func evaluate[A any](ctx context.Context, env Context, m Effect[A]) (Either[any, A], []Annotation) {
	var notes []Annotation
	d := &driver{ctx: ctx, env: env, notes: &notes}
	res := drive(d, m)
	return res, notes
}
