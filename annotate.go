// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

// Annotation is a key/value pair recorded by a running effect.
// The interceptor logs the annotations of a run together with its outcome.
type Annotation struct {
	Key   string
	Value any
}

// annotateOp appends an annotation to the run's output.
type annotateOp struct {
	Phantom[struct{}]
	note Annotation
}

func (o annotateOp) DispatchAnnotation(notes *[]Annotation) (Resumed, bool) {
	*notes = append(*notes, o.note)
	return struct{}{}, true
}

// Annotate is the effect that records key=value on the current run.
// Annotations survive failure of the rest of the run.
func Annotate(key string, value any) Effect[struct{}] {
	return Perform[annotateOp, struct{}](annotateOp{note: Annotation{Key: key, Value: value}})
}

// Annotated records key=value and continues with m.
func Annotated[A any](key string, value any, m Effect[A]) Effect[A] {
	return Then(Annotate(key, value), m)
}
