// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

// Token identifies a capability in a Context.
// Tokens compare by identity: two tokens created with the same key are
// different capabilities.
type Token interface {
	Key() string
	capabilityToken()
}

// Tag is the token of a capability of type T.
type Tag[T any] struct {
	key string
}

// NewTag creates a capability token for values of type T.
// key names the capability in logs and errors; it is not used for lookup.
func NewTag[T any](key string) *Tag[T] {
	return &Tag[T]{key: key}
}

// Key returns the capability name.
func (t *Tag[T]) Key() string { return t.key }

func (t *Tag[T]) String() string { return "Tag(" + t.key + ")" }

func (*Tag[T]) capabilityToken() {}

// Get is the effect that requires the capability and succeeds with it.
// It fails with *ServiceNotFoundError when the runtime does not provide t.
func (t *Tag[T]) Get() Effect[T] {
	return Perform[serviceOp[T], T](serviceOp[T]{tag: t})
}

// IsToken reports whether v is a capability token.
// Discovery uses it to tell capability bindings from ordinary DI bindings.
func IsToken(v any) bool {
	_, ok := v.(Token)
	return ok
}

// serviceOp reads a capability from the run's Context.
type serviceOp[T any] struct {
	Phantom[T]
	tag *Tag[T]
}

func (o serviceOp[T]) DispatchService(env *Context) (Resumed, bool) {
	v, ok := env.get(o.tag)
	if !ok {
		return &ServiceNotFoundError{Key: o.tag.key}, false
	}
	return v, true
}

// Use requires the capability t and continues with f.
func Use[T, A any](t *Tag[T], f func(T) Effect[A]) Effect[A] {
	return FlatMap(t.Get(), f)
}

// withServiceOp runs a body against the run's Context extended by one capability.
type withServiceOp[A any] struct {
	Phantom[A]
	token Token
	value any
	body  Effect[A]
}

func (o withServiceOp[A]) DispatchRun(d *driver) (Resumed, bool) {
	inner := *d
	inner.env = d.env.with(o.token, o.value)
	e := drive(&inner, o.body)
	if !e.isRight {
		return e.left, false
	}
	return e.right, true
}

// WithService runs m with the capability t bound to value, shadowing any
// binding of t in the runtime.
func WithService[T, A any](t *Tag[T], value T, m Effect[A]) Effect[A] {
	return Perform[withServiceOp[A], A](withServiceOp[A]{token: t, value: value, body: m})
}
