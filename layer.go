// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Layer is an immutable recipe for zero or more capabilities.
//
// Building a layer receives the capabilities built before it and returns
// the capabilities it provides. Resources acquired while building register
// their release on the build Scope. The zero Layer provides nothing.
type Layer struct {
	name  string
	build func(ctx context.Context, scope *Scope, in Context) (Context, error)
}

// Name returns the layer's name for logs.
func (l Layer) Name() string {
	if l.name == "" {
		return "empty"
	}
	return l.name
}

func (l Layer) String() string { return "Layer(" + l.Name() + ")" }

// Named returns l renamed to name.
func (l Layer) Named(name string) Layer {
	l.name = name
	return l
}

// Build constructs the capabilities of l given the capabilities in.
func (l Layer) Build(ctx context.Context, scope *Scope, in Context) (Context, error) {
	if l.build == nil {
		return EmptyContext(), nil
	}
	return l.build(ctx, scope, in)
}

// EmptyLayer returns the layer that provides nothing.
func EmptyLayer() Layer { return Layer{} }

// Succeed returns the layer that provides t bound to value.
func Succeed[T any](t *Tag[T], value T) Layer {
	return Layer{
		name: t.key,
		build: func(context.Context, *Scope, Context) (Context, error) {
			return Provide(EmptyContext(), t, value), nil
		},
	}
}

// FromEffect returns the layer that provides t bound to the result of m.
// m runs against the capabilities built before the layer; a failure of m
// fails the build.
func FromEffect[T any](t *Tag[T], m Effect[T]) Layer {
	return Layer{
		name: t.key,
		build: func(ctx context.Context, _ *Scope, in Context) (Context, error) {
			res, _ := evaluate(ctx, in, m)
			if !res.isRight {
				return Context{}, fmt.Errorf("provide %s: %w", t.key, newFailure(res.left))
			}
			return Provide(EmptyContext(), t, res.right), nil
		},
	}
}

// Scoped returns the layer that provides t bound to an acquired resource.
// release runs when the runtime holding the capability is disposed.
// acquire receives the capabilities built before the layer.
func Scoped[T any](
	t *Tag[T],
	acquire func(ctx context.Context, in Context) (T, error),
	release func(T) error,
) Layer {
	return Layer{
		name: t.key,
		build: func(ctx context.Context, scope *Scope, in Context) (Context, error) {
			v, err := acquire(ctx, in)
			if err != nil {
				return Context{}, fmt.Errorf("acquire %s: %w", t.key, err)
			}
			if release != nil {
				if err := scope.AddFinalizer(func() error { return release(v) }); err != nil {
					return Context{}, errors.Join(err, release(v))
				}
			}
			return Provide(EmptyContext(), t, v), nil
		},
	}
}

// Merge returns the layer that builds every layer against the same input
// and provides the union of their capabilities. Later layers shadow
// earlier ones.
func Merge(layers ...Layer) Layer {
	layers = append([]Layer(nil), layers...)
	names := make([]string, 0, len(layers))
	for _, l := range layers {
		names = append(names, l.Name())
	}
	return Layer{
		name: "merge(" + strings.Join(names, ",") + ")",
		build: func(ctx context.Context, scope *Scope, in Context) (Context, error) {
			out := EmptyContext()
			for _, l := range layers {
				c, err := l.Build(ctx, scope, in)
				if err != nil {
					return Context{}, err
				}
				out = out.Merge(c)
			}
			return out, nil
		},
	}
}

// ProvideMerge returns the layer that builds self, then builds that with
// self's capabilities added to its input. The result provides the
// capabilities of both; those of that shadow those of self.
func ProvideMerge(self, that Layer) Layer {
	if self.build == nil {
		return that
	}
	if that.build == nil {
		return self
	}
	return Layer{
		name: self.Name() + "+" + that.Name(),
		build: func(ctx context.Context, scope *Scope, in Context) (Context, error) {
			first, err := self.Build(ctx, scope, in)
			if err != nil {
				return Context{}, err
			}
			second, err := that.Build(ctx, scope, in.Merge(first))
			if err != nil {
				return Context{}, err
			}
			return first.Merge(second), nil
		},
	}
}
