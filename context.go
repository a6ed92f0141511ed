// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import "sort"

// Context is an immutable set of capabilities keyed by Token.
// The zero Context is empty. Every operation returns a new Context.
type Context struct {
	entries map[Token]any
}

// EmptyContext returns a Context with no capabilities.
func EmptyContext() Context { return Context{} }

// Len returns the number of capabilities in c.
func (c Context) Len() int { return len(c.entries) }

// Tokens returns the tokens of c ordered by key.
func (c Context) Tokens() []Token {
	out := make([]Token, 0, len(c.entries))
	for t := range c.entries {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Has reports whether c provides t.
func (c Context) Has(t Token) bool {
	_, ok := c.entries[t]
	return ok
}

// Merge returns the union of c and other. Capabilities of other shadow
// capabilities of c provided under the same token.
func (c Context) Merge(other Context) Context {
	if len(other.entries) == 0 {
		return c
	}
	if len(c.entries) == 0 {
		return other
	}
	m := make(map[Token]any, len(c.entries)+len(other.entries))
	for t, v := range c.entries {
		m[t] = v
	}
	for t, v := range other.entries {
		m[t] = v
	}
	return Context{entries: m}
}

// Provide returns c with t bound to v.
func Provide[T any](c Context, t *Tag[T], v T) Context {
	return c.with(t, v)
}

// Find returns the capability bound to t in c.
func Find[T any](c Context, t *Tag[T]) (T, bool) {
	v, ok := c.entries[t]
	if !ok {
		var zero T
		return zero, false
	}
	if v == nil {
		var zero T
		return zero, true
	}
	return v.(T), true
}

func (c Context) get(t Token) (any, bool) {
	v, ok := c.entries[t]
	return v, ok
}

func (c Context) with(t Token, v any) Context {
	m := make(map[Token]any, len(c.entries)+1)
	for k, e := range c.entries {
		m[k] = e
	}
	m[t] = v
	return Context{entries: m}
}
