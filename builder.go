// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"fmt"

	"go.uber.org/zap"
)

// Binding is one registration enumerated by the host's DI container.
type Binding struct {
	Token any
	Name  string
}

// Discovery enumerates the bindings registered in the host.
type Discovery interface {
	Providers() []Binding
}

// LookupOptions configures a DI lookup.
type LookupOptions struct {
	// Strict asks the container to fail for unregistered tokens.
	// Non-strict lookups return nil instead.
	Strict bool
}

// Lookup resolves a token to the value bound to it in the host.
type Lookup interface {
	Get(token any, opts LookupOptions) (any, error)
}

// Builder assembles the layer of a runtime from explicit providers and,
// optionally, providers discovered in the host.
type Builder struct {
	discovery Discovery
	lookup    Lookup
	opts      Options
	log       *zap.Logger
}

// NewBuilder returns a Builder. discovery and lookup are only used when
// opts.AutoServiceDiscovery is set and may be nil otherwise.
func NewBuilder(discovery Discovery, lookup Lookup, opts Options) *Builder {
	return &Builder{
		discovery: discovery,
		lookup:    lookup,
		opts:      opts,
		log:       opts.logger(),
	}
}

// Layers returns the providers in merge order: discovered first, explicit
// last. Discovery is called at most once per call.
func (b *Builder) Layers() ([]Layer, error) {
	var discovered []Layer
	if b.opts.AutoServiceDiscovery {
		var err error
		if discovered, err = b.discover(); err != nil {
			return nil, err
		}
	}
	out := make([]Layer, 0, len(discovered)+len(b.opts.Services))
	out = append(out, discovered...)
	out = append(out, b.opts.Services...)
	return out, nil
}

func (b *Builder) discover() ([]Layer, error) {
	if b.discovery == nil || b.lookup == nil {
		return nil, ErrNoDiscovery
	}
	var out []Layer
	for _, binding := range b.discovery.Providers() {
		if !IsToken(binding.Token) {
			continue
		}
		key := binding.Token.(Token).Key()
		v, err := b.lookup.Get(binding.Token, LookupOptions{Strict: false})
		l, ok := asLayer(v)
		if err != nil || !ok {
			if b.opts.StrictDiscovery {
				if err == nil {
					err = fmt.Errorf("bound to %T", v)
				}
				return nil, fmt.Errorf("%w %s: %w", ErrUnresolvedProvider, key, err)
			}
			b.log.Debug("skipping unresolved provider",
				zap.String("token", key),
				zap.String("binding", binding.Name),
				zap.Error(err),
			)
			continue
		}
		if l.name == "" {
			l.name = key
		}
		out = append(out, l)
	}
	b.log.Debug("discovered providers", zap.Int("count", len(out)))
	return out, nil
}

func asLayer(v any) (Layer, bool) {
	switch l := v.(type) {
	case Layer:
		return l, true
	case *Layer:
		if l != nil {
			return *l, true
		}
	}
	return Layer{}, false
}

// Layer folds the providers into one layer. Each provider sees the
// capabilities of the providers before it and shadows them.
func (b *Builder) Layer() (Layer, error) {
	layers, err := b.Layers()
	if err != nil {
		return Layer{}, err
	}
	acc := EmptyLayer()
	for _, l := range layers {
		acc = ProvideMerge(acc, l)
	}
	return acc, nil
}

// Runtime returns an unbuilt runtime for the folded layer.
func (b *Builder) Runtime(opts ...RuntimeOption) (*Runtime, error) {
	l, err := b.Layer()
	if err != nil {
		return nil, err
	}
	return NewRuntime(l, append([]RuntimeOption{WithLogger(b.log)}, opts...)...), nil
}

// Build is shorthand for NewBuilder(discovery, lookup, opts).Runtime().
func Build(discovery Discovery, lookup Lookup, opts Options) (*Runtime, error) {
	return NewBuilder(discovery, lookup, opts).Runtime()
}
