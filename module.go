// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Host is the DI container a module registers into.
type Host interface {
	Discovery
	Lookup
}

// ExportKey names a value a module exports to the host.
type ExportKey string

const (
	RuntimeKey ExportKey = "kontrt.runtime"
	ConfigKey  ExportKey = "kontrt.config"
)

// Export is one value a module exports to the host.
type Export struct {
	Key   ExportKey
	Value any
}

// Module is one registration: a runtime with its interceptor and validator.
type Module struct {
	global      bool
	rt          *Runtime
	cfg         Config
	interceptor *Interceptor
	validator   *Validator
	log         *zap.Logger
}

// ForRoot registers the process-wide module.
// Values of ctx are visible to the module's layers; its cancellation is not.
func ForRoot(ctx context.Context, host Host, opts Options) (*Module, error) {
	return register(ctx, host, opts, true)
}

// ForFeature registers a module scoped to one feature.
// opts.Services must be set.
func ForFeature(ctx context.Context, host Host, opts Options) (*Module, error) {
	if opts.Services == nil {
		return nil, ErrMissingServices
	}
	return register(ctx, host, opts, false)
}

func register(ctx context.Context, host Host, opts Options, global bool) (*Module, error) {
	var (
		discovery Discovery
		lookup    Lookup
	)
	if host != nil {
		discovery, lookup = host, host
	}
	log := opts.logger().With(zap.Bool("global", global))
	opts.Logger = log
	rt, err := NewBuilder(discovery, lookup, opts).Runtime(WithBaseContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("kontrt: register module: %w", err)
	}
	if opts.EagerBuild {
		if err := rt.Warm(ctx); err != nil {
			return nil, errors.Join(err, rt.Dispose(ctx))
		}
	}
	cfg := opts.Config()
	m := &Module{
		global:      global,
		rt:          rt,
		cfg:         cfg,
		interceptor: NewInterceptor(rt, cfg, log),
		validator:   NewValidator(cfg.Validation, log),
		log:         log,
	}
	log.Info("module registered", zap.String("runtime", rt.ID()), zap.Int("services", len(opts.Services)))
	return m, nil
}

// Global reports whether m was registered with ForRoot.
func (m *Module) Global() bool { return m.global }

// Runtime returns the module's runtime.
func (m *Module) Runtime() *Runtime { return m.rt }

// Config returns the module's mapping configuration.
func (m *Module) Config() Config { return m.cfg }

// Interceptor returns the module's effect interceptor.
func (m *Module) Interceptor() *Interceptor { return m.interceptor }

// Validator returns the module's parameter validator.
func (m *Module) Validator() *Validator { return m.validator }

// Logger returns the module's logger.
func (m *Module) Logger() *zap.Logger { return m.log }

// Exports returns the values the module provides to the host.
func (m *Module) Exports() []Export {
	return []Export{
		{Key: RuntimeKey, Value: m.rt},
		{Key: ConfigKey, Value: m.cfg},
	}
}

// Close disposes the module's runtime.
func (m *Module) Close(ctx context.Context) error {
	return m.rt.Dispose(ctx)
}

// CloseAll closes modules concurrently and joins their errors.
func CloseAll(ctx context.Context, modules ...*Module) error {
	errs := make([]error, len(modules))
	var g errgroup.Group
	for i, m := range modules {
		if m == nil {
			continue
		}
		g.Go(func() error {
			errs[i] = m.Close(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
