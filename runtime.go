// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runtime runs effects against the capabilities of a Layer.
//
// The layer is built lazily, exactly once, by the first run or Warm.
// Layers are built with the runtime's own context, which lives until
// Dispose: the context of the run that triggers the build can abort the
// build but is never handed to acquired resources. A build failure is
// remembered and returned by every later run, unless it was caused by the
// caller's context. Dispose releases the resources acquired by the build,
// exactly once.
//
// A Runtime is safe for concurrent use.
type Runtime struct {
	id     string
	layer  Layer
	log    *zap.Logger
	base   context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	built    bool
	env      Context
	err      error
	scope    *Scope
	closing  bool
	inflight sync.WaitGroup

	disposed *oneShot
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger of a Runtime.
func WithLogger(log *zap.Logger) RuntimeOption {
	return func(r *Runtime) {
		if log != nil {
			r.log = log
		}
	}
}

// WithBaseContext sets the parent of the runtime's lifetime context.
// Cancellation of ctx is ignored; its values are visible to layers.
func WithBaseContext(ctx context.Context) RuntimeOption {
	return func(r *Runtime) {
		if ctx != nil {
			r.base = context.WithoutCancel(ctx)
		}
	}
}

// NewRuntime returns an unbuilt runtime for layer.
func NewRuntime(layer Layer, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		id:       uuid.NewString(),
		layer:    layer,
		log:      zap.NewNop(),
		base:     context.Background(),
		disposed: newOneShot(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ctx, r.cancel = context.WithCancel(r.base)
	r.log = r.log.With(zap.String("runtime", r.id))
	return r
}

// ID returns the runtime's unique identifier.
func (r *Runtime) ID() string { return r.id }

// Layer returns the layer the runtime builds.
func (r *Runtime) Layer() Layer { return r.layer }

// Warm builds the runtime's capabilities now instead of on first run.
func (r *Runtime) Warm(ctx context.Context) error {
	if _, err := r.enter(ctx); err != nil {
		return err
	}
	r.exit()
	return nil
}

// Context returns the built capabilities, building them if needed.
func (r *Runtime) Context(ctx context.Context) (Context, error) {
	env, err := r.enter(ctx)
	if err != nil {
		return Context{}, err
	}
	r.exit()
	return env, nil
}

// Disposed reports whether Dispose was called.
func (r *Runtime) Disposed() bool { return r.disposed.claimed() }

// Dispose stops accepting runs, waits for in-flight runs until ctx is done
// and releases the resources acquired by the build in reverse order.
//
// Dispose is idempotent: concurrent and later calls wait for the first
// call and return its result.
func (r *Runtime) Dispose(ctx context.Context) error {
	if !r.disposed.claim() {
		return r.disposed.wait(ctx)
	}

	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(drained)
	}()
	var waitErr error
	select {
	case <-drained:
	case <-ctx.Done():
		waitErr = fmt.Errorf("kontrt: dispose with runs in flight: %w", ctx.Err())
		r.log.Warn("disposing with runs in flight", zap.Error(ctx.Err()))
	}

	r.mu.Lock()
	scope := r.scope
	r.scope = nil
	cancel := r.cancel
	r.mu.Unlock()

	var closeErr error
	if scope != nil {
		closeErr = scope.Close()
	}
	cancel()
	err := errors.Join(waitErr, closeErr)
	if err != nil {
		r.log.Error("runtime disposed with errors", zap.Error(err))
	} else {
		r.log.Debug("runtime disposed")
	}
	r.disposed.finish(err)
	return err
}

// enter admits a run, building the capabilities on first use.
// Every successful enter must be paired with exit.
func (r *Runtime) enter(ctx context.Context) (Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closing {
		return Context{}, ErrDisposed
	}
	if !r.built {
		if err := r.buildLocked(ctx); err != nil {
			return Context{}, err
		}
	}
	if r.err != nil {
		return Context{}, r.err
	}
	r.inflight.Add(1)
	return r.env, nil
}

func (r *Runtime) exit() { r.inflight.Done() }

func (r *Runtime) buildLocked(ctx context.Context) error {
	start := time.Now()
	scope := NewScope()
	stop := context.AfterFunc(ctx, r.cancel)
	env, err := buildLayer(r.ctx, r.layer, scope)
	if !stop() && err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if cerr := scope.Close(); cerr != nil {
			r.log.Warn("release after failed build", zap.Error(cerr))
		}
		if cause := ctx.Err(); cause != nil {
			// The lifetime context was cancelled with the caller; renew it
			// for the next attempt.
			r.cancel()
			r.ctx, r.cancel = context.WithCancel(r.base)
			r.log.Debug("build interrupted", zap.Error(err))
			return cause
		}
		r.built = true
		r.err = &BuildError{Runtime: r.id, Err: err}
		r.log.Error("build failed", zap.String("layer", r.layer.Name()), zap.Error(err))
		return nil
	}
	r.built = true
	r.env = env
	r.scope = scope
	r.log.Debug("runtime built",
		zap.String("layer", r.layer.Name()),
		zap.Int("capabilities", env.Len()),
		zap.Int("finalizers", scope.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// buildLayer builds l, turning a panic into a *Defect.
func buildLayer(ctx context.Context, l Layer, scope *Scope) (env Context, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &Defect{Value: v}
		}
	}()
	return l.Build(ctx, scope, EmptyContext())
}

// execute runs m once on r and returns its outcome with the annotations
// recorded by the run. err is non-nil when m could not run to an outcome:
// the runtime was disposed, its build failed, or m panicked.
func execute[A any](ctx context.Context, r *Runtime, m Effect[A]) (res Either[any, A], notes []Annotation, err error) {
	env, err := r.enter(ctx)
	if err != nil {
		return res, nil, err
	}
	defer r.exit()
	defer func() {
		if v := recover(); v != nil {
			err = &Defect{Value: v}
		}
	}()
	d := &driver{ctx: ctx, env: env, notes: &notes}
	res = drive(d, m)
	return res, notes, nil
}

// Run runs m on r and returns its value.
// An unrecovered failure is returned as *Failure, a panic as *Defect.
func Run[A any](ctx context.Context, r *Runtime, m Effect[A]) (A, error) {
	res, _, err := execute(ctx, r, m)
	if err != nil {
		var zero A
		return zero, err
	}
	if !res.isRight {
		var zero A
		return zero, newFailure(res.left)
	}
	return res.right, nil
}

// RunEither runs m on r and returns its outcome instead of failing.
// The error result is reserved for runs that could not reach an outcome.
func RunEither[A any](ctx context.Context, r *Runtime, m Effect[A]) (Either[any, A], error) {
	res, _, err := execute(ctx, r, m)
	return res, err
}

// RunAny runs a type-erased effect on r.
func (r *Runtime) RunAny(ctx context.Context, m AnyEffect) (any, error) {
	return Run(ctx, r, m.Erase())
}
