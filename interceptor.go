// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Interceptor runs effect descriptions returned by handlers.
type Interceptor struct {
	rt  *Runtime
	cfg Config
	log *zap.Logger
}

// NewInterceptor returns an Interceptor that runs effects on rt and maps
// their outcome with cfg.
func NewInterceptor(rt *Runtime, cfg Config, log *zap.Logger) *Interceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interceptor{rt: rt, cfg: cfg, log: log}
}

// Runtime returns the runtime effects are run on.
func (i *Interceptor) Runtime() *Runtime { return i.rt }

// Intercept returns result unchanged unless it is an effect description.
// An effect is run exactly once: its value, mapped by MapValue, is returned
// on success; a failure is offered to MapError and, unless recovered, is
// returned as *Failure. A panicking effect returns *Defect.
func (i *Interceptor) Intercept(ctx context.Context, result any) (any, error) {
	eff, ok := result.(AnyEffect)
	if !ok {
		return result, nil
	}
	start := time.Now()
	res, notes, err := execute(ctx, i.rt, i.pipeline(eff.Erase()))
	fields := make([]zap.Field, 0, len(notes)+2)
	fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	for _, n := range notes {
		fields = append(fields, zap.Any(n.Key, n.Value))
	}
	if err != nil {
		var defect *Defect
		if errors.As(err, &defect) {
			i.log.Error("effect defect", append(fields, zap.Any("panic", defect.Value))...)
		} else {
			i.log.Warn("effect not run", append(fields, zap.Error(err))...)
		}
		return nil, err
	}
	if !res.isRight {
		f := newFailure(res.left)
		i.log.Info("effect failed", append(fields, zap.String("cause", f.Error()))...)
		return nil, f
	}
	i.log.Debug("effect succeeded", fields...)
	return res.right, nil
}

// pipeline composes the three steps of interception: observe, recover, reraise.
func (i *Interceptor) pipeline(m Effect[any]) Effect[any] {
	return reraise(Map(observe(m), i.recoverOutcome))
}

// observe captures the outcome of m instead of failing.
func observe(m Effect[any]) Effect[Either[any, any]] {
	return Attempt(m)
}

// recoverOutcome applies MapValue to a success and MapError to a failure.
// A value recovered by MapError is not passed to MapValue.
func (i *Interceptor) recoverOutcome(e Either[any, any]) Either[any, any] {
	if i.cfg.MapValue != nil {
		e = MapEither(e, i.cfg.MapValue)
	}
	if i.cfg.MapError == nil {
		return e
	}
	return MatchEither(e, i.cfg.MapError, Right[any, any])
}

// reraise turns the observed outcome back into success or failure.
func reraise(m Effect[Either[any, any]]) Effect[any] {
	return FlatMap(m, FromEither[any])
}
