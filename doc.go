// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package kontrt runs effect descriptions inside request pipelines.
//
// Handler code returns an [Effect]: an inert, re-runnable description of a
// computation that may require capabilities, may fail and may succeed with a
// value. kontrt builds the capabilities once per module, runs intercepted
// effects against them and maps their outcome to Go's (value, error)
// convention. It also decodes handler parameters against declared schemas.
//
// # Effects
//
// [Effect] is a continuation-passing function type. Construction:
//
//   - [Pure], [Sync], [Try]: values and synchronous code
//   - [Async]: blocking code that receives the run's context.Context
//   - [Fail], [FromEither]: failures
//   - [Tag.Get], [Use], [WithService]: capabilities
//   - [Annotate]: key/value annotations logged with the outcome
//
// Composition: [Map], [FlatMap], [Then], [Attempt], [CatchAll], [OrElse],
// [Bracket], [OnError].
//
// Effects perform operations ([Perform]) that a driver dispatches by
// structural interface assertion. Dispatch order: service lookup →
// annotation → failure → nested run. An operation no dispatcher accepts
// panics, and the run returns a [*Defect].
//
// Any Effect[A] satisfies [AnyEffect]; the interceptor detects effects by
// that method set, never by concrete type.
//
// # Capabilities
//
// A capability is a value of type T provided under a [*Tag] token. A [Layer]
// is a recipe for capabilities: [Succeed], [FromEffect], [Scoped] (with
// release on disposal), [Merge] and [ProvideMerge]. A [Context] is the
// immutable result of building a layer.
//
// [Builder] folds the providers of a module into one layer: providers
// discovered in the host first, explicit providers last, each seeing the
// capabilities before it and shadowing them.
//
// # Runtime
//
// [Runtime] builds its layer lazily, exactly once, and is safe for
// concurrent runs. [Runtime.Dispose] refuses new runs, waits for in-flight
// runs and releases acquired resources once.
//
//	rt, err := kontrt.Build(nil, nil, kontrt.Options{
//	    Services: []kontrt.Layer{kontrt.Succeed(port, 8080)},
//	})
//	v, err := kontrt.Run(ctx, rt, port.Get())
//
// # Interception and validation
//
// [Interceptor.Intercept] passes non-effect values through unchanged. An
// effect runs once through observe, recover and reraise steps applying
// [Options.MapValue] and [Options.MapError]; an unrecovered failure is
// returned as [*Failure].
//
// [Validator.Transform] decodes a parameter against its [Schema]
// ([Struct] for Go structs). Rejected parameters return
// [*BadRequestError] or the configured custom error.
//
// # Modules
//
// [ForRoot] and [ForFeature] register a runtime, interceptor and validator
// for a host implementing [Discovery] and [Lookup]. Subpackages adapt modules
// to gRPC (grpcrt) and net/http (httprt); resources provides Redis and
// Postgres capabilities.
package kontrt
