// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package grpcrt adapts a kontrt module to gRPC unary servers.
package grpcrt

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"code.hybscloud.com/kontrt"
)

// Option configures UnaryServerInterceptor.
type Option func(*options)

type options struct {
	schemas map[string]kontrt.Schema
	log     *zap.Logger
}

// WithSchema decodes requests of fullMethod against schema before the
// handler runs.
func WithSchema(fullMethod string, schema kontrt.Schema) Option {
	return func(o *options) {
		o.schemas[fullMethod] = schema
	}
}

// WithLogger sets the interceptor's logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// UnaryServerInterceptor returns an interceptor that validates the request
// with m's validator and calls the handler. Generated service handlers
// return typed responses, so service methods run their effects with [Run];
// a handler that returns an effect itself, such as one registered through a
// hand-written grpc.MethodDesc, has it run with m's interceptor.
// Errors are returned as gRPC status errors.
func UnaryServerInterceptor(m *kontrt.Module, opts ...Option) grpc.UnaryServerInterceptor {
	o := options{
		schemas: make(map[string]kontrt.Schema),
		log:     m.Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		meta := kontrt.ParamMetadata{Kind: kontrt.Body, Name: info.FullMethod}
		if s, ok := o.schemas[info.FullMethod]; ok {
			meta.Type = s
		}
		in, err := m.Validator().Transform(req, meta)
		if err != nil {
			o.log.Debug("request rejected", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, validationStatus(err)
		}
		resp, err := handler(ctx, in)
		if err != nil {
			return nil, err
		}
		out, err := m.Interceptor().Intercept(ctx, resp)
		if err != nil {
			st := outcomeStatus(err)
			o.log.Debug("effect error",
				zap.String("method", info.FullMethod),
				zap.Stringer("code", st.Code()),
				zap.Error(err),
			)
			return nil, st.Err()
		}
		return out, nil
	}
}

// validationStatus maps a rejected request to InvalidArgument unless the
// error already carries a status.
func validationStatus(err error) error {
	if st, ok := carriedStatus(err); ok {
		return st.Err()
	}
	return status.Error(codes.InvalidArgument, err.Error())
}

// outcomeStatus maps an interception error to a status.
func outcomeStatus(err error) *status.Status {
	var defect *kontrt.Defect
	if errors.As(err, &defect) {
		return status.New(codes.Internal, "internal error")
	}
	if errors.Is(err, kontrt.ErrDisposed) {
		return status.New(codes.Unavailable, err.Error())
	}
	var buildErr *kontrt.BuildError
	if errors.As(err, &buildErr) {
		return status.New(codes.Unavailable, err.Error())
	}
	if st, ok := carriedStatus(err); ok {
		return st
	}
	if errors.Is(err, kontrt.ErrBadRequest) {
		return status.New(codes.InvalidArgument, err.Error())
	}
	var perr *kontrt.ParseError
	if errors.As(err, &perr) {
		return status.New(codes.InvalidArgument, err.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err)
	}
	return status.New(codes.Unknown, err.Error())
}

// carriedStatus finds a status in err's chain.
func carriedStatus(err error) (*status.Status, bool) {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		if st := se.GRPCStatus(); st != nil {
			return st, true
		}
	}
	return nil, false
}
