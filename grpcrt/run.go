// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package grpcrt

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"code.hybscloud.com/kontrt"
)

// Run runs eff with m's interceptor and returns its value as a service
// method result. Errors are returned as gRPC status errors.
//
//	func (s *server) Hello(ctx context.Context, req *pb.HelloRequest) (*pb.HelloReply, error) {
//		return grpcrt.Run(ctx, s.module, hello(req))
//	}
//
// A value replaced by MapValue or recovered by MapError must still be a
// Resp; any other value fails with Internal.
func Run[Resp any](ctx context.Context, m *kontrt.Module, eff kontrt.Effect[Resp]) (Resp, error) {
	var zero Resp
	out, err := m.Interceptor().Intercept(ctx, eff)
	if err != nil {
		return zero, outcomeStatus(err).Err()
	}
	if out == nil {
		return zero, nil
	}
	resp, ok := out.(Resp)
	if !ok {
		return zero, status.Errorf(codes.Internal, "unexpected response type %T", out)
	}
	return resp, nil
}
