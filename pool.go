// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import "sync"

var suspensionPool = sync.Pool{
	New: func() any { return new(suspension) },
}

// suspension is a computation parked on an operation.
// It is created per Perform invocation, resumed at most once by the driver
// and returned to the pool by its resume function.
type suspension struct {
	op     Operation
	resume func(*suspension, Resumed) Resumed
	k      any
}

func acquireSuspension() *suspension {
	return suspensionPool.Get().(*suspension)
}

func releaseSuspension(s *suspension) {
	s.op = nil
	s.resume = nil
	s.k = nil
	suspensionPool.Put(s)
}
