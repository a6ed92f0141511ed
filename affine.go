// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"sync/atomic"
)

// oneShot guards a teardown action that may run at most once.
// The first caller of claim runs the action and reports it with finish;
// every other caller waits for that result.
type oneShot struct {
	used atomic.Uintptr
	done chan struct{}
	err  error
}

func newOneShot() *oneShot {
	return &oneShot{done: make(chan struct{})}
}

// claim returns true for exactly one caller.
func (o *oneShot) claim() bool {
	return o.used.Add(1) == 1
}

// claimed reports whether the action was started.
func (o *oneShot) claimed() bool {
	return o.used.Load() != 0
}

// finish records the result of the action and releases waiters.
// Only the caller that won claim may call finish.
func (o *oneShot) finish(err error) {
	o.err = err
	close(o.done)
}

// wait blocks until the action finished or ctx is done.
func (o *oneShot) wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do runs f if the caller wins claim, otherwise waits for the winner.
func (o *oneShot) do(ctx context.Context, f func() error) error {
	if !o.claim() {
		return o.wait(ctx)
	}
	err := f()
	o.finish(err)
	return err
}
