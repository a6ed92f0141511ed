// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"context"
	"errors"
	"sync"
)

// Scope collects the finalizers of resources acquired while building a
// capability context. Closing the scope runs them in reverse order.
type Scope struct {
	mu         sync.Mutex
	finalizers []func() error
	closed     bool
	once       *oneShot
}

// NewScope returns an open scope.
func NewScope() *Scope {
	return &Scope{once: newOneShot()}
}

// AddFinalizer registers f to run when s closes.
// It returns ErrScopeClosed without registering f once s is closed.
func (s *Scope) AddFinalizer(f func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	s.finalizers = append(s.finalizers, f)
	return nil
}

// Len returns the number of registered finalizers.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.finalizers)
}

// Close runs the finalizers last-added first and joins their errors.
// Finalizers run exactly once; later and concurrent calls return the
// result of the first.
func (s *Scope) Close() error {
	return s.once.do(context.Background(), func() error {
		s.mu.Lock()
		s.closed = true
		fs := s.finalizers
		s.finalizers = nil
		s.mu.Unlock()

		var errs []error
		for i := len(fs) - 1; i >= 0; i-- {
			if err := fs[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
