// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt_test

import (
	"errors"
	"sync"

	"code.hybscloud.com/kontrt"
)

// fakeHost is an in-memory DI container that counts its calls.
type fakeHost struct {
	mu       sync.Mutex
	bindings []kontrt.Binding
	values   map[any]any
	errs     map[any]error

	providerCalls int
	lookupCalls   int
}

func newFakeHost() *fakeHost {
	return &fakeHost{values: make(map[any]any), errs: make(map[any]error)}
}

func (h *fakeHost) bind(name string, token, value any) *fakeHost {
	h.bindings = append(h.bindings, kontrt.Binding{Token: token, Name: name})
	h.values[token] = value
	return h
}

func (h *fakeHost) fail(name string, token any, err error) *fakeHost {
	h.bindings = append(h.bindings, kontrt.Binding{Token: token, Name: name})
	h.errs[token] = err
	return h
}

func (h *fakeHost) Providers() []kontrt.Binding {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.providerCalls++
	return append([]kontrt.Binding(nil), h.bindings...)
}

func (h *fakeHost) Get(token any, opts kontrt.LookupOptions) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lookupCalls++
	if err, ok := h.errs[token]; ok {
		return nil, err
	}
	v, ok := h.values[token]
	if !ok && opts.Strict {
		return nil, errors.New("not registered")
	}
	return v, nil
}

func (h *fakeHost) calls() (providers, lookups int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.providerCalls, h.lookupCalls
}
