// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"errors"
	"fmt"
)

var (
	// ErrDisposed is returned by runs started after the runtime began disposal.
	ErrDisposed = errors.New("kontrt: runtime disposed")

	// ErrNoDiscovery is returned when auto service discovery is enabled
	// without a discovery or lookup collaborator.
	ErrNoDiscovery = errors.New("kontrt: auto service discovery requires discovery and lookup")

	// ErrMissingServices is returned by ForFeature when no services are configured.
	ErrMissingServices = errors.New("kontrt: feature registration requires services")

	// ErrUnresolvedProvider is returned under strict discovery when a
	// discovered binding does not resolve to a Layer.
	ErrUnresolvedProvider = errors.New("kontrt: unresolved capability provider")

	// ErrBadRequest is matched by every validation failure raised with the
	// default error policy.
	ErrBadRequest = errors.New("kontrt: bad request")

	// ErrScopeClosed is returned when a finalizer is added to a closed scope.
	ErrScopeClosed = errors.New("kontrt: scope closed")
)

// BuildError reports that a runtime's capability context could not be built.
// The same BuildError is returned by every run of that runtime.
type BuildError struct {
	Runtime string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("kontrt: build runtime %s: %v", e.Runtime, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ServiceNotFoundError is the failure cause of an effect that requires a
// capability its runtime does not provide.
type ServiceNotFoundError struct {
	Key string
}

func (e *ServiceNotFoundError) Error() string {
	return "kontrt: service not found: " + e.Key
}
