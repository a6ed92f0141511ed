// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options configures one module registration.
//
// The data fields can be loaded from YAML with LoadOptions; providers,
// mapping functions and the logger are set in code.
type Options struct {
	// AutoServiceDiscovery adds every provider registered in the host
	// under a capability token to Services.
	AutoServiceDiscovery bool `yaml:"autoServiceDiscovery"`

	// StrictDiscovery fails the build when a discovered binding does not
	// resolve to a Layer, instead of skipping it.
	StrictDiscovery bool `yaml:"strictDiscovery"`

	// EagerBuild builds the runtime at registration instead of on first run.
	EagerBuild bool `yaml:"eagerBuild"`

	// Services are the explicit providers. They shadow discovered ones.
	Services []Layer `yaml:"-"`

	// MapValue transforms the success value of every intercepted effect.
	MapValue func(any) any `yaml:"-"`

	// MapError decides the outcome of a failed intercepted effect:
	// Right recovers with a value, Left fails with a (possibly new) cause.
	MapError func(any) Either[any, any] `yaml:"-"`

	Validation ValidationOptions `yaml:"validation"`

	Logger *zap.Logger `yaml:"-"`
}

// ValidationOptions configures the Validator.
type ValidationOptions struct {
	// Strict rejects parameters that declare no schema.
	Strict bool `yaml:"strict"`

	// CustomError builds the error for a rejected parameter.
	// The parse error is nil when a parameter was rejected for lacking a schema.
	CustomError func(*ParseError) error `yaml:"-"`
}

// Config is the mapping configuration a module hands to its interceptor
// and validator.
type Config struct {
	MapValue   func(any) any
	MapError   func(any) Either[any, any]
	Validation ValidationOptions
}

// Config returns the mapping part of o.
func (o Options) Config() Config {
	return Config{
		MapValue:   o.MapValue,
		MapError:   o.MapError,
		Validation: o.Validation,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// LoadOptions reads the data fields of Options from YAML.
// Unknown fields are an error. Empty input yields zero Options.
func LoadOptions(r io.Reader) (Options, error) {
	var o Options
	if err := o.Load(r); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadOptionsFile reads Options from the YAML file at path.
func LoadOptionsFile(path string) (Options, error) {
	var o Options
	if err := o.LoadFile(path); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Load overlays the data fields present in the YAML read from r onto o.
// Fields absent from the input keep their values. On error o is unchanged.
func (o *Options) Load(r io.Reader) error {
	next := *o
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&next); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("kontrt: decode options: %w", err)
	}
	*o = next
	return nil
}

// LoadFile overlays the YAML file at path onto o.
func (o *Options) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("kontrt: open options: %w", err)
	}
	defer f.Close()
	return o.Load(f)
}
