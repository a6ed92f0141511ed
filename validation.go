// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ParamKind is where a handler parameter comes from.
type ParamKind int

const (
	Body ParamKind = iota
	Query
	Param
	Custom
)

func (k ParamKind) String() string {
	switch k {
	case Body:
		return "body"
	case Query:
		return "query"
	case Param:
		return "param"
	case Custom:
		return "custom"
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// ParamMetadata describes a handler parameter.
// Type declares the parameter's schema when it implements Schema.
type ParamMetadata struct {
	Kind ParamKind
	Name string
	Type any
}

// Schema decodes unknown input into a checked value.
// Decode reports malformed input as *ParseError.
type Schema interface {
	Decode(raw any) (any, error)
}

// Issue is one problem found while decoding.
type Issue struct {
	Path    string
	Tag     string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ParseError reports input that does not match a schema.
type ParseError struct {
	Schema string
	Issues []Issue
}

func (e *ParseError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("kontrt: decode %s: %s", e.Schema, strings.Join(parts, "; "))
}

// BadRequestError is the default error for a rejected parameter.
// It carries no decode detail.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

func (e *BadRequestError) Unwrap() error { return ErrBadRequest }

// StatusCode returns the HTTP status of the error.
func (e *BadRequestError) StatusCode() int { return http.StatusBadRequest }

const validationFailed = "Validation failed"

// Validator decodes handler parameters against their declared schemas.
type Validator struct {
	opts ValidationOptions
	log  *zap.Logger
}

// NewValidator returns a Validator with opts.
func NewValidator(opts ValidationOptions, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{opts: opts, log: log}
}

// Transform decodes raw against meta's schema.
// Without a schema, raw is returned unchanged unless the validator is strict.
func (v *Validator) Transform(raw any, meta ParamMetadata) (any, error) {
	schema, ok := meta.Type.(Schema)
	if !ok {
		if v.opts.Strict {
			v.log.Debug("parameter without schema rejected",
				zap.Stringer("kind", meta.Kind), zap.String("name", meta.Name))
			return nil, v.reject(nil)
		}
		return raw, nil
	}
	out, err := schema.Decode(raw)
	if err != nil {
		perr, ok := err.(*ParseError)
		if !ok {
			perr = &ParseError{Schema: fmt.Sprintf("%T", schema), Issues: []Issue{{Message: err.Error()}}}
		}
		v.log.Debug("parameter rejected",
			zap.Stringer("kind", meta.Kind), zap.String("name", meta.Name), zap.Error(perr))
		return nil, v.reject(perr)
	}
	return out, nil
}

func (v *Validator) reject(perr *ParseError) error {
	if v.opts.CustomError != nil {
		if err := v.opts.CustomError(perr); err != nil {
			return err
		}
	}
	return &BadRequestError{Message: validationFailed}
}
