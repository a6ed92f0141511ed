// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httprt adapts a kontrt module to net/http and gorilla/mux.
package httprt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"code.hybscloud.com/kontrt"
)

// maxBodyBytes bounds the request body read by Body parameters.
const maxBodyBytes = 1 << 20

// Param describes one handler argument.
// An empty Name on a Path or Query parameter selects all variables.
type Param struct {
	Kind   kontrt.ParamKind
	Name   string
	Schema kontrt.Schema
}

// Body is the JSON request body decoded against schema.
func Body(schema kontrt.Schema) Param {
	return Param{Kind: kontrt.Body, Name: "body", Schema: schema}
}

// Path is the route variable name, or all route variables when name is empty.
func Path(name string, schema kontrt.Schema) Param {
	return Param{Kind: kontrt.Param, Name: name, Schema: schema}
}

// Query is the query parameter name, or all query parameters when name is empty.
func Query(name string, schema kontrt.Schema) Param {
	return Param{Kind: kontrt.Query, Name: name, Schema: schema}
}

// Args holds decoded arguments in parameter order.
type Args []any

// HandlerFunc handles a request. It returns a value to encode as JSON,
// an effect producing that value, or an error.
type HandlerFunc func(r *http.Request, args Args) any

// Handle returns an http.Handler that decodes params with m's validator,
// calls h and runs a returned effect with m's interceptor.
func Handle(m *kontrt.Module, h HandlerFunc, params ...Param) http.Handler {
	log := m.Logger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args := make(Args, len(params))
		for i, p := range params {
			raw, err := extract(r, p)
			if err != nil {
				writeError(w, r, log, &kontrt.BadRequestError{Message: err.Error()})
				return
			}
			meta := kontrt.ParamMetadata{Kind: p.Kind, Name: p.Name}
			if p.Schema != nil {
				meta.Type = p.Schema
			}
			v, err := m.Validator().Transform(raw, meta)
			if err != nil {
				writeError(w, r, log, err)
				return
			}
			args[i] = v
		}
		res := h(r, args)
		if err, ok := res.(error); ok {
			writeError(w, r, log, err)
			return
		}
		out, err := m.Interceptor().Intercept(r.Context(), res)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func extract(r *http.Request, p Param) (any, error) {
	switch p.Kind {
	case kontrt.Body:
		if r.Body == nil || r.ContentLength == 0 {
			return nil, nil
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("malformed body: %w", err)
		}
		return v, nil
	case kontrt.Param:
		vars := mux.Vars(r)
		if p.Name == "" {
			out := make(map[string]any, len(vars))
			for k, v := range vars {
				out[k] = v
			}
			return out, nil
		}
		v, ok := vars[p.Name]
		if !ok {
			return nil, nil
		}
		return v, nil
	case kontrt.Query:
		q := r.URL.Query()
		if p.Name == "" {
			out := make(map[string]any, len(q))
			for k := range q {
				out[k] = q.Get(k)
			}
			return out, nil
		}
		if !q.Has(p.Name) {
			return nil, nil
		}
		return q.Get(p.Name), nil
	}
	return r, nil
}

// StatusOf returns the HTTP status for an error returned by Handle's stages.
func StatusOf(err error) int {
	var defect *kontrt.Defect
	if errors.As(err, &defect) {
		return http.StatusInternalServerError
	}
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	var buildErr *kontrt.BuildError
	switch {
	case errors.Is(err, kontrt.ErrDisposed), errors.As(err, &buildErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, kontrt.ErrBadRequest):
		return http.StatusBadRequest
	}
	var perr *kontrt.ParseError
	if errors.As(err, &perr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	code := StatusOf(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		var defect *kontrt.Defect
		if errors.As(err, &defect) {
			msg = http.StatusText(code)
		}
	}
	writeJSON(w, code, errorBody{Error: msg, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	if v == nil && code == http.StatusOK {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
