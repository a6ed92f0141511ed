// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httprt_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"code.hybscloud.com/kontrt"
	"code.hybscloud.com/kontrt/httprt"
)

type createItem struct {
	Name  string `json:"name" validate:"required"`
	Price int    `json:"price" validate:"gte=0"`
}

type page struct {
	Limit  int `json:"limit" validate:"lte=100"`
	Offset int `json:"offset"`
}

var prefix = kontrt.NewTag[string]("prefix")

func newModule(t *testing.T, opts kontrt.Options) *kontrt.Module {
	t.Helper()
	opts.Services = append(opts.Services, kontrt.Succeed(prefix, "item-"))
	m, err := kontrt.ForRoot(context.Background(), nil, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func itemRoutes(m *kontrt.Module) http.Handler {
	r := httprt.NewRouter(nil)
	r.Handle("/items", httprt.Handle(m, func(_ *http.Request, args httprt.Args) any {
		in := args[0].(createItem)
		return kontrt.Map(prefix.Get(), func(p string) map[string]any {
			return map[string]any{"id": p + in.Name, "price": in.Price}
		})
	}, httprt.Body(kontrt.Struct[createItem]()))).Methods(http.MethodPost)

	r.Handle("/items/{id}", httprt.Handle(m, func(_ *http.Request, args httprt.Args) any {
		id := args[0].(string)
		if id == "missing" {
			return kontrt.Fail[string](&notFound{id: id})
		}
		if id == "broken" {
			return errors.New("handler error")
		}
		return map[string]string{"id": id}
	}, httprt.Path("id", nil))).Methods(http.MethodGet)

	r.Handle("/items", httprt.Handle(m, func(_ *http.Request, args httprt.Args) any {
		return args[0].(page)
	}, httprt.Query("", kontrt.Struct[page]()))).Methods(http.MethodGet)
	return r
}

type notFound struct{ id string }

func (e *notFound) Error() string   { return e.id + " not found" }
func (e *notFound) StatusCode() int { return http.StatusNotFound }

func TestHandleRunsEffect(t *testing.T) {
	h := itemRoutes(newModule(t, kontrt.Options{}))

	rec := serve(t, h, http.MethodPost, "/items", `{"name":"lamp","price":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	got := decode(t, rec)
	assert.Equal(t, "item-lamp", got["id"])
	assert.Equal(t, float64(12), got["price"])
}

func TestHandleValidationFailure(t *testing.T) {
	h := itemRoutes(newModule(t, kontrt.Options{}))

	for _, body := range []string{`{"price":-1}`, `{"name":`, ``} {
		rec := serve(t, h, http.MethodPost, "/items", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}

	rec := serve(t, h, http.MethodPost, "/items", `{"price":1}`)
	assert.Equal(t, "Validation failed", decode(t, rec)["error"])
}

func TestHandleQueryStruct(t *testing.T) {
	h := itemRoutes(newModule(t, kontrt.Options{}))

	rec := serve(t, h, http.MethodGet, "/items?limit=10&offset=20", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)
	assert.Equal(t, float64(10), got["limit"])
	assert.Equal(t, float64(20), got["offset"])

	rec = serve(t, h, http.MethodGet, "/items?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlainValueAndErrors(t *testing.T) {
	h := itemRoutes(newModule(t, kontrt.Options{}))

	rec := serve(t, h, http.MethodGet, "/items/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", decode(t, rec)["id"])

	rec = serve(t, h, http.MethodGet, "/items/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing not found", decode(t, rec)["error"])

	rec = serve(t, h, http.MethodGet, "/items/broken", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleStrictPathWithoutSchema(t *testing.T) {
	h := itemRoutes(newModule(t, kontrt.Options{Validation: kontrt.ValidationOptions{Strict: true}}))

	rec := serve(t, h, http.MethodGet, "/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMapError(t *testing.T) {
	h := itemRoutes(newModule(t, kontrt.Options{
		MapError: func(e any) kontrt.Either[any, any] {
			return kontrt.Right[any, any](map[string]any{"recovered": e.(error).Error()})
		},
	}))

	rec := serve(t, h, http.MethodGet, "/items/missing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "missing not found", decode(t, rec)["recovered"])
}

func TestHandleAfterClose(t *testing.T) {
	m := newModule(t, kontrt.Options{})
	h := itemRoutes(m)
	require.NoError(t, m.Close(context.Background()))

	rec := serve(t, h, http.MethodPost, "/items", `{"name":"lamp"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleDefectHidesPanic(t *testing.T) {
	m := newModule(t, kontrt.Options{})
	h := httprt.Handle(m, func(*http.Request, httprt.Args) any {
		return kontrt.Sync(func() int { panic("secret detail") })
	})

	rec := serve(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestHandleNilValueIsNoContent(t *testing.T) {
	m := newModule(t, kontrt.Options{})
	h := httprt.Handle(m, func(*http.Request, httprt.Args) any {
		return kontrt.Map(kontrt.Unit(), func(struct{}) any { return nil })
	})

	rec := serve(t, h, http.MethodDelete, "/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&kontrt.BadRequestError{Message: "x"}, http.StatusBadRequest},
		{&kontrt.ParseError{Schema: "s"}, http.StatusBadRequest},
		{kontrt.ErrDisposed, http.StatusServiceUnavailable},
		{&kontrt.BuildError{Err: errors.New("x")}, http.StatusServiceUnavailable},
		{&kontrt.Failure{Cause: &notFound{id: "a"}}, http.StatusNotFound},
		{&kontrt.Failure{Cause: "plain"}, http.StatusInternalServerError},
		{&kontrt.Defect{Value: &notFound{id: "a"}}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, httprt.StatusOf(tt.err), "%v", tt.err)
	}
}

func TestRouterRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := httprt.NewRouter(zap.New(core))
	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(httprt.RequestID(r.Context())))
	})

	rec := serve(t, r, http.MethodGet, "/ping", "")
	id := rec.Header().Get(httprt.RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(httprt.RequestIDHeader, "given")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get(httprt.RequestIDHeader))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/ping", entries[1].ContextMap()["route"])
	assert.Equal(t, "given", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusOK), entries[1].ContextMap()["status"])
}
