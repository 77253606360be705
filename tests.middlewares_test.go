package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestAPIHandler(nil)
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 7, len(*pub))
	assert.Equal(t, 6, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	var num uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(1), num)
	assert.Equal(t, uint64(1), api.stats.called)
}

// TestRequestIDAndLoggerMiddlewares ensures the request id and
// the request scoped logger are available to the handler.
func TestRequestIDAndLoggerMiddlewares(t *testing.T) {
	api := newTestAPIHandler(nil)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	var requestID string
	var loggerSet bool
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(req.Context(), RequestIDContextKey)
		_, loggerSet = req.Context().Value(LoggerContextKey).(interface{ Sync() error })
	}
	chained := (&Middlewares{api.RequestIDMiddleware, api.AddLoggerMiddleware}).Chain(handler)
	chained(w, req, nil)
	assert.Equal(t, "r:abc", requestID)
	assert.True(t, loggerSet)
}

// TestStatsMiddleware ensures response status codes are counted.
func TestStatsMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}
	wrapped := api.StatsMiddleware(handler)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		wrapped(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
		assert.Equal(t, http.StatusTeapot, w.Code)
	}
	assert.Equal(t, uint64(2), api.stats.status[http.StatusTeapot])
}

// TestPanicRecoveryMiddleware ensures a panic is turned into a 500 response.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		panic("boom")
	}
	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		api.PanicRecoveryMiddleware(handler)(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to process the request.")
}

// TestMaintenanceModeMiddleware ensures requests are blocked during maintenance.
func TestMaintenanceModeMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var called bool
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
	}
	wrapped := api.MaintenanceModeMiddleware(handler)

	api.mode.enabled.Store(true)
	w := httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	api.mode.enabled.Store(false)
	w = httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
	assert.True(t, called)
}

// TestCORSMiddleware ensures cors headers are set.
func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(http.ResponseWriter, *http.Request, httprouter.Params) {})(w, httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestWriteResponseCancelled ensures nothing is sent once the request context is done.
func TestWriteResponseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	cw := NewCustomResponseWriter(rec, nil)
	err := WriteResponse(ctx, cw, NewRecordResponse(http.StatusOK, "ok", EmptyData))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 499, cw.Status())
	assert.Empty(t, rec.Body.String())
}
