package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// MiddlewareFunc is a custom type for ease of use.
type MiddlewareFunc func(httprouter.Handle) httprouter.Handle

// Middlewares is a custom type to represent a stack of
// middleware functions used to build a single chain.
type Middlewares []MiddlewareFunc

// MiddlewaresStacks builds the public and ops middlewares stacks.
// Ops requests are not subject to the maintenance mode.
func (api *APIHandler) MiddlewaresStacks() (*Middlewares, *Middlewares) {
	public := &Middlewares{
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		api.AddLoggerMiddleware,
		api.StatsMiddleware,
		api.PanicRecoveryMiddleware,
		api.MaintenanceModeMiddleware,
		CORSMiddleware,
	}
	ops := &Middlewares{
		api.RequestsCounterMiddleware,
		api.RequestIDMiddleware,
		api.AddLoggerMiddleware,
		api.StatsMiddleware,
		api.PanicRecoveryMiddleware,
		CORSMiddleware,
	}
	return public, ops
}

// RequestsCounterMiddleware increments the number of received requests statistics and add this
// new value to the request context to be used during logging as `request.num` field.
func (api *APIHandler) RequestsCounterMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), RequestNumberContextKey, atomic.AddUint64(&api.stats.called, 1))
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// RequestIDMiddleware generates and add a unique id to the request context.
func (api *APIHandler) RequestIDMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID := api.idsHandler.Generate(RequestIDPrefix)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// AddLoggerMiddleware stores into the request context a logger
// carrying the request id and number fields.
func (api *APIHandler) AddLoggerMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		logger := api.logger.With(
			zap.String("request.id", GetValueFromContext(r.Context(), RequestIDContextKey)),
			zap.Uint64("request.num", GetRequestNumberFromContext(r.Context())),
		)
		ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
		r = r.WithContext(ctx)
		next(w, r, ps)
	}
}

// StatsMiddleware wraps the response writer to record the status code and size of
// each response. It logs the request and its result then updates the status stats.
func (api *APIHandler) StatsMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		logger := api.GetLoggerFromContext(r.Context())
		logger.Info(
			"request",
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.String("request.ip", GetRequestSourceIP(r)),
			zap.String("request.agent", r.UserAgent()),
			zap.String("request.referer", r.Referer()),
		)

		cw := NewCustomResponseWriter(w, GetConnFromContext(r.Context()))
		next(cw, r, ps)

		api.stats.mu.Lock()
		api.stats.status[cw.Status()]++
		api.stats.mu.Unlock()

		logger.Info(
			"response",
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.Int("response.status", cw.Status()),
			zap.Int("response.bytes", cw.Bytes()),
			zap.Duration("request.duration", time.Since(start)),
		)
	}
}

// PanicRecoveryMiddleware catches any panic during the request lifecycle and produces
// an error log for further analysis. It sends a failure response to the client with 500.
func (api *APIHandler) PanicRecoveryMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		recovery := func() {
			if err := recover(); err != nil {
				requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
				logger := api.GetLoggerFromContext(r.Context())
				logger.Error("panic occurred", zap.Any("error", err), zap.Stack("stack"))
				api.sendAPIError(w, r, NewAPIError(requestID, http.StatusInternalServerError, "failed to process the request."))
			}
		}
		defer recovery()
		next(w, r, ps)
	}
}

// MaintenanceModeMiddleware answers with the maintenance message
// while the maintenance mode is enabled.
func (api *APIHandler) MaintenanceModeMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if api.mode.enabled.Load() {
			api.Maintenance(w, r, httprouter.Params{{Key: "status", Value: "show"}})
			return
		}
		next(w, r, ps)
	}
}

// CORSMiddleware intercepts each incoming HTTP calls then apply cors headers on it.
func CORSMiddleware(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Access-Control-Request-Method, Access-Control-Request-Headers, Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, User-Agent, Accept-Language, Referer, DNT, Connection, Pragma, Cache-Control, TE")
		next(w, r, ps)
	}
}

// Chain wraps a given httprouter.Handle with a list of middlewares.
// It does by starting from the last middleware from the list.
func (m *Middlewares) Chain(h httprouter.Handle) httprouter.Handle {
	if len(*m) == 0 {
		return h
	}
	lg := len(*m)
	handle := (*m)[lg-1](h)

	for i := lg - 2; i >= 0; i-- {
		handle = (*m)[i](handle)
	}

	return handle
}
