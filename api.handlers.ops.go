package main

import (
	"encoding/json"
	"expvar"
	"net/http"
	"net/http/pprof"
	"runtime"
	"runtime/debug"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// namedProfiles are the runtime profiles served by pprof.Handler.
var namedProfiles = []string{"heap", "allocs", "goroutine", "threadcreate", "block", "mutex"}

// profilerHandlers maps every endpoint under /ops/debug/pprof/ to its handler.
// The empty suffix is the index page.
func profilerHandlers() map[string]http.Handler {
	handlers := map[string]http.Handler{
		"":        http.HandlerFunc(pprof.Index),
		"profile": http.HandlerFunc(pprof.Profile),
		"trace":   http.HandlerFunc(pprof.Trace),
		"symbol":  http.HandlerFunc(pprof.Symbol),
		"cmdline": http.HandlerFunc(pprof.Cmdline),
	}
	for _, name := range namedProfiles {
		handlers[name] = pprof.Handler(name)
	}
	return handlers
}

// OpsHandlerWrapper lets a plain http.Handler sit behind the router and its middlewares.
func (api *APIHandler) OpsHandlerWrapper(h http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

func (api *APIHandler) sendOpsJSON(w http.ResponseWriter, r *http.Request, what string, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send "+what+" response", zap.Error(err))
	}
}

var goroutines = expvar.NewInt("goroutines")

// GetMemStats serves the expvar variables refreshed with the goroutines count.
func GetMemStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	goroutines.Set(int64(runtime.NumGoroutine()))
	expvar.Handler().ServeHTTP(w, r)
}

// RunGC triggers a garbage collection without waiting for it.
func (api *APIHandler) RunGC(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	go runtime.GC()
	api.sendOpsJSON(w, r, "run gc", map[string]string{"called": "go runtime.GC()"})
}

// FreeOSMemory asks the runtime to return as much memory as possible to the OS.
func (api *APIHandler) FreeOSMemory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	go debug.FreeOSMemory()
	api.sendOpsJSON(w, r, "free os memory", map[string]string{"called": "go debug.FreeOSMemory()"})
}

// CatalogSummary counts the records of each collection. Dangling counts the
// books whose category reference no longer resolves.
type CatalogSummary struct {
	RequestID  string `json:"requestid"`
	Storage    string `json:"storage"`
	Categories int    `json:"categories"`
	Books      int    `json:"books"`
	Dangling   int    `json:"dangling"`
	Addresses  int    `json:"addresses"`
}

// GetCatalogSummary serves the records count of the storage backend in use.
func (api *APIHandler) GetCatalogSummary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	ctx := r.Context()
	categories, err := api.categoryService.GetAll(ctx)
	if err != nil {
		api.sendError(w, r, "catalog", "summarize", err)
		return
	}
	books, err := api.bookService.GetAll(ctx)
	if err != nil {
		api.sendError(w, r, "catalog", "summarize", err)
		return
	}
	addresses, err := api.addressService.GetAll(ctx)
	if err != nil {
		api.sendError(w, r, "catalog", "summarize", err)
		return
	}

	summary := CatalogSummary{
		RequestID:  GetValueFromContext(ctx, RequestIDContextKey),
		Storage:    api.config.Storage.Backend,
		Categories: len(categories),
		Books:      len(books),
		Addresses:  len(addresses),
	}
	for _, book := range books {
		if book.Category == nil {
			summary.Dangling++
		}
	}
	api.sendOpsJSON(w, r, "catalog summary", summary)
}
