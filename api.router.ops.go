package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupOpsRoutes adds the internal endpoints. They go through the ops
// middlewares so they keep answering in maintenance mode.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	routes := map[string]httprouter.Handle{
		"/ops/configs":     api.GetConfigs,
		"/ops/stats":       api.GetStatistics,
		"/ops/maintenance": api.Maintenance,
		"/ops/catalog":     api.GetCatalogSummary,
		"/ops/debug/vars":  GetMemStats,
		"/ops/debug/gc":    api.RunGC,
		"/ops/debug/fos":   api.FreeOSMemory,
	}
	if api.config.ProfilerEndpointsEnable {
		for suffix, h := range profilerHandlers() {
			routes["/ops/debug/pprof/"+suffix] = api.OpsHandlerWrapper(h)
		}
	}
	for path, h := range routes {
		router.GET(path, m.ops(h))
	}
	return router
}
