package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupCatalogRoutes injects the categories, books and addresses endpoints.
func (api *APIHandler) SetupCatalogRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.POST("/v1/categories", m.public(api.CreateCategory))
	router.GET("/v1/categories", m.public(api.GetAllCategories))
	router.GET("/v1/categories/:id", m.public(api.GetOneCategory))
	router.GET("/v1/categories/:id/books", m.public(api.GetBooksByCategory))

	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneBook))
	router.PUT("/v1/books/:id", m.public(api.UpdateBook))

	router.POST("/v1/addresses", m.public(api.CreateAddress))
	router.GET("/v1/addresses", m.public(api.GetAllAddresses))
	router.GET("/v1/addresses/:id", m.public(api.GetOneAddress))
	router.PUT("/v1/addresses/:id", m.public(api.UpdateAddress))
	router.DELETE("/v1/addresses/:id", m.public(api.DeleteAddress))
	return router
}
