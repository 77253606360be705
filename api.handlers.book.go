package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateBook godoc
//
//	@Summary	Create a book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		book	body		BookInput	true	"book to create"
//	@Success	201		{object}	APIResponse{data=Book}
//	@Failure	400		{object}	APIError{data=[]FieldError}
//	@Failure	500		{object}	APIError
//	@Router		/v1/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input BookInput
	if err := DecodeRequestBody(r, &input); err != nil {
		api.sendError(w, r, "book", "create", err)
		return
	}
	book, err := api.bookService.Create(r.Context(), input)
	if err != nil {
		api.sendError(w, r, "book", "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create book", zap.String("book.id", book.ID.Hex()))
	api.sendResponse(w, r, NewRecordResponse(http.StatusCreated, "Book created successfully.", book))
}

// GetAllBooks godoc
//
//	@Summary	List all books with their category
//	@Tags		books
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=[]BookView}
//	@Failure	500	{object}	APIError
//	@Router		/v1/books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, "books", "get all", err)
		return
	}
	api.sendResponse(w, r, NewListResponse("All books fetched successfully.", books))
}

// GetOneBook godoc
//
//	@Summary	Fetch a book with its category
//	@Tags		books
//	@Produce	json
//	@Param		id	path		string	true	"book id"
//	@Success	200	{object}	APIResponse{data=BookView}
//	@Failure	400	{object}	APIError
//	@Failure	404	{object}	APIError
//	@Router		/v1/books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	book, err := api.bookService.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "book", "get", err)
		return
	}
	api.sendResponse(w, r, NewRecordResponse(http.StatusOK, "Book fetched successfully.", book))
}

// GetBooksByCategory godoc
//
//	@Summary	List the books of a category
//	@Tags		books
//	@Produce	json
//	@Param		id	path		string	true	"category id"
//	@Success	200	{object}	APIResponse{data=[]BookView}
//	@Failure	404	{object}	APIError
//	@Router		/v1/categories/{id}/books [get]
func (api *APIHandler) GetBooksByCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.extendWriteDeadline(w, r)
	id := ps.ByName("id")
	books, err := api.bookService.GetAllByCategory(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "category books", "list", err)
		return
	}
	if len(books) == 0 && api.config.Catalog.EmptyCategoryNotFound {
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
		api.sendAPIError(w, r, NewAPIError(requestID, http.StatusNotFound, "no books found for this category"))
		return
	}
	api.sendResponse(w, r, NewListResponse("Category books fetched successfully.", books))
}

// UpdateBook godoc
//
//	@Summary	Update some fields of a book
//	@Tags		books
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"book id"
//	@Param		book	body		BookPatch	true	"fields to update"
//	@Success	200		{object}	APIResponse{data=Book}
//	@Failure	400		{object}	APIError
//	@Failure	404		{object}	APIError
//	@Router		/v1/books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	var patch BookPatch
	if err := DecodeRequestBody(r, &patch); err != nil {
		api.sendError(w, r, "book", "update", err)
		return
	}
	book, err := api.bookService.Update(r.Context(), id, patch)
	if err != nil {
		api.sendError(w, r, "book", "update", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update book", zap.String("book.id", id))
	api.sendResponse(w, r, NewRecordResponse(http.StatusOK, "Book updated successfully.", book))
}
