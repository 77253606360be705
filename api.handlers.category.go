package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateCategory godoc
//
//	@Summary	Create a category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		category	body		CategoryInput	true	"category to create"
//	@Success	201			{object}	APIResponse{data=Category}
//	@Failure	400			{object}	APIError{data=[]FieldError}
//	@Failure	500			{object}	APIError
//	@Router		/v1/categories [post]
func (api *APIHandler) CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input CategoryInput
	if err := DecodeRequestBody(r, &input); err != nil {
		api.sendError(w, r, "category", "create", err)
		return
	}
	category, err := api.categoryService.Create(r.Context(), input)
	if err != nil {
		api.sendError(w, r, "category", "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create category", zap.String("category.id", category.ID.Hex()))
	api.sendResponse(w, r, NewRecordResponse(http.StatusCreated, "Category created successfully.", category))
}

// GetAllCategories godoc
//
//	@Summary	List all categories
//	@Tags		categories
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=[]Category}
//	@Failure	500	{object}	APIError
//	@Router		/v1/categories [get]
func (api *APIHandler) GetAllCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	categories, err := api.categoryService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, "categories", "get all", err)
		return
	}
	api.sendResponse(w, r, NewListResponse("All categories fetched successfully.", categories))
}

// GetOneCategory godoc
//
//	@Summary	Fetch a category
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"category id"
//	@Success	200	{object}	APIResponse{data=Category}
//	@Failure	400	{object}	APIError
//	@Failure	404	{object}	APIError
//	@Router		/v1/categories/{id} [get]
func (api *APIHandler) GetOneCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	category, err := api.categoryService.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "category", "get", err)
		return
	}
	api.sendResponse(w, r, NewRecordResponse(http.StatusOK, "Category fetched successfully.", category))
}
