package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateAddress godoc
//
//	@Summary	Create an address
//	@Tags		addresses
//	@Accept		json
//	@Produce	json
//	@Param		address	body		AddressInput	true	"address to create"
//	@Success	201		{object}	APIResponse{data=Address}
//	@Failure	400		{object}	APIError{data=[]FieldError}
//	@Router		/v1/addresses [post]
func (api *APIHandler) CreateAddress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input AddressInput
	if err := DecodeRequestBody(r, &input); err != nil {
		api.sendError(w, r, "address", "create", err)
		return
	}
	address, err := api.addressService.Create(r.Context(), input)
	if err != nil {
		api.sendError(w, r, "address", "create", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create address", zap.String("address.id", address.ID.Hex()))
	api.sendResponse(w, r, NewRecordResponse(http.StatusCreated, "Address created successfully.", address))
}

// GetAllAddresses godoc
//
//	@Summary	List all addresses
//	@Tags		addresses
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=[]Address}
//	@Router		/v1/addresses [get]
func (api *APIHandler) GetAllAddresses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	addresses, err := api.addressService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, "addresses", "get all", err)
		return
	}
	api.sendResponse(w, r, NewListResponse("All addresses fetched successfully.", addresses))
}

// GetOneAddress godoc
//
//	@Summary	Fetch an address
//	@Tags		addresses
//	@Produce	json
//	@Param		id	path		string	true	"address id"
//	@Success	200	{object}	APIResponse{data=Address}
//	@Failure	404	{object}	APIError
//	@Router		/v1/addresses/{id} [get]
func (api *APIHandler) GetOneAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	address, err := api.addressService.GetOne(r.Context(), ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "address", "get", err)
		return
	}
	api.sendResponse(w, r, NewRecordResponse(http.StatusOK, "Address fetched successfully.", address))
}

// UpdateAddress godoc
//
//	@Summary	Replace the fields of an address
//	@Tags		addresses
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"address id"
//	@Param		address	body		AddressInput	true	"new address fields"
//	@Success	200		{object}	APIResponse{data=Address}
//	@Failure	400		{object}	APIError
//	@Failure	404		{object}	APIError
//	@Router		/v1/addresses/{id} [put]
func (api *APIHandler) UpdateAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	var input AddressInput
	if err := DecodeRequestBody(r, &input); err != nil {
		api.sendError(w, r, "address", "update", err)
		return
	}
	address, err := api.addressService.Update(r.Context(), id, input)
	if err != nil {
		api.sendError(w, r, "address", "update", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update address", zap.String("address.id", id))
	api.sendResponse(w, r, NewRecordResponse(http.StatusOK, "Address updated successfully.", address))
}

// DeleteAddress godoc
//
//	@Summary	Delete an address
//	@Tags		addresses
//	@Produce	json
//	@Param		id	path		string	true	"address id"
//	@Success	200	{object}	APIResponse{data=Address}
//	@Failure	404	{object}	APIError
//	@Router		/v1/addresses/{id} [delete]
func (api *APIHandler) DeleteAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	address, err := api.addressService.Delete(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "address", "delete", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete address", zap.String("address.id", id))
	api.sendResponse(w, r, NewRecordResponse(http.StatusOK, "Address deleted successfully.", address))
}
