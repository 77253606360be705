package main

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger          *zap.Logger
	config          *Config
	stats           *Statistics
	mode            *Maintenance
	clock           Clocker
	idsHandler      UIDHandler
	categoryService CategoryServiceProvider
	bookService     BookServiceProvider
	addressService  AddressServiceProvider
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(
	logger *zap.Logger,
	config *Config,
	stats *Statistics,
	clock Clocker,
	idsHandler UIDHandler,
	cs CategoryServiceProvider,
	bs BookServiceProvider,
	as AddressServiceProvider,
) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	if config == nil {
		config = &Config{}
	}
	return &APIHandler{
		logger:          logger,
		config:          config,
		stats:           stats,
		mode:            m,
		clock:           clock,
		idsHandler:      idsHandler,
		categoryService: cs,
		bookService:     bs,
		addressService:  as,
	}
}

// sendError converts a service error into its api error response. Validation
// and identifier errors are client faults, unknown errors are logged as such.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, entity, action string, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	logger := api.GetLoggerFromContext(r.Context())

	var errResp *APIError
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Info("invalid "+entity+" payload", zap.String("action", action), zap.Error(err))
		errResp = NewFieldsError(requestID, "failed to "+action+" the "+entity, verr.Fields)
	case errors.Is(err, ErrInvalidID):
		logger.Info(entity+" id provided is not valid", zap.String("action", action))
		errResp = NewAPIError(requestID, http.StatusBadRequest, entity+" id provided is not valid")
	case errors.Is(err, ErrNotFound):
		logger.Info(entity+" does not exist", zap.String("action", action), zap.Error(err))
		errResp = NewAPIError(requestID, http.StatusNotFound, entity+" does not exist")
	default:
		logger.Error("failed to "+action+" "+entity, zap.Error(err))
		errResp = NewAPIError(requestID, http.StatusInternalServerError, "failed to "+action+" the "+entity)
	}

	api.sendAPIError(w, r, errResp)
}

func (api *APIHandler) sendAPIError(w http.ResponseWriter, r *http.Request, errResp *APIError) {
	if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send error response", zap.Error(err))
	}
}

// sendResponse stamps the request id on the envelope and writes it.
func (api *APIHandler) sendResponse(w http.ResponseWriter, r *http.Request, resp *APIResponse) {
	resp.RequestID = GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response", zap.Error(err))
	}
}

// extendWriteDeadline gives listing endpoints more time to stream their response.
//
//nolint:bodyclose
func (api *APIHandler) extendWriteDeadline(w http.ResponseWriter, r *http.Request) {
	if api.config.Server.LongRequestWriteTimeout <= 0 {
		return
	}
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil {
		api.GetLoggerFromContext(r.Context()).Debug("http: failed to update the write deadline", zap.Error(err))
	}
}
