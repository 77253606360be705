package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"
)

const (
	// AbortedHeader is set once the timeout handler answered in place of the
	// catalog handler. Nothing is written to the client afterwards.
	AbortedHeader = "X-DCAT-ABORTED"

	// StatusClientClosedRequest is the nginx status logged for cancelled requests.
	StatusClientClosedRequest = 499
)

var (
	EmptyData = struct{}{}

	errRequestAborted = errors.New("handler: request timed out or cancelled")
)

// CustomResponseWriter records the status and body size sent by a handler for
// the stats middleware. It keeps the connection so listings can push back
// their write deadline through an http.ResponseController.
type CustomResponseWriter struct {
	http.ResponseWriter
	conn  net.Conn
	code  int
	bytes int
	wrote bool
}

func NewCustomResponseWriter(rw http.ResponseWriter, c net.Conn) *CustomResponseWriter {
	return &CustomResponseWriter{ResponseWriter: rw, conn: c, code: http.StatusOK}
}

func (cw *CustomResponseWriter) aborted() bool {
	return cw.Header().Get(AbortedHeader) != ""
}

// WriteHeader forwards the first status only. Once aborted the status is
// recorded for the logs but never sent.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	switch {
	case cw.aborted():
		cw.code, cw.wrote = code, true
	case !cw.wrote:
		cw.code, cw.wrote = code, true
		cw.ResponseWriter.WriteHeader(code)
	}
}

func (cw *CustomResponseWriter) Write(p []byte) (int, error) {
	if cw.aborted() {
		return 0, errRequestAborted
	}
	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}
	n, err := cw.ResponseWriter.Write(p)
	cw.bytes += n
	return n, err
}

func (cw *CustomResponseWriter) Status() int { return cw.code }

func (cw *CustomResponseWriter) Bytes() int { return cw.bytes }

// Unwrap is used by http.ResponseController.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

func (cw *CustomResponseWriter) SetWriteDeadline(t time.Time) error {
	if cw.conn == nil {
		return http.ErrNotSupported
	}
	return cw.conn.SetWriteDeadline(t)
}

func (cw *CustomResponseWriter) SetReadDeadline(t time.Time) error {
	if cw.conn == nil {
		return http.ErrNotSupported
	}
	return cw.conn.SetReadDeadline(t)
}

// APIResponse is the success envelope. Data is a single catalog record or a
// listing, in which case Total holds its length.
type APIResponse struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Total     *int        `json:"total,omitempty"`
	Data      interface{} `json:"data"`
}

// NewRecordResponse wraps one category, book or address.
func NewRecordResponse(status int, message string, record interface{}) *APIResponse {
	return &APIResponse{Status: status, Message: message, Data: record}
}

// NewListResponse wraps a listing. A nil listing is sent as an empty array.
func NewListResponse[T any](message string, items []T) *APIResponse {
	if items == nil {
		items = []T{}
	}
	total := len(items)
	return &APIResponse{Status: http.StatusOK, Message: message, Total: &total, Data: items}
}

// APIError is the failure envelope. Data lists the rejected fields of an
// invalid write and is an empty object for any other failure.
type APIError struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

func NewAPIError(requestID string, status int, message string) *APIError {
	return &APIError{RequestID: requestID, Status: status, Message: message, Data: EmptyData}
}

// NewFieldsError builds the 400 answer of a payload failing validation.
func NewFieldsError(requestID, message string, fields []FieldError) *APIError {
	if fields == nil {
		fields = []FieldError{}
	}
	return &APIError{RequestID: requestID, Status: http.StatusBadRequest, Message: message, Data: fields}
}

// abortIfDone records 504 for a timed out request and 499 for a cancelled one
// instead of answering: the timeout handler already replied to the client.
func abortIfDone(ctx context.Context, w http.ResponseWriter) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	w.Header().Set(AbortedHeader, "true")
	if errors.Is(err, context.DeadlineExceeded) {
		w.WriteHeader(http.StatusGatewayTimeout)
	} else {
		w.WriteHeader(StatusClientClosedRequest)
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, errResp *APIError) error {
	if err := abortIfDone(ctx, w); err != nil {
		return err
	}
	return writeJSON(w, errResp.Status, errResp)
}

func WriteResponse(ctx context.Context, w http.ResponseWriter, resp *APIResponse) error {
	if err := abortIfDone(ctx, w); err != nil {
		return err
	}
	return writeJSON(w, resp.Status, resp)
}

// StatusResponse is the data model sent when status endpoint is called.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// NotFoundResponse is the data model sent when a route does not exist.
type NotFoundResponse struct {
	RequestID string `json:"requestid"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}
