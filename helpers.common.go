package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
)

type (
	ContextKey        string
	missingFieldError string
)

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	ConnContextKey          ContextKey = "http-conn"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// DecodeRequestBody is a helper function to read the json content of a write request.
// Malformed or mistyped payloads are reported as a *ValidationError.
func DecodeRequestBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return NewValidationError("body", "required", missingFieldError("request body").Error())
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return NewValidationError(typeErr.Field, "type", fmt.Sprintf("%s must be a %s", typeErr.Field, jsonTypeName(typeErr.Type.String())))
	}
	if errors.Is(err, io.EOF) {
		return NewValidationError("body", "required", missingFieldError("request body").Error())
	}
	return NewValidationError("body", "json", "request body must be valid json")
}

func jsonTypeName(goType string) string {
	goType = strings.TrimPrefix(goType, "*")
	switch goType {
	case "string":
		return "text"
	case "float64", "int", "int64":
		return "number"
	case "bool":
		return "boolean"
	}
	return goType
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It sets the underlying connection into the request context for later
// use by ReadDeadline or WriteDeadline method on *CustomResponseWriter.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context or nil.
func GetConnFromContext(ctx context.Context) net.Conn {
	c, _ := ctx.Value(ConnContextKey).(net.Conn)
	return c
}
