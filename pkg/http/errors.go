package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Error writes out errors to the http response writer in a consistent
// manner.
type Error struct {
	logger log.Logger
}

// NewError creates an Error with the logger
func NewError(logger log.Logger) Error {
	return Error{
		logger: logger,
	}
}

// Error replies to the request with the specified error message and
// HTTP code.
func (e Error) Error(w http.ResponseWriter, msg string, code int) {
	level.Error(e.logger).Log("msg", msg, "code", code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(struct {
		Description string `json:"description"`
		Code        int    `json:"code"`
	}{
		Description: msg,
		Code:        code,
	})
}

// NotFound replies to the request with a not found error.
func (e Error) NotFound(w http.ResponseWriter, r *http.Request) {
	e.Error(w, "not found", http.StatusNotFound)
}

// BadRequest replies to the request with a bad request error.
func (e Error) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	e.Error(w, msg, http.StatusBadRequest)
}
