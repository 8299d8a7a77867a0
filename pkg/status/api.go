package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"

	errs "github.com/trussle/collector/pkg/http"
	"github.com/trussle/collector/pkg/metrics"
)

// These are the status API URL paths.
const (
	APIPathLivenessQuery  = "/health"
	APIPathReadinessQuery = "/ready"
)

// ReadyFunc reports whether the process is ready to receive deliveries.
type ReadyFunc func() bool

// API serves the status API
type API struct {
	logger   log.Logger
	ready    ReadyFunc
	duration metrics.Histogram
	errors   errs.Error
}

// NewAPI creates a API with the correct dependencies.
func NewAPI(logger log.Logger, ready ReadyFunc, duration metrics.Histogram) *API {
	return &API{
		logger:   logger,
		ready:    ready,
		duration: duration,
		errors:   errs.NewError(logger),
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	iw := &interceptingWriter{http.StatusOK, w}
	w = iw

	defer func(begin time.Time) {
		a.duration.Observe(time.Since(begin).Seconds())
	}(time.Now())

	// Routing table
	method, path := r.Method, r.URL.Path
	switch {
	case method == "GET" && path == APIPathLivenessQuery:
		a.handleLiveness(w, r)
	case method == "GET" && path == APIPathReadinessQuery:
		a.handleReadiness(w, r)
	default:
		// Nothing found
		a.errors.NotFound(w, r)
	}
}

func (a *API) handleLiveness(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(struct{}{}); err != nil {
		a.errors.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *API) handleReadiness(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if !a.ready() {
		a.errors.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(struct{}{}); err != nil {
		a.errors.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type interceptingWriter struct {
	code int
	http.ResponseWriter
}

func (iw *interceptingWriter) WriteHeader(code int) {
	iw.code = code
	iw.ResponseWriter.WriteHeader(code)
}
