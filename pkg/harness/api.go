package harness

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"sync/atomic"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	errs "github.com/trussle/collector/pkg/http"
)

// These are the harness API URL paths.
const (
	APIPathRecipient = "/"
	APIPathCount     = "/count"
)

// API plays the recipient: it accepts forwarded message bodies and
// keeps a running count of what it has seen.
type API struct {
	logger   log.Logger
	received uint64
	errors   errs.Error
}

// NewAPI creates a API with the correct dependencies.
func NewAPI(logger log.Logger) *API {
	return &API{
		logger: logger,
		errors: errs.NewError(logger),
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	iw := &interceptingWriter{http.StatusOK, w}
	w = iw

	// Routing table
	method, path := r.Method, r.URL.Path
	switch {
	case method == "POST" && path == APIPathRecipient:
		a.handleRecipient(w, r)
	case method == "GET" && path == APIPathCount:
		a.handleCount(w, r)
	default:
		// Nothing found
		a.errors.NotFound(w, r)
	}
}

func (a *API) handleRecipient(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	b, err := ioutil.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	count := atomic.AddUint64(&a.received, 1)
	w.WriteHeader(http.StatusOK)

	level.Info(a.logger).Log("received", count, "body", string(b))
}

func (a *API) handleCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%d\n", atomic.LoadUint64(&a.received))
}

type interceptingWriter struct {
	code int
	http.ResponseWriter
}

func (iw *interceptingWriter) WriteHeader(code int) {
	iw.code = code
	iw.ResponseWriter.WriteHeader(code)
}
