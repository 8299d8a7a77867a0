package main

import (
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// parseAddr splits a listen address of the form
// [<network>://]<host>[:<port>] into its network and address parts,
// applying the default port when the address carries none.
func parseAddr(addr string, defaultPort int) (network, address string, err error) {
	network = "tcp"

	if i := strings.Index(addr, "://"); i >= 0 {
		network, addr = addr[:i], addr[i+3:]
	}

	if strings.HasPrefix(addr, "[::]") {
		addr = "0.0.0.0" + addr[len("[::]"):]
	}

	var host, port string
	if h, p, e := net.SplitHostPort(addr); e == nil {
		host, port = h, p
	} else {
		host = addr
	}

	if host == "" {
		host = "0.0.0.0"
	}
	if port == "" {
		port = strconv.Itoa(defaultPort)
	}

	return network, net.JoinHostPort(host, port), nil
}

// envName converts a flag name to its environment variable equivalent.
func envName(name string) string {
	return strings.ToUpper(strings.Replace(name, ".", "_", -1))
}

func registerMetrics(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}

func registerProfile(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}
