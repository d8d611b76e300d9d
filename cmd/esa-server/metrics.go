package main

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// Version is set at build time with -ldflags "-X main.Version=...".
	Version   = "dev"
	GoVersion = runtime.Version()
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "A metric with a constant '1' value labeled by version, and goversion.",
		},
		[]string{"version", "goversion"},
	)
	mutationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mutation_operations",
			Help: "Incremented for each add, remove, or replace, labeled by operation and success.",
		},
		[]string{"op", "success"},
	)
	mutationDur = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "mutation_duration",
			Help: "Summary of how long a mutation takes to complete, in microseconds.",
		},
	)
	proofOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proof_operations",
			Help: "Incremented for each proof generated, labeled by kind and validity.",
		},
		[]string{"kind", "valid"},
	)
	verifyOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_operations",
			Help: "Incremented for each proof verified, labeled by kind and result.",
		},
		[]string{"kind", "result"},
	)
	requestCtr = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests",
			Help: "Incremented for each API request received.",
		},
		[]string{"path", "status"},
	)
	accumulatorSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accumulator_size",
			Help: "Number of elements in the accumulated set.",
		},
	)
)

func metrics(addr string) {
	buildInfo.WithLabelValues(Version, GoVersion).Set(1)
	prometheus.MustRegister(buildInfo)
	prometheus.MustRegister(mutationOps)
	prometheus.MustRegister(mutationDur)
	prometheus.MustRegister(proofOps)
	prometheus.MustRegister(verifyOps)
	prometheus.MustRegister(requestCtr)
	prometheus.MustRegister(accumulatorSize)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			fmt.Fprintln(rw, "Hi, I'm an esa metrics and debugging server!")
		} else {
			rw.WriteHeader(404)
			fmt.Fprintln(rw, "404 not found")
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("/debug/version", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "Version: %s, GoVersion: %s", Version, GoVersion)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	log.Infof("Starting metrics server at: %v", addr)
	log.Fatal(srv.ListenAndServe())
}
