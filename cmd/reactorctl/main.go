package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attrflow/reactor/internal/config"
	"github.com/attrflow/reactor/internal/obs"
	"github.com/attrflow/reactor/internal/sample"
	"github.com/attrflow/reactor/pkg/reactor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	shutdownTracing := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		shutdownTracing = obs.InitTracingOrNoop(ctx, cfg.Tracing.ServiceName, cfg.Tracing.ServiceVersion)
		log.Println("✓ OpenTelemetry tracing initialized")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("error shutting down tracer: %v", err)
		}
	}()

	telemetry := obs.NewTelemetryObserver(cfg.Telemetry.BufferSize)
	telemetry.Start()
	defer telemetry.Stop()
	log.Println("✓ telemetry observer started")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /analyze", handleAnalyze(telemetry, cfg.Limits.MaxRedefinitionDepth))

	handler := withLogging(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("reactorctl %s (%s) listening on http://localhost:%d\n", version, commit, cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}
	log.Println("stopped gracefully")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, version)
}

// handleAnalyze runs the bundled sample type-checker over a small
// fixed program as a smoke test of the whole wired stack (config,
// tracing, telemetry, the reactor engine itself) reachable over HTTP,
// rather than exposing a general program-submission API.
func handleAnalyze(telemetry *obs.TelemetryObserver, maxRedefinitionDepth int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		program := sampleProgram()

		reactorResult, err := sample.Analyze(program,
			reactor.WithMaxRedefinitionDepth(maxRedefinitionDepth),
			reactor.WithObserver(telemetry),
		)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		errs := reactorResult.Errors()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Description())
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"errors": out,
		})
	}
}

// sampleProgram builds a small fixed AST exercising a declaration, an
// integer literal, a resolved reference and a binary expression, so a
// probe against /analyze has something to see. It contains no string
// literal and no undeclared identifier.
func sampleProgram() *sample.Program {
	x := &sample.VarDecl{Name: "x", Init: &sample.IntLit{Value: 1}}
	return &sample.Program{
		Decls: []*sample.VarDecl{x},
		Exprs: []sample.Expr{
			&sample.BinaryExpr{Op: "+", Left: &sample.Ident{Name: "x"}, Right: &sample.IntLit{Value: 2}},
		},
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error encoding JSON response: %v", err)
	}
}
