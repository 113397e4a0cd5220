package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/depfix/depfix/internal/observability"
	"github.com/depfix/depfix/pkg/fixer"
)

const (
	serveReadTimeout  = 30 * time.Second
	serveWriteTimeout = 60 * time.Second
	serveIdleTimeout  = 120 * time.Second
)

// FixRequest is the request body for POST /api/fix.
type FixRequest struct {
	Code     string          `json:"code"`
	Dir      string          `json:"dir"`
	Filename string          `json:"filename"`
	Override *fixer.Override `json:"override,omitempty"`
}

// FixResponse is the response body for POST /api/fix.
type FixResponse struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// NewServeCommand creates the serve command, which exposes the fixer as an
// HTTP API on /api/fix plus /healthz and /readyz.
func NewServeCommand(cfgFile *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an HTTP server exposing the fixer over /api/fix",
		Long: `Start a development HTTP server that exposes depfix's import fixer as a
JSON API.

  POST /api/fix    fix imports in a posted source file
  GET  /healthz    liveness probe
  GET  /readyz     readiness probe`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runServe(cobraCmd.Context(), *cfgFile, port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8080", "port to listen on")

	return cmd
}

func runServe(ctx context.Context, cfgFile, port string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	providers, err := initObservability(cfg, observability.ModeServe, false)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	f, err := newFixer(cfg, nil)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	handler := newServeMux(f, providers.Tracer, providers.Logger, red)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  serveReadTimeout,
		WriteTimeout: serveWriteTimeout,
		IdleTimeout:  serveIdleTimeout,
	}

	providers.Logger.Info("depfix server starting", "addr", "http://localhost:"+port)

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveReadTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	}
}

func newServeMux(f *fixer.Fixer, tracer trace.Tracer, logger *slog.Logger, metrics *observability.REDMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/fix", handleFix(f, metrics))
	mux.Handle("/healthz", observability.HealthHandler())
	mux.Handle("/readyz", observability.ReadyHandler(observability.ReadyCheck(f.Ready)))

	return observability.HTTPMiddleware(tracer, logger, mux)
}

func handleFix(f *fixer.Fixer, metrics *observability.REDMetrics) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)

			return
		}

		start := time.Now()

		var body FixRequest

		decodeErr := json.NewDecoder(req.Body).Decode(&body)
		if decodeErr != nil {
			metrics.RecordRequest(req.Context(), "fix", "error", time.Since(start))
			http.Error(rw, "Invalid request body", http.StatusBadRequest)

			return
		}

		filename := body.Filename
		if filename == "" {
			filename = "index.js"
		}

		fixed, err := f.Run(req.Context(), body.Dir, filename, body.Code, body.Override)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordRequest(req.Context(), "fix", status, time.Since(start))

		if err != nil {
			writeFixJSON(rw, FixResponse{Error: err.Error()})

			return
		}

		writeFixJSON(rw, FixResponse{Code: fixed})
	}
}

func writeFixJSON(rw http.ResponseWriter, resp FixResponse) {
	rw.Header().Set("Content-Type", "application/json")

	if resp.Error != "" {
		rw.WriteHeader(http.StatusBadRequest)
	}

	encodeErr := json.NewEncoder(rw).Encode(resp)
	if encodeErr != nil {
		slog.Default().Error("failed to encode JSON response", "error", encodeErr)
	}
}
