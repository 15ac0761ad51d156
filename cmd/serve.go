package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation and telemetry HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env := initPipeline(cfg)

		checker := monitoring.NewChecker(env.Monitor, env.Declog, env.Cache,
			time.Duration(cfg.Monitor.CheckIntervalSecs)*time.Second)
		go checker.Run(ctx)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			report := env.Monitor.Health(env.Declog.Stats(), env.Cache.Stats())
			status := http.StatusOK
			if report.Status == monitoring.StatusUnhealthy {
				status = http.StatusServiceUnavailable
			}
			writeJSON(w, status, report)
		})

		r.Post("/validate", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				URL      string          `json:"url"`
				MimeType string          `json:"mime_type"`
				Metadata *model.Metadata `json:"metadata"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			result := env.Orchestrator.Validate(req.Context(), body.URL, body.MimeType, body.Metadata)
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"decisions":  env.Declog.Stats(),
				"cache":      env.Cache.Stats(),
				"operations": env.Monitor.Snapshot(),
			})
		})

		r.Get("/patterns", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, env.Declog.Patterns())
		})

		r.Get("/registry", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, env.Registry.Get())
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			zap.L().Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return eris.Wrap(err, "serve: listen")
		}
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("serve: encode response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
