package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for resolution requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/resolve", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				Industry string `json:"industry"`
				Region   string `json:"region"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if body.Name == "" {
				http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
				return
			}
			if body.ID == "" {
				body.ID = uuid.New().String()
			}

			company := model.Company{
				ID:       body.ID,
				Name:     body.Name,
				Industry: body.Industry,
				Region:   body.Region,
			}

			// Resolution runs asynchronously; the decision lands in the
			// store and is readable at /decisions/{id}.
			go func() {
				d := env.Coordinator.Resolve(ctx, company)
				zap.L().Info("webhook resolution complete",
					zap.String("company_id", d.CompanyID),
					zap.String("disposition", string(d.Disposition)),
				)
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":     "accepted",
				"company_id": body.ID,
			})
		})

		r.Get("/decisions/{companyID}", func(w http.ResponseWriter, req *http.Request) {
			d, err := env.Sink.Get(req.Context(), chi.URLParam(req, "companyID"))
			if err != nil {
				zap.L().Error("read decision", zap.Error(err))
				http.Error(w, `{"error":"store read failed"}`, http.StatusInternalServerError)
				return
			}
			if d == nil {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, d)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
