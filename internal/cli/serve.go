package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/internal/demo"
	"github.com/reoring/formskema/metrics"
	"github.com/reoring/formskema/middleware"
	"github.com/reoring/formskema/rules/redisrule"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, redisAddr string
	var maxBytes int64
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Validate documents posted over HTTP",
		Long: `Serves POST /{schema} for every built-in schema. Valid documents are
answered with 201 and their typed record, invalid ones with 422 and the error
tree. Prometheus metrics are exposed on /metrics. With --redis the unique key
of each schema is checked against and recorded in Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rule *redisrule.Rule
			if redisAddr != "" {
				client := backend.NewClient(&backend.Options{Addr: redisAddr})
				defer client.Close()
				if err := client.Ping(cmd.Context()).Err(); err != nil {
					return fmt.Errorf("redis %s: %w", redisAddr, err)
				}
				rule = redisrule.New(client)
			}
			h, err := a.router(prometheus.NewRegistry(), rule, maxBytes)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			a.logger.Info("listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for uniqueness checks (disabled when empty)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 1<<20, "maximum request body size")
	return cmd
}

// router mounts one validated POST route per demo schema and /metrics.
func (a *app) router(reg *prometheus.Registry, rule *redisrule.Rule, maxBytes int64) (http.Handler, error) {
	obs, err := metrics.NewPrometheus(reg, "formskema")
	if err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	for _, name := range demo.Names() {
		s, err := a.schema(name, formskema.WithObserver(obs))
		if err != nil {
			return nil, err
		}
		uniqueKey, hasUnique := demo.UniqueKey(name)
		if rule != nil && hasUnique {
			s.ExtendFieldValidators(uniqueKey, rule.Unique(name, fmt.Sprintf("%s is already registered", uniqueKey)))
		}
		middleware.Post(r, "/"+name, s, a.accept(name, rule, uniqueKey),
			middleware.WithMaxBytes(maxBytes), middleware.WithLogger(a.logger))
	}
	return r, nil
}

// accept binds a validated model into its record and records the unique key.
func (a *app) accept(name string, rule *redisrule.Rule, uniqueKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model, _ := middleware.ModelFromContext(r.Context())
		rec, err := demo.NewRecord(name)
		if err == nil {
			err = formskema.Bind(model, rec)
		}
		if err != nil {
			a.logger.Error("bind failed", zap.String("schema", name), zap.Error(err))
			http.Error(w, "bind failed", http.StatusInternalServerError)
			return
		}
		if rule != nil && uniqueKey != "" {
			if v, ok := model[uniqueKey].(string); ok && v != "" {
				if err := rule.Add(r.Context(), name, v); err != nil {
					a.logger.Error("record unique key", zap.String("schema", name), zap.Error(err))
					http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
					return
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	}
}
