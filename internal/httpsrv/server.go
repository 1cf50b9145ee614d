// Package httpsrv serves the dashboard and the REST API.
package httpsrv

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/hashmap-kz/quantd/config"
)

var limiter = rate.NewLimiter(5, 10) // 5 req/sec, burst 10

type HTTPServer struct {
	srv    *http.Server
	logger *slog.Logger
}

func NewHTTPServer(addr string, ctrl *DashboardController) *HTTPServer {
	logger := slog.With("component", "http-server")

	readChain := MiddlewareChain(
		safeHandlerMiddleware,
		loggingMiddleware(logger),
		rateLimitMiddleware,
	)
	secureChain := MiddlewareChain(
		safeHandlerMiddleware,
		loggingMiddleware(logger),
		rateLimitMiddleware,
		tokenAuthMiddleware,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/{$}", readChain(http.HandlerFunc(ctrl.DashboardHandler)))

	mux.Handle("GET /api/v1/loader/status", readChain(http.HandlerFunc(ctrl.LoaderStatusHandler)))
	mux.Handle("GET /api/v1/strategies", readChain(http.HandlerFunc(ctrl.StrategiesHandler)))
	mux.Handle("GET /api/v1/sectors", readChain(http.HandlerFunc(ctrl.SectorsHandler)))
	mux.Handle("GET /api/v1/rankings", readChain(http.HandlerFunc(ctrl.RankingsHandler)))
	mux.Handle("POST /api/v1/backtest", readChain(http.HandlerFunc(ctrl.BacktestHandler)))
	mux.Handle("POST /api/v1/scan", secureChain(http.HandlerFunc(ctrl.ScanHandler)))

	mux.Handle("GET /api/v1/pipeline/status", readChain(http.HandlerFunc(ctrl.PipelineStatusHandler)))
	mux.Handle("POST /api/v1/pipeline/pause", secureChain(http.HandlerFunc(ctrl.PipelinePauseHandler)))
	mux.Handle("POST /api/v1/pipeline/resume", secureChain(http.HandlerFunc(ctrl.PipelineResumeHandler)))

	mux.Handle("POST /api/v1/paper/accounts", readChain(http.HandlerFunc(ctrl.RegisterAccountHandler)))
	mux.Handle("POST /api/v1/paper/orders", readChain(http.HandlerFunc(ctrl.PlaceOrderHandler)))
	mux.Handle("GET /api/v1/paper/portfolio", readChain(http.HandlerFunc(ctrl.PortfolioHandler)))
	mux.Handle("GET /api/v1/paper/orders", readChain(http.HandlerFunc(ctrl.OrdersHandler)))
	mux.Handle("POST /api/v1/paper/reset", readChain(http.HandlerFunc(ctrl.ResetAccountHandler)))

	return &HTTPServer{
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second, // scans are slow
		},
	}
}

func (h *HTTPServer) Start(_ context.Context) {
	go func() {
		h.logger.Info("HTTP server listening", slog.String("addr", h.srv.Addr))
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", slog.Any("err", err))
		}
	}()
}

func (h *HTTPServer) Shutdown(ctx context.Context) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h.logger.Info("shutting down HTTP server")
	if err := h.srv.Shutdown(timeoutCtx); err != nil {
		h.logger.Error("error during HTTP server shutdown", slog.Any("err", err))
	} else {
		h.logger.Info("HTTP server shut down cleanly")
	}
}

// ---- Middlewares ----

func safeHandlerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", slog.Any("err", rec))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// tokenAuthMiddleware guards mutating routes. Auth is opt-in: with no
// token configured every request passes.
func tokenAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedToken := config.Cfg().Main.AuthToken
		if expectedToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "missing or incorrect token",
			})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != expectedToken {
			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "missing or incorrect token",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- Middleware Chain ----

type Middleware func(http.Handler) http.Handler

func MiddlewareChain(middleware ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middleware) - 1; i >= 0; i-- {
			final = middleware[i](final)
		}
		return final
	}
}
