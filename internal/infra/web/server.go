package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"expense-ltd/internal/config"
	"expense-ltd/internal/domain/ports/adapter"
	"expense-ltd/internal/infra/redis"
	"expense-ltd/internal/usecase"
)

type Server struct {
	validatorUC usecase.CodeValidatorUseCase
	redeemUC    usecase.RedemptionUseCase
	identity    adapter.IdentityProvider
	limiter     *redis.RateLimiter
	cfg         *config.RedemptionConfig
	log         *zerolog.Logger

	srv *http.Server
}

func NewServer(
	validatorUC usecase.CodeValidatorUseCase,
	redeemUC usecase.RedemptionUseCase,
	identity adapter.IdentityProvider,
	limiter *redis.RateLimiter,
	cfg *config.RedemptionConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		validatorUC: validatorUC,
		redeemUC:    redeemUC,
		identity:    identity,
		limiter:     limiter,
		cfg:         cfg,
		log:         logger,
	}
}

// Router builds the HTTP surface. Validation is open so a form can check a
// code before the user signs in, throttled per client IP; redeem and the
// subscription view require a Bearer access token, redeem throttled per user.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(func(r *http.Request) string {
				return redis.ValidateAttemptKey(r.RemoteAddr)
			}))
			r.Post("/ltd/validate", validateHandler(s.validatorUC))
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/subscription", subscriptionHandler(s.redeemUC))

			r.Group(func(r chi.Router) {
				r.Use(s.rateLimit(func(r *http.Request) string {
					return redis.RedeemAttemptKey(userIDFrom(r.Context()))
				}))
				r.Post("/ltd/redeem", redeemHandler(s.redeemUC, s.cfg.RetryMaxAttempts, s.log))
			})
		})
	})

	return r
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// rateLimit throttles requests under the key the route derives from the
// request, the user id for redeem and the client IP for validation. A limiter
// failure is treated as allow; the claim ledger stays correct without the
// brake.
func (s *Server) rateLimit(keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, err := s.limiter.Allow(r.Context(), keyFn(r),
				s.cfg.RateLimitAttempts, s.cfg.RateLimitWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeJSON(w, http.StatusTooManyRequests, errorBody("", "Too many attempts. Please wait and try again."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
