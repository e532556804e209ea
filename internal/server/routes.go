package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gift_autobuy/internal/domain"
	"gift_autobuy/pkg/contextx"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/httpx/reply"
	"gift_autobuy/pkg/logx"
	"gift_autobuy/pkg/middlewarex"
)

// NewRouter роутер admin API со стандартной цепочкой middleware.
func NewRouter(s Server, logFieldMaxLen int) http.Handler {
	r := chi.NewRouter()

	masker := logx.NewSensitiveDataMasker()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
		middlewarex.Recovery,
	)

	s.RegisterRoutes(r)

	return r
}

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/users/{userID}", func(r chi.Router) {
				r.Use(s.ownersOnly)

				r.Get("/config", handler(s.getV1Config))
				r.Post("/profiles", handler(s.postV1Profile))
				r.Patch("/profiles/{index}", handler(s.patchV1Profile))
				r.Delete("/profiles/{index}", handler(s.deleteV1Profile))
				r.Put("/active", handler(s.putV1Active))
				r.Post("/active/toggle", handler(s.postV1ActiveToggle))
				r.Post("/reset", handler(s.postV1Reset))
				r.Post("/balance/refresh", handler(s.postV1BalanceRefresh))
				r.Get("/worker", handler(s.getV1Worker))
			})
		})
	})
}

// ownersOnly API обслуживает только пользователей, для которых запущен бот.
func (s Server) ownersOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDParam(r)
		if err != nil {
			reply.Error(r.Context(), w, err)

			return
		}

		if _, ok := s.owners[userID]; !ok {
			reply.Error(r.Context(), w, domain.NewError(errcodes.NotFound, "user not found"))

			return
		}

		ctx := contextx.WithUserID(r.Context(), contextx.UserID(userID))
		ctx = contextx.WithLogger(ctx, contextx.LoggerFromContextOrDefault(ctx).With(
			logx.Stringer(logx.FieldUserID, contextx.UserID(userID)),
		))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
