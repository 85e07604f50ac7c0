package app

import (
	"context"
	"net/http"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/aliuyar1234/formkit/internal/config"
	"github.com/aliuyar1234/formkit/internal/forms"
	"github.com/aliuyar1234/formkit/internal/questions"
	"github.com/aliuyar1234/formkit/internal/responses"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger reports database reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the chi router with all middleware and routes.
func NewRouter(cfg *config.Config, svc Services, db Pinger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apperrors.RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(auth.AuthMiddleware(cfg.JWTSecret))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(db))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(NoCacheMiddleware)
		r.Use(MaxBodyMiddleware(cfg.MaxBodyBytes))

		r.Route("/auth", func(r chi.Router) {
			r.With(LoginRateLimitMiddleware()).Post("/register", auth.HandleRegister(svc.Auth))
			r.With(LoginRateLimitMiddleware()).Post("/login", auth.HandleLogin(svc.Auth))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)
				r.Get("/me", auth.HandleMe(svc.Auth))
				r.Put("/me/terms", auth.HandleUpdateTerms(svc.Auth))
			})
		})

		r.Route("/forms", func(r chi.Router) {
			// Anonymous callers allowed; visibility depends on publish state.
			r.Get("/{form_id}", forms.HandleGet(svc.Forms))
			r.Get("/{form_id}/terms", forms.HandleGetTerms(svc.Forms))
			r.Get("/{form_id}/questions", questions.HandleList(svc.Questions))
			r.With(SubmitRateLimitMiddleware(cfg.SubmitRateLimitRPM)).
				Post("/{form_id}/responses", responses.HandleSubmit(svc.Responses))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth)

				r.Post("/", forms.HandleCreate(svc.Forms))
				r.Get("/", forms.HandleList(svc.Forms))
				r.Post("/join", access.HandleAcceptInvite(svc.Access))

				r.Get("/{form_id}/me", forms.HandleGetMe(svc.Forms))
				r.Put("/{form_id}", forms.HandleUpdate(svc.Forms))
				r.Patch("/{form_id}/status", forms.HandleSetStatus(svc.Forms))
				r.Delete("/{form_id}", forms.HandleDelete(svc.Forms))

				r.Post("/{form_id}/questions", questions.HandleCreate(svc.Questions))
				r.Put("/{form_id}/questions/order", questions.HandleReorder(svc.Questions))
				r.Put("/{form_id}/questions/{question_id}", questions.HandleUpdate(svc.Questions))
				r.Delete("/{form_id}/questions/{question_id}", questions.HandleDelete(svc.Questions))

				r.Post("/{form_id}/access", access.HandleAddAccess(svc.Access))
				r.Get("/{form_id}/access", access.HandleListAccess(svc.Access))
				r.Delete("/{form_id}/access/{user_id}", access.HandleRemoveAccess(svc.Access))
				r.Post("/{form_id}/invites", access.HandleCreateInvite(svc.Access))

				r.Get("/{form_id}/responses", responses.HandleList(svc.Responses))
			})
		})
	})

	return r
}

// handleHealthz returns a simple liveness check
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns 200 when the database answers a ping, 503 otherwise
func handleReadyz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
		})
	}
}
