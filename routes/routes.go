package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/metrics"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RealIP,
		middlewares.RequestLogger,
		middleware.Recoverer,
		metrics.Instrument,
		cors.Handler(cors.Options{
			AllowedOrigins: app.CorsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}),
	)

	root.Get("/health", Health(app))
	root.Handle("/metrics", metrics.Handler())
	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Group(func(r chi.Router) {
		if app.AuthRateLimit > 0 {
			r.Use(httprate.LimitByIP(app.AuthRateLimit, time.Minute))
		}
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
	})

	api.Get(`/forms/{id:^\d+$}`, PublicGetForm(app))
	api.Post(`/forms/{id:^\d+$}/submit`, SubmitForm(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.Tokens))

		// CRUD form
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get(`/forms/{id:^\d+$}/edit`, GetOwnedForm(app))
		r.Put(`/forms/{id:^\d+$}`, UpdateForm(app))
		r.Delete(`/forms/{id:^\d+$}`, DeleteForm(app))

		r.Get(`/forms/{id:^\d+$}/submissions`, GetFormSubmissions(app))
	})

	return api
}
