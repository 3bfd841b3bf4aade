package http

import (
	"net/http"

	"meridian/internal/auth"
	"meridian/internal/catalog"
	"meridian/internal/config"
	"meridian/internal/event"
	"meridian/internal/health"
	"meridian/internal/http/handler"
	mw "meridian/internal/http/middleware"
	"meridian/internal/ideas"
	"meridian/internal/job"
	"meridian/internal/render"
	"meridian/internal/rotation"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config    config.Config
	DB        *gorm.DB
	JWT       *auth.JWT
	Catalog   *catalog.Catalog
	Sequencer *rotation.Sequencer
	Registry  *job.Registry
	Hub       *event.Hub
	Runner    *render.Runner
	Publisher render.Publisher
	Bank      *ideas.Bank
	Generator *ideas.Generator
	Scheduler *ideas.Scheduler
	Monitor   *health.Monitor
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(d.Config.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Config.CORSAllowedOrigins, d.Config.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	oh := &handler.OperatorHandler{DB: d.DB, JWT: d.JWT}
	r.Post("/auth/register", oh.Register)
	r.Post("/auth/login", oh.Login)
	r.With(auth.RequireAuth(d.JWT)).Get("/me", oh.Me)

	ch := &handler.CatalogHandler{Catalog: d.Catalog, Sequencer: d.Sequencer}
	gh := &handler.GenerateHandler{Sequencer: d.Sequencer, Registry: d.Registry, Runner: d.Runner}
	jh := &handler.JobsHandler{Registry: d.Registry}
	ph := &handler.PublishHandler{Registry: d.Registry, Publisher: d.Publisher}
	ih := &handler.IdeasHandler{Bank: d.Bank, Generator: d.Generator, Scheduler: d.Scheduler, DefaultTarget: d.Config.IdeaTarget}
	hh := &handler.HealthHandler{Monitor: d.Monitor}
	eh := &handler.EventsHandler{Hub: d.Hub, Registry: d.Registry}

	r.Route("/api", func(r chi.Router) {
		// Queries and the event stream are open to the dashboard.
		r.Get("/categories", ch.Categories)
		r.Get("/music", ch.Tracks)
		r.Get("/music/for-duration/{seconds}", ch.TracksForDuration)
		r.Get("/config", ch.Config)

		r.Get("/jobs", jh.List)
		r.Get("/jobs/{id}", jh.Get)
		r.Get("/events", eh.Stream)

		r.Get("/automation/state", gh.State)
		r.Get("/automation/next", gh.Next)

		r.Get("/ideas", ih.Stats)
		r.Get("/ideas/progress", ih.Progress)
		r.Get("/autopublish", ih.AutopublishStatus)

		r.Get("/monitor/status", hh.Status)
		r.Get("/monitor/log", hh.Log)

		// Commands require an operator session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.JWT))

			r.Post("/generate", gh.Generate)
			r.Post("/automation/reset", gh.Reset)

			r.Delete("/jobs/{id}", jh.Delete)
			r.Delete("/jobs", jh.Clear)

			r.Post("/publish/{id}", ph.Publish)

			r.Post("/ideas/generate", ih.Generate)
			r.Post("/autopublish/toggle", ih.AutopublishToggle)

			r.Post("/monitor/check", hh.Run)
		})
	})

	return r
}
