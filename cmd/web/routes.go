package main

import (
	"net/http"

	"github.com/AdamBeresnev/tablecup/internal/config"
	"github.com/AdamBeresnev/tablecup/internal/middleware"
	"github.com/AdamBeresnev/tablecup/internal/realtime"
	"github.com/AdamBeresnev/tablecup/internal/service"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type application struct {
	cfg         *config.Config
	sessions    *scs.SessionManager
	broker      *realtime.Broker
	tournaments *service.TournamentService
	matches     *service.MatchService
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if len(app.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// The stream stays outside the session middleware, which buffers responses
	r.Get("/events/{eventID}/stream", app.stream)

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadAndSave)

		r.Post("/auth/login", app.login)
		r.Post("/auth/logout", app.logout)

		r.Get("/events", app.listEvents)
		r.Get("/events/{eventID}", app.getEvent)
		r.Get("/events/{eventID}/standings", app.getStandings)
		r.Get("/events/{eventID}/podium", app.getPodium)
		r.Get("/events/{eventID}/log", app.getLog)
		r.Get("/events/{eventID}/matches/{matchID}", app.getMatch)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(app.sessions))

			r.Post("/events", app.createEvent)
			r.Put("/events/{eventID}", app.updateEvent)

			r.Post("/events/{eventID}/teams", app.addTeam)
			r.Put("/events/{eventID}/teams/{teamID}", app.updateTeam)
			r.Delete("/events/{eventID}/teams/{teamID}", app.deleteTeam)
			r.Post("/events/{eventID}/teams/{teamID}/disqualify", app.disqualifyTeam)

			r.Post("/events/{eventID}/generate-bracket", app.generateBracket)
			r.Post("/events/{eventID}/generate-knockout", app.generateKnockout)
			r.Post("/events/{eventID}/resolve-byes", app.resolveByes)

			r.Put("/events/{eventID}/matches/{matchID}/result", app.recordResult)
			r.Delete("/events/{eventID}/matches/{matchID}/result", app.clearResult)
			r.Post("/events/{eventID}/matches/{matchID}/start", app.startMatch)
			r.Post("/events/{eventID}/matches/{matchID}/schedule", app.scheduleMatch)
			r.Post("/events/{eventID}/tables/assign", app.assignTables)
		})
	})

	return r
}
