package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/httputil"
	"github.com/AdamBeresnev/tablecup/internal/middleware"
	"github.com/AdamBeresnev/tablecup/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, bracket.ErrInvalidInput)
	}
	return id, nil
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.Error(w, "Invalid login request", err)
		return
	}
	if !app.cfg.CheckAdminPassword(body.Password) {
		httputil.Unauthorized(w)
		return
	}
	if err := middleware.Login(r.Context(), app.sessions); err != nil {
		httputil.InternalServerError(w, "Failed to start session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := middleware.Logout(r.Context(), app.sessions); err != nil {
		httputil.InternalServerError(w, "Failed to end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) stream(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	if _, err := app.tournaments.GetEvent(r.Context(), eventID); err != nil {
		httputil.Error(w, "Event not found", err)
		return
	}
	app.broker.ServeHTTP(w, r)
}

func (app *application) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.tournaments.ListEvents(r.Context())
	if err != nil {
		httputil.Error(w, "Failed to list events", err)
		return
	}
	if events == nil {
		events = []bracket.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (app *application) getEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	data, err := app.tournaments.GetEventData(r.Context(), eventID)
	if err != nil {
		httputil.Error(w, "Failed to get event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	standings, err := app.tournaments.GetStandings(r.Context(), eventID)
	if err != nil {
		httputil.Error(w, "Failed to get standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, standings)
}

func (app *application) getPodium(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	podium, err := app.tournaments.GetPodium(r.Context(), eventID)
	if err != nil {
		httputil.Error(w, "Failed to get podium", err)
		return
	}
	if podium == nil {
		podium = []bracket.PodiumEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, podium)
}

func (app *application) getLog(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			httputil.BadRequest(w, "Invalid limit", err)
			return
		}
	}
	entries, err := app.tournaments.ListLog(r.Context(), eventID, limit)
	if err != nil {
		httputil.Error(w, "Failed to get log", err)
		return
	}
	if entries == nil {
		entries = []bracket.LogEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	matchID, err := idParam(r, "matchID")
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}
	data, err := app.matches.GetMatchData(r.Context(), eventID, matchID)
	if err != nil {
		httputil.Error(w, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) createEvent(w http.ResponseWriter, r *http.Request) {
	var in service.EventInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.Error(w, "Invalid event", err)
		return
	}
	event, err := app.tournaments.CreateEvent(r.Context(), in)
	if err != nil {
		httputil.Error(w, "Failed to create event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

func (app *application) updateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	var in service.EventInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.Error(w, "Invalid event", err)
		return
	}
	event, err := app.tournaments.UpdateEvent(r.Context(), eventID, in)
	if err != nil {
		httputil.Error(w, "Failed to update event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (app *application) addTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	var in service.TeamInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.Error(w, "Invalid team", err)
		return
	}
	team, err := app.tournaments.AddTeam(r.Context(), eventID, in)
	if err != nil {
		httputil.Error(w, "Failed to add team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, team)
}

func (app *application) updateTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	teamID, err := idParam(r, "teamID")
	if err != nil {
		httputil.Error(w, "Invalid team ID", err)
		return
	}
	var in service.TeamInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.Error(w, "Invalid team", err)
		return
	}
	team, err := app.tournaments.UpdateTeam(r.Context(), eventID, teamID, in)
	if err != nil {
		httputil.Error(w, "Failed to update team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, team)
}

func (app *application) deleteTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	teamID, err := idParam(r, "teamID")
	if err != nil {
		httputil.Error(w, "Invalid team ID", err)
		return
	}
	if err := app.tournaments.DeleteTeam(r.Context(), eventID, teamID); err != nil {
		httputil.Error(w, "Failed to delete team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) disqualifyTeam(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	teamID, err := idParam(r, "teamID")
	if err != nil {
		httputil.Error(w, "Invalid team ID", err)
		return
	}
	if err := app.matches.DisqualifyTeam(r.Context(), eventID, teamID); err != nil {
		httputil.Error(w, "Failed to disqualify team", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) generateBracket(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	if err := app.tournaments.GenerateBracket(r.Context(), eventID); err != nil {
		httputil.Error(w, "Failed to generate bracket", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) generateKnockout(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	if err := app.tournaments.GenerateKnockout(r.Context(), eventID); err != nil {
		httputil.Error(w, "Failed to generate knockout", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) resolveByes(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	if err := app.matches.ResolveByes(r.Context(), eventID); err != nil {
		httputil.Error(w, "Failed to resolve byes", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) recordResult(w http.ResponseWriter, r *http.Request) {
	eventID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}
	var in service.ResultInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.Error(w, "Invalid result", err)
		return
	}
	if err := app.matches.RecordResult(r.Context(), eventID, matchID, in); err != nil {
		httputil.Error(w, "Failed to record result", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) clearResult(w http.ResponseWriter, r *http.Request) {
	eventID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}
	if err := app.matches.ClearResult(r.Context(), eventID, matchID); err != nil {
		httputil.Error(w, "Failed to clear result", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) startMatch(w http.ResponseWriter, r *http.Request) {
	eventID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}
	var body struct {
		Table int `json:"table"`
	}
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.Error(w, "Invalid table", err)
		return
	}
	if err := app.matches.StartMatch(r.Context(), eventID, matchID, body.Table); err != nil {
		httputil.Error(w, "Failed to start match", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) scheduleMatch(w http.ResponseWriter, r *http.Request) {
	eventID, matchID, ok := matchParams(w, r)
	if !ok {
		return
	}
	if err := app.matches.MarkScheduled(r.Context(), eventID, matchID); err != nil {
		httputil.Error(w, "Failed to schedule match", err)
		return
	}
	app.writeEventData(w, r, eventID)
}

func (app *application) assignTables(w http.ResponseWriter, r *http.Request) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return
	}
	started, err := app.matches.AutoAssignTables(r.Context(), eventID)
	if err != nil {
		httputil.Error(w, "Failed to assign tables", err)
		return
	}
	if started == nil {
		started = []bracket.Match{}
	}
	httputil.WriteJSON(w, http.StatusOK, started)
}

func matchParams(w http.ResponseWriter, r *http.Request) (eventID, matchID uuid.UUID, ok bool) {
	eventID, err := idParam(r, "eventID")
	if err != nil {
		httputil.Error(w, "Invalid event ID", err)
		return uuid.Nil, uuid.Nil, false
	}
	matchID, err = idParam(r, "matchID")
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, matchID, true
}

// writeEventData answers a mutation with the event's fresh state.
func (app *application) writeEventData(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	data, err := app.tournaments.GetEventData(r.Context(), eventID)
	if err != nil {
		httputil.Error(w, "Failed to get event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}
