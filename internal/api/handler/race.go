package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fritkotgp/raceapi/internal/api/middleware"
	"github.com/fritkotgp/raceapi/internal/api/request"
	"github.com/fritkotgp/raceapi/internal/api/response"
	"github.com/fritkotgp/raceapi/internal/services/race"
)

// RaceHandler handles simulation and result endpoints
type RaceHandler struct {
	raceService *race.Service
}

// NewRaceHandler creates a new race handler
func NewRaceHandler(raceService *race.Service) *RaceHandler {
	return &RaceHandler{
		raceService: raceService,
	}
}

// Simulate handles POST /races/simulate
func (h *RaceHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	var req request.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.TeamID == "" {
		WriteError(w, NewInvalidRequestError("teamId is required"))
		return
	}
	if req.TrackID == "" {
		WriteError(w, NewInvalidRequestError("trackId is required"))
		return
	}

	result, err := h.raceService.Simulate(r.Context(), *caller, race.SimulateRequest{
		TeamID:  req.TeamID,
		TrackID: req.TrackID,
		Save:    req.Save,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == race.StatusCreated {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.SimulateResponseFromResult(result))
}

// List handles GET /races
func (h *RaceHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())
	query := request.ResultQueryFromValues(r.URL.Query())

	results, err := h.raceService.ListResults(r.Context(), *caller, query)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultsPageFromModel(results, query))
}

// Get handles GET /races/{id}
func (h *RaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	result, err := h.raceService.GetResult(r.Context(), *caller, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RaceResultFromModel(result))
}

// Delete handles DELETE /races/{id}
func (h *RaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetIdentity(r.Context())

	id, err := h.raceService.DeleteResult(r.Context(), *caller, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeletedResponse{Status: "deleted", ID: string(id)})
}
