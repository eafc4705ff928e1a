package handler

import (
	"net/http"

	"github.com/fritkotgp/raceapi/internal/api/response"
	"github.com/fritkotgp/raceapi/internal/services/catalog"
)

// CatalogHandler serves teams and tracks
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListTeams handles GET /teams
func (h *CatalogHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.catalogService.ListTeams(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamsFromModel(teams))
}

// ListTracks handles GET /tracks
func (h *CatalogHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalogService.ListTracks(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TracksFromModel(tracks))
}
