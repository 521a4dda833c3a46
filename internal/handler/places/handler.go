package places

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	placesService "github.com/asistente-hogar/backend/internal/service/places"
	"github.com/asistente-hogar/backend/pkg/utils"
)

const msgInvalidCoordinate = "Parámetros lat/lng inválidos"

// Handler serves the places and reverse geocoding endpoints.
type Handler struct {
	svc    *placesService.Service
	logger *slog.Logger
}

// New creates a places handler.
func New(svc *placesService.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes registers the geo routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/places", h.handlePlaces)
	r.Get("/geocode/reverse", h.handleReverse)
}

func (h *Handler) handlePlaces(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseCoordinate(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, msgInvalidCoordinate)
		return
	}

	query := placesService.Query{
		Lat:   lat,
		Lng:   lng,
		Types: placesService.ParseTypes(r.URL.Query().Get("types")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("radius")); raw != "" {
		if radius, err := strconv.Atoi(raw); err == nil {
			query.Radius = radius
		}
	}

	result, err := h.svc.Nearby(r.Context(), query)
	if err != nil {
		h.respondLookupError(w, "/places", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReverse(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseCoordinate(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, msgInvalidCoordinate)
		return
	}

	loc, err := h.svc.Reverse(r.Context(), lat, lng)
	if err != nil {
		h.respondLookupError(w, "/geocode/reverse", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, loc)
}

func (h *Handler) respondLookupError(w http.ResponseWriter, route string, err error) {
	var statusErr *placesService.UpstreamStatusError
	switch {
	case errors.Is(err, placesService.ErrInvalidCoordinate):
		utils.RespondError(w, http.StatusBadRequest, msgInvalidCoordinate)
	case errors.As(err, &statusErr):
		h.logger.Warn("geo upstream error", "route", route, "service", statusErr.Service, "status", statusErr.Status)
		utils.RespondErrorDetail(w, http.StatusBadGateway, statusErr.Service+" API error", statusErr.Body)
	default:
		h.logger.Error("geo lookup failed", "route", route, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Error interno en "+route)
	}
}

func parseCoordinate(r *http.Request) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("lat")), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("lng")), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
