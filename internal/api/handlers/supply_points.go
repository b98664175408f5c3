package handlers

import (
	"log"
	"net/http"
	"strconv"

	"water-route-service/internal/api/dto"
	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
	"water-route-service/internal/ports"
)

// SupplyPointHandler exposes the fallback dataset read-only.
type SupplyPointHandler struct {
	Source       ports.SupplyPointSource
	DefaultLimit int
}

// List returns the dataset the local fallback would rank. Optional query
// parameters: lat and lng (search hint), limit.
func (h *SupplyPointHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	limit := h.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 5000 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 5000")
			return
		}
		limit = n
	}

	var near domain.GeoPoint
	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		near = domain.GeoPoint{Latitude: lat, Longitude: lng}
		if errLat != nil || errLng != nil || !near.Valid() {
			writeError(w, r, http.StatusBadRequest, "lat and lng must be valid coordinates")
			return
		}
	}

	points, err := h.Source.ListSupplyPoints(r.Context(), near, limit)
	if err != nil {
		log.Printf("req_id=%s list supply points failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusBadGateway, "supply point dataset unavailable")
		return
	}

	res := dto.ListSupplyPointsResponse{
		SupplyPoints: make([]dto.SupplyPointResponse, 0, len(points)),
	}
	for _, p := range points {
		res.SupplyPoints = append(res.SupplyPoints, supplyPointResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}
