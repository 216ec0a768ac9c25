package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/BearBump/CargoGate/internal/services/shipments"
	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Total     int                      `json:"total"`
	Shipments []*models.ShipmentRecord `json:"shipments"`
}

func shipmentID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("shipment id must be a positive integer",
			map[string]string{"id": "must be numeric"})
	}
	return id, nil
}

// handleGetShipment — основная операция фасада: сначала fallback-проход
// по внешним бэкендам, затем локальный стор, и только потом 404.
func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if rec, ok := s.resolver.ResolveByID(r.Context(), id); ok {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	rec, err := s.shipments.GetByID(r.Context(), id)
	if err == nil {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	// 404 — только когда записи действительно нигде нет; сбой стора
	// это не not found.
	if !apperr.IsNotFound(err) {
		writeError(w, err)
		return
	}
	writeError(w, apperr.NotFound("shipment %d not found in any system", id))
}

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	f := shipments.Filter{
		System: strings.TrimSpace(r.URL.Query().Get("system")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if f.System != "" {
		norm, ok := models.NormalizeSystem(f.System)
		if !ok {
			writeError(w, apperr.Validation("system must be one of GROUND, AIR, SEA",
				map[string]string{"system": "unknown value"}))
			return
		}
		f.System = norm
	}

	recs, err := s.shipments.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(recs), Shipments: recs})
}

func (s *Server) handleListMerged(w http.ResponseWriter, r *http.Request) {
	recs := s.resolver.ListAllMerged(r.Context())
	if recs == nil {
		recs = []*models.ShipmentRecord{}
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(recs), Shipments: recs})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.shipments.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var in models.ShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperr.Validation("invalid request body", nil))
		return
	}
	rec, err := s.shipments.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in models.ShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperr.Validation("invalid request body", nil))
		return
	}
	rec, err := s.shipments.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.shipments.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "shipment deleted",
		"deleted": rec,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// handleUpdateStatus пробрасывает смену статуса во внешние бэкенды тем же
// fallback-порядком, что и чтение.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		writeError(w, apperr.Validation("status is required", map[string]string{"status": "required"}))
		return
	}

	rec, ok := s.resolver.UpdateStatusAnywhere(r.Context(), id, strings.TrimSpace(req.Status))
	if !ok {
		writeError(w, apperr.NotFound("shipment %d not found in any system", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSystemsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"facade":  "CargoGate",
		"systems": s.resolver.DescribeAll(r.Context()),
	})
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	system, ok := models.NormalizeSystem(chi.URLParam(r, "system"))
	if !ok {
		writeError(w, apperr.NotFound("unknown system %q", chi.URLParam(r, "system")))
		return
	}
	info, err := s.resolver.DescribeOne(r.Context(), system)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
