// Package api serves the latest vehicle snapshot and the line catalogue
// over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geometry"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/store"
)

// Handler handles HTTP requests against the in-memory snapshot store.
type Handler struct {
	snapshots *store.Store
	geometry  *geometry.Cache
}

// NewHandler creates a new HTTP handler.
func NewHandler(snapshots *store.Store, geometry *geometry.Cache) *Handler {
	return &Handler{snapshots: snapshots, geometry: geometry}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/vehicles", h.handleVehicles).Methods("GET")
	r.HandleFunc("/vehicles/{line}", h.handleVehiclesByLine).Methods("GET")
	r.HandleFunc("/lines", h.handleLines).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
}

// Response wraps API responses.
type Response struct {
	Data    interface{} `json:"data"`
	Source  string      `json:"source,omitempty"`
	Updated string      `json:"updated,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LineInfo is one entry of the line catalogue.
type LineInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	BrandColor string `json:"brandColor"`
	Order      int    `json:"order"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"title":     "rodalies-simulator",
		"endpoints": "/vehicles /vehicles/{line} /lines /health",
	}
	h.writeJSON(w, response)
}

func (h *Handler) handleVehicles(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshots.Latest()
	if snap == nil {
		h.writeError(w, "no snapshot available yet", http.StatusServiceUnavailable)
		return
	}
	h.writeJSON(w, Response{
		Data:    snap.Vehicles,
		Source:  string(snap.Source),
		Updated: snap.GeneratedAt.Format(time.RFC3339),
	})
}

func (h *Handler) handleVehiclesByLine(w http.ResponseWriter, r *http.Request) {
	line := mux.Vars(r)["line"]

	snap := h.snapshots.Latest()
	if snap == nil {
		h.writeError(w, "no snapshot available yet", http.StatusServiceUnavailable)
		return
	}
	vehicles := h.snapshots.ByLine(line)
	if len(vehicles) == 0 {
		if h.geometry == nil || h.geometry.Route(line) == nil {
			h.writeError(w, "unknown line "+line, http.StatusNotFound)
			return
		}
	}
	h.writeJSON(w, Response{
		Data:    vehicles,
		Source:  string(snap.Source),
		Updated: snap.GeneratedAt.Format(time.RFC3339),
	})
}

func (h *Handler) handleLines(w http.ResponseWriter, r *http.Request) {
	if h.geometry == nil {
		h.writeError(w, "line catalogue not loaded", http.StatusServiceUnavailable)
		return
	}
	fc := h.geometry.Collection()
	if fc == nil {
		h.writeError(w, "line catalogue not loaded", http.StatusServiceUnavailable)
		return
	}

	lines := make([]LineInfo, 0, len(fc.Features))
	for i := range fc.Features {
		f := &fc.Features[i]
		lines = append(lines, LineInfo{
			ID:         f.LineCode(),
			Name:       f.Properties.Name,
			BrandColor: f.Properties.BrandColor,
			Order:      f.Properties.Order,
		})
	}
	h.writeJSON(w, Response{Data: lines})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	if snap := h.snapshots.Latest(); snap != nil {
		status["vehicles"] = len(snap.Vehicles)
		status["source"] = string(snap.Source)
		status["updated"] = snap.GeneratedAt.Format(time.RFC3339)
	}
	h.writeJSON(w, status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.writeError(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
