// Package web serves the read-only listing API plus a manual collection
// trigger. The pipeline itself never depends on it.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"oldtimerfinder/internal/advert"
	"oldtimerfinder/logger"
	"oldtimerfinder/services/store"
	"oldtimerfinder/services/worker"
)

// Server exposes the stored advertisements over JSON.
type Server struct {
	store  *store.Store
	worker *worker.Worker
	filter store.Filter
}

// NewServer creates a server over the given store and worker.
func NewServer(st *store.Store, w *worker.Worker, filter store.Filter) *Server {
	return &Server{store: st, worker: w, filter: filter}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/listings", s.handleListings)
	mux.HandleFunc("GET /api/listings/top", s.handleTopListings)
	mux.HandleFunc("GET /api/listings/active", s.handleActiveListings)
	mux.HandleFunc("GET /api/statistics", s.handleStatistics)
	mux.HandleFunc("GET /api/scheduler", s.handleScheduler)
	mux.HandleFunc("POST /api/scrape/now", s.handleScrapeNow)
	return mux
}

type listingsResponse struct {
	Success  bool                   `json:"success"`
	Count    int                    `json:"count"`
	Listings []advert.Advertisement `json:"listings"`
}

// handleListings returns top listings, optionally restricted to a country.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	limit := intParam(r, "limit", 100)

	var (
		ads []advert.Advertisement
		err error
	)
	if country != "" {
		ads, err = s.store.CountryTopListings(country, limit, s.filter)
	} else {
		ads, err = s.store.TopListings(limit, s.filter)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingsResponse{Success: true, Count: len(ads), Listings: ads})
}

func (s *Server) handleTopListings(w http.ResponseWriter, r *http.Request) {
	ads, err := s.store.TopListings(intParam(r, "limit", 100), s.filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingsResponse{Success: true, Count: len(ads), Listings: ads})
}

// handleActiveListings returns every active record without the business
// filter, newest update first.
func (s *Server) handleActiveListings(w http.ResponseWriter, r *http.Request) {
	ads, err := s.store.ActiveAdvertisements(r.URL.Query().Get("country"), intParam(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingsResponse{Success: true, Count: len(ads), Listings: ads})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Statistics(s.filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"statistics": stats,
	})
}

func (s *Server) handleScheduler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"scheduler": s.worker.Status(),
	})
}

// handleScrapeNow triggers a background run. A second trigger while a run is
// in progress is rejected with a visible message and changes nothing.
func (s *Server) handleScrapeNow(w http.ResponseWriter, _ *http.Request) {
	err := s.worker.TriggerAsync()
	if errors.Is(err, worker.ErrAlreadyRunning) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"message": "Scrape is already running",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Scrape started in background",
	})
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.ForServer().Error().Err(err).Msg("Response encoding failed")
	}
}

func writeError(w http.ResponseWriter, err error) {
	logger.ForServer().Error().Err(err).Msg("Query failed")
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": "internal error",
	})
}
