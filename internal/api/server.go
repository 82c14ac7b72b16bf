// Package api provides the read-only HTTP view of campaign state.
// Every endpoint is a GET over in-memory state; nothing here mutates
// the simulation, which keeps the core's write boundaries intact.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/engine"
)

// Server serves the campaign state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	Port int

	started time.Time
}

// Start begins serving in a goroutine. The handler reads shared
// simulation state, so hosts driving cycles concurrently with the
// server must pause the clock around requests or accept torn reads on
// their own head.
func (s *Server) Start() {
	s.started = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/axes", s.handleAxes)
	mux.HandleFunc("/api/v1/relationship", s.handleRelationship)
	mux.HandleFunc("/api/v1/roster", s.handleRoster)
	mux.HandleFunc("/api/v1/journal", s.handleJournal)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("api server listening", "addr", addr)
		if err := http.ListenAndServe(addr, onlyGET(mux)); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()
}

func onlyGET(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "read-only API", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.AxisState()
	writeJSON(w, map[string]any{
		"date":     s.Sim.Date.String(),
		"uptime":   humanize.Time(s.started),
		"roster":   s.Sim.Roster.Len(),
		"subjects": humanize.Comma(int64(len(snap.Values))),
		"journal":  humanize.Comma(int64(s.Sim.Journal.Len())),
	})
}

func (s *Server) handleAxes(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.AxisState()
	out := make(map[string]map[string]int, len(snap.Values))
	for subject, vals := range snap.Values {
		out[string(subject)] = vals
	}
	writeJSON(w, out)
}

func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request) {
	a := campaign.CharacterID(r.URL.Query().Get("a"))
	b := campaign.CharacterID(r.URL.Query().Get("b"))
	if a == "" || b == "" {
		http.Error(w, "a and b query params required", http.StatusBadRequest)
		return
	}
	q := s.Sim.Query()
	writeJSON(w, map[string]any{
		"flags":      q.Flags(a, b),
		"sentiments": q.Sentiments(a, b),
		"roles":      q.Roles(a, b),
	})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	var out []*campaign.Character
	s.Sim.Roster.Each(func(c *campaign.Character) {
		out = append(out, c)
	})
	writeJSON(w, out)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	writeJSON(w, s.Sim.Journal.Tail(limit))
}
