// Package api exposes the inspection control surface over HTTP: run
// lifecycle, progress, the planned path, and a live event tail.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/banshee-data/drill.report/internal/config"
	"github.com/banshee-data/drill.report/internal/hole"
	"github.com/banshee-data/drill.report/internal/monitoring"
	"github.com/banshee-data/drill.report/internal/plan"
	"github.com/banshee-data/drill.report/internal/sim"
	"github.com/banshee-data/drill.report/internal/store"
)

// Server binds the engine, registry, store and tuning config behind the
// HTTP API.
type Server struct {
	engine *sim.Engine
	reg    *hole.Registry
	st     *store.Store
	tuning *config.TuningConfig
	broker *EventBroker
}

// NewServer assembles the API server. The store may be nil (in-memory
// operation, e.g. tests); start then requires holes to be pushed in the
// request body.
func NewServer(engine *sim.Engine, reg *hole.Registry, st *store.Store, tuning *config.TuningConfig, broker *EventBroker) *Server {
	return &Server{
		engine: engine,
		reg:    reg,
		st:     st,
		tuning: tuning,
		broker: broker,
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/inspection/start", s.startHandler)
	mux.HandleFunc("/api/inspection/pause", s.pauseHandler)
	mux.HandleFunc("/api/inspection/resume", s.resumeHandler)
	mux.HandleFunc("/api/inspection/stop", s.stopHandler)
	mux.HandleFunc("/api/inspection/progress", s.progressHandler)
	mux.HandleFunc("/api/inspection/plan", s.planHandler)
	mux.HandleFunc("/api/inspection/events", s.eventsHandler)
	mux.HandleFunc("/api/holes", s.holesHandler)
	mux.HandleFunc("/api/runs", s.runsHandler)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/debug/path-plot", s.pathPlotHandler)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("api: failed to write response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// startRequest optionally carries an inline hole set. Without one the
// holes are loaded from the store.
type startRequest struct {
	Holes []holeJSON `json:"holes,omitempty"`
	Reset bool       `json:"reset,omitempty"`
}

type holeJSON struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Side   string  `json:"side,omitempty"`
	Status string  `json:"status,omitempty"`
}

func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	holes, err := s.resolveHoles(req)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load holes: %v", err))
		return
	}

	if err := s.engine.Start(holes); err != nil {
		switch {
		case errors.Is(err, plan.ErrEmptyInput):
			s.writeJSONError(w, http.StatusBadRequest, "no holes to plan")
		case errors.Is(err, hole.ErrSimulationActive):
			s.writeJSONError(w, http.StatusConflict, "simulation already running")
		default:
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	_, total := s.engine.Progress()
	if s.st != nil {
		if err := s.st.CreateRun(s.engine.RunID(), total); err != nil {
			monitoring.Logf("api: failed to record run %s: %v", s.engine.RunID(), err)
		}
	}
	s.writeJSON(w, map[string]interface{}{
		"run_id": s.engine.RunID(),
		"units":  total,
	})
}

func (s *Server) resolveHoles(req startRequest) ([]hole.Hole, error) {
	if len(req.Holes) > 0 {
		holes := make([]hole.Hole, 0, len(req.Holes))
		for _, hj := range req.Holes {
			h := hole.Hole{ID: hj.ID, X: hj.X, Y: hj.Y}
			if hj.Side != "" {
				if hj.Side == "left" {
					h.Side = hole.SideLeft
				} else if hj.Side == "right" {
					h.Side = hole.SideRight
				}
			} else {
				h.Side = hole.SideFromID(hj.ID)
			}
			if hj.Status != "" {
				st, err := hole.ParseStatus(hj.Status)
				if err != nil {
					return nil, err
				}
				h.Status = st
			}
			holes = append(holes, h)
		}
		return holes, nil
	}
	if s.st == nil {
		return nil, nil
	}
	if req.Reset {
		if err := s.st.ResetStatuses(); err != nil {
			return nil, err
		}
	}
	return s.st.LoadHoles()
}

func (s *Server) pauseHandler(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.engine.Pause, "paused")
}

func (s *Server) resumeHandler(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.engine.Resume, "resumed")
}

func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	runID := s.engine.RunID()
	if err := s.engine.Stop(); err != nil {
		s.writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	completed, _ := s.engine.Progress()
	if s.st != nil && runID != "" {
		if err := s.st.FinishRun(runID, completed); err != nil {
			monitoring.Logf("api: failed to finish run %s: %v", runID, err)
		}
	}
	s.writeJSON(w, map[string]string{"state": "stopped"})
}

func (s *Server) lifecycle(w http.ResponseWriter, r *http.Request, op func() error, state string) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := op(); err != nil {
		s.writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	s.writeJSON(w, map[string]string{"state": state})
}

func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	completed, total := s.engine.Progress()
	s.writeJSON(w, map[string]interface{}{
		"run_id":    s.engine.RunID(),
		"phase":     s.engine.Phase().String(),
		"running":   s.engine.Running(),
		"paused":    s.engine.Paused(),
		"completed": completed,
		"total":     total,
		// A plan with zero units must disable "start" in the UI.
		"can_start": !s.engine.Running() && s.reg.Len() > 0,
	})
}

func (s *Server) planHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	p := s.engine.Path()
	if len(p) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "no plan available; start a run first")
		return
	}

	type unitJSON struct {
		Holes  []string `json:"holes"`
		Paired bool     `json:"paired"`
		Sector string   `json:"sector"`
		RowKey float64  `json:"row_key"`
	}
	units := make([]unitJSON, len(p))
	for i, u := range p {
		ids := make([]string, len(u.Holes))
		for j, h := range u.Holes {
			ids[j] = h.ID
		}
		units[i] = unitJSON{Holes: ids, Paired: u.Paired, Sector: u.Sector.String(), RowKey: u.RowKey}
	}
	s.writeJSON(w, map[string]interface{}{
		"stats": plan.ComputeStats(p, s.tuning.GetCycle().Seconds()),
		"units": units,
	})
}

func (s *Server) holesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	holes := s.reg.Holes()
	out := make([]holeJSON, len(holes))
	for i, h := range holes {
		out[i] = holeJSON{ID: h.ID, X: h.X, Y: h.Y, Side: h.Side.String(), Status: h.Status.String()}
	}
	s.writeJSON(w, out)
}

func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.st == nil {
		s.writeJSONError(w, http.StatusNotFound, "no store configured")
		return
	}
	runs, err := s.st.ListRuns(50)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	s.writeJSON(w, runs)
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, s.tuning)
}
