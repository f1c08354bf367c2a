package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/ziadkadry99/navpatch/internal/navpatch"
	"github.com/ziadkadry99/navpatch/internal/redirect"
)

type tableResponse struct {
	Mode    redirect.Mode    `json:"mode"`
	Entries []redirect.Entry `json:"entries"`
}

type planResponse struct {
	Path        string                `json:"path"`
	Assignments []navpatch.Assignment `json:"assignments"`
	Pending     []navpatch.Assignment `json:"pending"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	table := s.patcher.Table()
	if table == nil {
		writeJSON(w, http.StatusOK, tableResponse{})
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{Mode: table.Mode(), Entries: table.Entries()})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	file, err := s.resolve(p)
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	f, err := os.Open(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	assignments, err := s.patcher.Plan(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	resp := planResponse{
		Path:        p,
		Assignments: assignments,
		Pending:     navpatch.Pending(assignments),
	}
	if resp.Assignments == nil {
		resp.Assignments = []navpatch.Assignment{}
	}
	if resp.Pending == nil {
		resp.Pending = []navpatch.Assignment{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "ledger not configured", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := s.ledger.LatestRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
