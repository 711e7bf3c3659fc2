package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleEmbedStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "embedding stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": s.model,
		"stats": s.stats.Snapshot(),
	})
}
