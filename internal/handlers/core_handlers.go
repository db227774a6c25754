package handlers

import (
	"net/http"
	"time"

	"minbar-hub/internal/engine/actors"
)

// HandleHealth handles health check requests, reporting live counts from
// both actors so the check exercises the full request path.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userCount, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.GetCountsMsg{})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		postCount, appErr := s.ask(s.Engine.GetContentActor(), &actors.GetCountsMsg{})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "healthy",
			"user_count":    userCount,
			"post_count":    postCount,
			"registrations": s.Metrics.OperationCount("register_user"),
			"submissions":   s.Metrics.OperationCount("create_post"),
			"uptime":        s.Metrics.Uptime().String(),
			"server_time":   time.Now(),
		})
	}
}
