package analytics

import (
	"context"
	"encoding/json"
	"net/http"

	"taskmind-backend/internal/log"
	"taskmind-backend/internal/models"
)

// Lister is the read side the stats endpoint needs.
type Lister interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
}

// StatsHandler serves GET /api/stats.
func StatsHandler(l Lister, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		list, err := l.ListTasks(r.Context())
		if err != nil {
			logger.Errorf("stats: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "DB error!"})
			return
		}

		_ = json.NewEncoder(w).Encode(Summarize(list))
	}
}
