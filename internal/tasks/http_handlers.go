package tasks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	msgTaskNotFound  = "Task not found!"
	msgInvalidID     = "Invalid task id!"
	msgInvalidJSON   = "Invalid JSON!"
	msgDBError       = "DB error!"
	msgSuggestFailed = "AI suggestion failed!"
	msgOptimizeFail  = "Optimize failed!"
)

// Routes registers the task API on mux.
func Routes(mux *http.ServeMux, svc *Service) {
	mux.HandleFunc("GET /health", HealthHandler)
	mux.HandleFunc("GET /api/test", AliveHandler)
	mux.HandleFunc("GET /api/tasks", GetTasksHandler(svc))
	mux.HandleFunc("GET /api/tasks/{id}", GetTaskHandler(svc))
	mux.HandleFunc("POST /api/tasks", CreateTaskHandler(svc))
	mux.HandleFunc("PUT /api/tasks/{id}", UpdateTaskHandler(svc))
	mux.HandleFunc("DELETE /api/tasks/{id}", DeleteTaskHandler(svc))
	mux.HandleFunc("POST /api/ai-suggest", SuggestHandler(svc))
	mux.HandleFunc("GET /api/optimize", OptimizeHandler(svc))
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func AliveHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Server alive!",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func GetTasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListTasks(r.Context())
		if err != nil {
			svc.fail(w, err, msgDBError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		t, err := svc.GetTask(r.Context(), id)
		if err != nil {
			svc.fail(w, err, msgDBError)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func CreateTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		res, err := svc.CreateTask(r.Context(), CreateInput{
			Title:       body.Title,
			Description: body.Description,
			Priority:    body.Priority,
			Status:      body.Status,
			ClientID:    body.ClientID,
		})
		if err != nil {
			svc.fail(w, err, "Failed to create task!")
			return
		}

		if !res.Created {
			writeJSON(w, http.StatusOK, CreateTaskResponse{
				ID:      res.Task.ID,
				Message: "Task already exists!",
				Task:    res.Task,
			})
			return
		}
		writeJSON(w, http.StatusCreated, CreateTaskResponse{
			ID:      res.Task.ID,
			Message: "Task created successfully!",
			Task:    res.Task,
		})
	}
}

func UpdateTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var body UpdateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		changes, err := svc.UpdateTask(r.Context(), id, UpdateInput{
			Title:       body.Title,
			Description: body.Description,
			Priority:    body.Priority,
			Status:      body.Status,
		})
		if err != nil {
			svc.fail(w, err, "Failed to update task!")
			return
		}
		writeJSON(w, http.StatusOK, UpdateTaskResponse{
			Message: "Task updated successfully!",
			Changes: changes,
		})
	}
}

func DeleteTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteTask(r.Context(), id); err != nil {
			svc.fail(w, err, "Failed to delete task!")
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Task deleted successfully!"})
	}
}

func SuggestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body SuggestRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}
		sug, err := svc.Suggest(r.Context(), body.Query)
		if err != nil {
			svc.fail(w, err, msgSuggestFailed)
			return
		}
		writeJSON(w, http.StatusOK, sug)
	}
}

func OptimizeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.OptimizeAll(r.Context())
		if err != nil {
			svc.fail(w, err, msgOptimizeFail)
			return
		}
		writeJSON(w, http.StatusOK, OptimizeResponse{
			Message: fmt.Sprintf("Optimized %d tasks!", res.Count),
			Count:   res.Count,
			Failed:  res.Failed,
		})
	}
}

// fail writes err using the taxonomy. Validation messages are shown as-is;
// everything on the 5xx side is logged and replaced with opaque.
func (s *Service) fail(w http.ResponseWriter, err error, opaque string) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusBadRequest:
		var v *ValidationError
		if errors.As(err, &v) {
			writeError(w, status, v.Message)
			return
		}
		writeError(w, status, err.Error())
	case http.StatusNotFound:
		writeError(w, status, msgTaskNotFound)
	default:
		s.logger.Errorf("%s: %v", opaque, err)
		writeError(w, status, opaque)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
