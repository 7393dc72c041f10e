package tasks

import "taskmind-backend/internal/models"

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	ClientID    *string `json:"client_id,omitempty"`
}

type CreateTaskResponse struct {
	ID      int64       `json:"id"`
	Message string      `json:"message"`
	Task    models.Task `json:"task"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type UpdateTaskResponse struct {
	Message string `json:"message"`
	Changes int64  `json:"changes"`
}

type SuggestRequest struct {
	Query string `json:"query"`
}

type OptimizeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
