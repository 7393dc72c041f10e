package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"taskmind-backend/internal/models"
	"taskmind-backend/internal/tasks"
)

// PushResult is the server's answer to a pushed entry.
type PushResult struct {
	Task    models.Task
	Created bool
}

// Remote is the Task Service as seen from the client.
type Remote interface {
	CreateTask(ctx context.Context, e Entry) (PushResult, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	Ping(ctx context.Context) error
}

// HTTPRemote talks to the REST API.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRemote) CreateTask(ctx context.Context, e Entry) (PushResult, error) {
	priority := string(e.Priority)
	status := string(e.Status)
	clientID := e.ClientID
	body := tasks.CreateTaskRequest{
		Title:       e.Title,
		Description: e.Description,
		Priority:    &priority,
		Status:      &status,
		ClientID:    &clientID,
	}

	var out tasks.CreateTaskResponse
	code, err := r.do(ctx, http.MethodPost, "/api/tasks", body, &out)
	if err != nil {
		return PushResult{}, err
	}
	return PushResult{Task: out.Task, Created: code == http.StatusCreated}, nil
}

func (r *HTTPRemote) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if _, err := r.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks GET /health; a nil error means the server is reachable.
func (r *HTTPRemote) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "build health request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "health")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("health: status %d", resp.StatusCode)
	}
	return nil
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return 0, errors.Wrap(err, "encode request")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, &body)
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e tasks.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, errors.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrapf(err, "decode %s %s", method, path)
	}
	return resp.StatusCode, nil
}
