package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"taskmind-backend/internal/log"
	"taskmind-backend/internal/models"
)

// Classifier attaches priority, status, category and reason to a task. It must
// not fail; a broken model yields the fallback enrichment.
type Classifier interface {
	Classify(ctx context.Context, in models.TaskInput) models.Enrichment
}

// Suggester proposes a task from free text.
type Suggester interface {
	Suggest(ctx context.Context, query string) (models.Suggestion, error)
}

type Service struct {
	store      Store
	classifier Classifier
	suggester  Suggester
	logger     log.Logger
	workers    int
}

type ServiceOptions struct {
	Logger log.Logger
	// Workers bounds how many tasks the optimize sweep classifies at once.
	Workers int
}

func NewService(store Store, classifier Classifier, suggester Suggester, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		store:      store,
		classifier: classifier,
		suggester:  suggester,
		logger:     logger,
		workers:    workers,
	}
}

type CreateInput struct {
	Title       string
	Description *string
	Priority    *string
	Status      *string
	// ClientID makes creation idempotent for offline clients that resend.
	ClientID *string
}

type CreateResult struct {
	Task    models.Task
	Created bool
}

// CreateTask validates, enriches and inserts a task. When ClientID matches an
// existing row that row is returned and nothing is written.
func (s *Service) CreateTask(ctx context.Context, in CreateInput) (CreateResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return CreateResult{}, &ValidationError{Message: "Title is required!"}
	}
	clientID := models.OptionalText(in.ClientID)

	if clientID != nil {
		existing, err := s.store.GetByClientID(ctx, *clientID)
		if err == nil {
			s.logger.Infof("task with client_id %s already stored as %d", *clientID, existing.ID)
			return CreateResult{Task: existing}, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return CreateResult{}, storeErr("lookup client id", err)
		}
	}

	task := models.Task{
		ClientID:    clientID,
		Title:       title,
		Description: models.OptionalText(in.Description),
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
		Category:    models.DefaultCategory,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	if in.Priority != nil {
		task.Priority = models.NormalizePriority(*in.Priority)
	}
	if in.Status != nil {
		task.Status = models.NormalizeStatus(*in.Status)
	}

	enriched := s.classifier.Classify(ctx, models.TaskInput{Title: task.Title, Description: task.Description})
	task = applyEnrichment(task, enriched)

	id, err := s.store.Insert(ctx, task)
	if err != nil {
		// a concurrent push with the same client_id may have won the insert
		if clientID != nil {
			if existing, getErr := s.store.GetByClientID(ctx, *clientID); getErr == nil {
				return CreateResult{Task: existing}, nil
			}
		}
		return CreateResult{}, storeErr("insert task", err)
	}
	task.ID = id

	s.logger.Infof("created task %d %q (priority=%s status=%s category=%s fallback=%t)",
		id, task.Title, task.Priority, task.Status, task.Category, enriched.Fallback)
	return CreateResult{Task: task, Created: true}, nil
}

// applyEnrichment lets the classifier's values win over whatever the caller sent.
func applyEnrichment(t models.Task, e models.Enrichment) models.Task {
	t.Priority = e.Priority
	t.Status = e.Status
	t.Category = e.Category
	t.Reason = e.Reason
	return t
}

type UpdateInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
}

// UpdateTask applies a partial, user-initiated edit. Enrichment is not re-run
// and category/reason are never touched here.
func (s *Service) UpdateTask(ctx context.Context, id int64, in UpdateInput) (int64, error) {
	var f models.Fields
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return 0, &ValidationError{Message: "Title is required!"}
		}
		f.Title = &title
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		f.Description = &d
	}
	if in.Priority != nil {
		p := models.NormalizePriority(*in.Priority)
		f.Priority = &p
	}
	if in.Status != nil {
		st := models.NormalizeStatus(*in.Status)
		f.Status = &st
	}

	n, err := s.store.Update(ctx, id, f)
	if err != nil {
		return 0, storeErr("update task", err)
	}
	if n == 0 {
		return 0, &NotFoundError{ID: id}
	}
	return n, nil
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return storeErr("delete task", err)
	}
	if n == 0 {
		return &NotFoundError{ID: id}
	}
	s.logger.Infof("deleted task %d", id)
	return nil
}

// ListTasks returns every task, newest first.
func (s *Service) ListTasks(ctx context.Context) ([]models.Task, error) {
	out, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	return out, nil
}

func (s *Service) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := s.store.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Task{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return models.Task{}, storeErr("get task", err)
	}
	return t, nil
}

// Suggest turns free text into an unpersisted title and description. A broken
// model reply is surfaced as UpstreamError since there is no safe default.
func (s *Service) Suggest(ctx context.Context, query string) (models.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Suggestion{}, &ValidationError{Message: "Query is required!"}
	}
	sug, err := s.suggester.Suggest(ctx, query)
	if err != nil {
		return models.Suggestion{}, &UpstreamError{Err: err}
	}
	return sug, nil
}
