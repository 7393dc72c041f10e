package ai

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"taskmind-backend/internal/models"
)

// ErrMalformed marks model output that is not the JSON object we asked for.
var ErrMalformed = errors.New("model returned malformed output")

// DecodeEnrichment parses a classification reply. The reply must be a JSON
// object; each field is then checked on its own and replaced with its default
// when missing, of the wrong type, or outside its enum.
func DecodeEnrichment(raw string) (models.Enrichment, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return models.Enrichment{}, err
	}

	out := models.Enrichment{
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
		Category: models.DefaultCategory,
	}
	if s, ok := stringField(fields, "priority"); ok {
		out.Priority = models.NormalizePriority(s)
	}
	if s, ok := stringField(fields, "status"); ok {
		out.Status = models.NormalizeStatus(s)
	}
	if s, ok := stringField(fields, "category"); ok {
		out.Category = models.NormalizeCategory(s)
	}
	if s, ok := stringField(fields, "reason"); ok {
		out.Reason = models.OptionalText(&s)
	}
	return out, nil
}

// DecodeSuggestion parses a suggestion reply. Unlike enrichment there is no
// safe default, so a missing or blank title is an error.
func DecodeSuggestion(raw string) (models.Suggestion, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return models.Suggestion{}, err
	}

	title, ok := stringField(fields, "title")
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return models.Suggestion{}, errors.Wrap(ErrMalformed, "suggestion has no title")
	}

	var desc string
	if v, present := fields["description"]; present && string(v) != "null" {
		if err := json.Unmarshal(v, &desc); err != nil {
			return models.Suggestion{}, errors.Wrap(ErrMalformed, "suggestion description is not a string")
		}
	}

	return models.Suggestion{Title: title, Description: strings.TrimSpace(desc)}, nil
}

func decodeObject(raw string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if fields == nil {
		return nil, errors.Wrap(ErrMalformed, "reply is null")
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}
