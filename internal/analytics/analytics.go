package analytics

import (
	"sort"
	"strings"

	"taskmind-backend/internal/models"
)

// Summary is a point-in-time breakdown of the task list.
type Summary struct {
	Total      int            `json:"total"`
	ByPriority map[string]int `json:"by_priority"`
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
	// Completion is completed/total, 0 for an empty list.
	Completion float64  `json:"completion"`
	Categories []string `json:"categories"`
}

// Summarize counts tasks per priority, status and category. Every known
// priority and status is present in the maps even when its count is zero.
func Summarize(tasks []models.Task) Summary {
	s := Summary{
		Total: len(tasks),
		ByPriority: map[string]int{
			string(models.PriorityLow):    0,
			string(models.PriorityMedium): 0,
			string(models.PriorityHigh):   0,
		},
		ByStatus: map[string]int{
			string(models.StatusPending):    0,
			string(models.StatusInProgress): 0,
			string(models.StatusCompleted):  0,
		},
		ByCategory: map[string]int{},
		Categories: []string{},
	}

	for _, t := range tasks {
		s.ByPriority[string(t.Priority)]++
		s.ByStatus[string(t.Status)]++
		s.ByCategory[categoryKey(t.Category)]++
	}

	for c := range s.ByCategory {
		s.Categories = append(s.Categories, c)
	}
	sort.Strings(s.Categories)

	if s.Total > 0 {
		s.Completion = float64(s.ByStatus[string(models.StatusCompleted)]) / float64(s.Total)
	}
	return s
}

func categoryKey(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return models.DefaultCategory
	}
	return c
}
