package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmind-backend/internal/models"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestPrintTasks(t *testing.T) {
	list := []models.Task{{
		ID:        3,
		Title:     "Water plants",
		Priority:  models.PriorityLow,
		Status:    models.StatusPending,
		Category:  "personal",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, printTasks(&buf, list))
	assert.Contains(t, buf.String(), "TITLE")
	assert.Contains(t, buf.String(), "Water plants")
	assert.Contains(t, buf.String(), "personal")

	err := printTasks(failingWriter{}, list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")
}
