package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"high", PriorityHigh},
		{" LOW ", PriorityLow},
		{"medium", PriorityMedium},
		{"", PriorityMedium},
		{"urgent", PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePriority(tt.in))
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"pending", StatusPending},
		{"in-progress", StatusInProgress},
		{"In Progress", StatusInProgress},
		{"in_progress", StatusInProgress},
		{"COMPLETED", StatusCompleted},
		{"done", StatusPending},
		{"", StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.in))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "general", NormalizeCategory("   "))
	assert.Equal(t, "learning", NormalizeCategory(" Learning "))
}

func TestFallbackEnrichment(t *testing.T) {
	fb := FallbackEnrichment()
	assert.Equal(t, PriorityMedium, fb.Priority)
	assert.Equal(t, StatusPending, fb.Status)
	assert.Equal(t, "general", fb.Category)
	assert.Nil(t, fb.Reason)
	assert.True(t, fb.Fallback)
}

func TestOptionalText(t *testing.T) {
	blank := "  "
	word := " hi "
	assert.Nil(t, OptionalText(nil))
	assert.Nil(t, OptionalText(&blank))
	assert.Equal(t, "hi", *OptionalText(&word))
}

func TestFieldsEmpty(t *testing.T) {
	assert.True(t, Fields{}.Empty())
	title := "x"
	assert.False(t, Fields{Title: &title}.Empty())
}
