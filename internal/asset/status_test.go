package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition_Allowed(t *testing.T) {
	tests := []struct {
		from, to Status
	}{
		{StatusPending, StatusInProgress},
		{StatusInProgress, StatusCompleted},
		{StatusPending, StatusSkipped},
		{StatusInProgress, StatusSkipped},
		{StatusCompleted, StatusSkipped},
		{StatusPending, StatusPending},
		{StatusCompleted, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.NoError(t, CheckTransition(tt.from, tt.to))
		})
	}
}

func TestCheckTransition_Rejected(t *testing.T) {
	tests := []struct {
		from, to Status
	}{
		{StatusPending, StatusCompleted},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusInProgress},
		{StatusSkipped, StatusPending},
		{StatusInProgress, StatusPending},
		{StatusPending, Status("archived")},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusSkipped.IsTerminal())
}

func TestEnums_Valid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("banner").Valid())
	assert.True(t, RiskMedium.Valid())
	assert.False(t, RiskLevel("critical").Valid())
	assert.True(t, MigrationNone.Valid())
	assert.False(t, MigrationPath("app_proxy").Valid())
	assert.True(t, ConfidenceLow.Valid())
	assert.False(t, Confidence("").Valid())
	assert.True(t, ContainerNone.Valid())
	assert.False(t, ContainerType("adobe").Valid())
}

func TestAnnotations_IsEmpty(t *testing.T) {
	assert.True(t, Annotations{}.IsEmpty())
	p := 10
	assert.False(t, Annotations{Priority: &p}.IsEmpty())
	assert.False(t, Annotations{Dependencies: []string{}}.IsEmpty())
}
