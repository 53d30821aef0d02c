package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  RiskTier
	}{
		{0, TierLow},
		{39.999, TierLow},
		{40.0, TierModerate},
		{55, TierModerate},
		{69.999, TierModerate},
		{70.0, TierHigh},
		{100, TierHigh},
		// Total over all reals, even outside the clamped range.
		{-5, TierLow},
		{140, TierHigh},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %g", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, TierForScore(tt.score))
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", &NotFoundError{NeighborhoodID: "nonexistent-123"})
		assert.True(t, IsNotFound(err))
		assert.False(t, IsInvalidInput(err))
		assert.Contains(t, err.Error(), "nonexistent-123")
	})

	t.Run("invalid input", func(t *testing.T) {
		err := &InvalidInputError{Field: "wind_speed", Value: -3, Reason: "wind speed cannot be negative"}
		assert.True(t, IsInvalidInput(err))
		assert.False(t, IsNotFound(err))
	})

	t.Run("configuration wraps cause", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := &ConfigurationError{Detail: "parse neighborhoods.json", Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "neighborhoods.json")
	})
}
