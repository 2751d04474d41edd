package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidHours(t *testing.T) {
	valid := []float64{0.25, 0.5, 0.75, 1, 8, 23.75, 24}
	for _, h := range valid {
		require.True(t, ValidHours(h), "hours=%v", h)
	}

	invalid := []float64{0, -0.25, 0.1, 0.2, 1.3, 2.26, 24.25, 48}
	for _, h := range invalid {
		require.False(t, ValidHours(h), "hours=%v", h)
	}
}
