package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"negative clamps to zero", -5, 0},
		{"zero passes through", 0, 0},
		{"mid-range passes through", 75, 75},
		{"hundred passes through", 100, 100},
		{"over-range clamps to hundred", 150, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampScore(tt.input))
		})
	}
}

func TestNormalizeImpact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"high preserved", "high", ImpactHigh},
		{"medium preserved", "medium", ImpactMedium},
		{"low preserved", "low", ImpactLow},
		{"unknown maps to low", "critical", ImpactLow},
		{"empty maps to low", "", ImpactLow},
		{"case-sensitive, uppercase maps to low", "HIGH", ImpactLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeImpact(tt.input))
		})
	}
}
