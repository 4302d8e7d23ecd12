package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDriverPayout(t *testing.T) {
	tests := []struct {
		name string
		fare float64
		want float64
	}{
		{"standard fare", 100, 68.97},
		{"minimum fare", 10, 6.90},
		{"divides evenly", 145, 100},
		{"rounds down", 99.99, 68.96},
		{"airport run", 150.50, 103.79},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateDriverPayout(tt.fare))
		})
	}
}
