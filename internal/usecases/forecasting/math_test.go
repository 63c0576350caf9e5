package forecasting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearFit(t *testing.T) {
	tests := []struct {
		name              string
		values            []float64
		expectedSlope     float64
		expectedIntercept float64
	}{
		{
			name:              "Reta crescente perfeita",
			values:            []float64{100, 110, 120, 130, 140, 150},
			expectedSlope:     10,
			expectedIntercept: 100,
		},
		{
			name:              "Reta decrescente perfeita",
			values:            []float64{150, 140, 130},
			expectedSlope:     -10,
			expectedIntercept: 150,
		},
		{
			name:              "Série constante - inclinação zero",
			values:            []float64{5, 5, 5},
			expectedSlope:     0,
			expectedIntercept: 5,
		},
		{
			name:              "Crescimento acelerado - intercepto negativo",
			values:            []float64{0, 10, 50},
			expectedSlope:     25,
			expectedIntercept: -5,
		},
		{
			name:              "Ponto único - reta horizontal passando por ele",
			values:            []float64{42},
			expectedSlope:     0,
			expectedIntercept: 42,
		},
		{
			name:              "Sem valores",
			values:            []float64{},
			expectedSlope:     0,
			expectedIntercept: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slope, intercept := linearFit(tt.values)

			assert.Equal(t, tt.expectedSlope, slope)
			assert.Equal(t, tt.expectedIntercept, intercept)
		})
	}
}

func TestMeanOf(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "Média de três valores",
			values:   []float64{100, 110, 120},
			expected: 110,
		},
		{
			name:     "Valor único",
			values:   []float64{7},
			expected: 7,
		},
		{
			name:     "Valores fracionários",
			values:   []float64{1.5, 2.5},
			expected: 2.0,
		},
		{
			name:     "Sem valores",
			values:   []float64{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, meanOf(tt.values))
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "Dois valores dispersos",
			values:   []float64{100, 200},
			expected: 70.710678118654755, // sqrt(5000)
		},
		{
			name:     "Seis meses em progressão",
			values:   []float64{100, 110, 120, 130, 140, 150},
			expected: 18.708286933869708, // sqrt(350)
		},
		{
			name:     "Série constante - dispersão zero",
			values:   []float64{8, 8, 8},
			expected: 0,
		},
		{
			name:     "Valor único - estimador indefinido, salvaguarda em zero",
			values:   []float64{1000},
			expected: 0,
		},
		{
			name:     "Sem valores",
			values:   []float64{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, sampleStdDev(tt.values), 1e-9)
		})
	}
}
