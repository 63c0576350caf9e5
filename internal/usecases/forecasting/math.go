package forecasting

import (
	"math"
)

// linearFit ajusta por mínimos quadrados uma reta y = slope*x + intercept
// sobre os pares (i, values[i]), com i = 0..n-1 em ordem cronológica
func linearFit(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		// Um único ponto: reta horizontal passando por ele
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// meanOf retorna a média aritmética dos valores
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// sampleStdDev retorna o desvio padrão amostral (divisor n-1). Com menos de
// dois valores o estimador é indefinido e o chamador deve tratar o caso
// antes; aqui retornamos 0 como salvaguarda
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := meanOf(values)

	var sum float64
	for _, v := range values {
		deviation := v - mean
		sum += deviation * deviation
	}

	return math.Sqrt(sum / float64(len(values)-1))
}
