package utils

import "math"

const (
	// PayoutDivisor reverses the pricing stack baked into the client fare:
	// 10% tax + 10% GST + 25% margin.
	PayoutDivisor = 1.45

	// MinimumFare is the lowest fare a booking can be created with, in AUD.
	MinimumFare = 10.0
)

// CalculateDriverPayout derives the driver's pay from the client-facing fare,
// rounded to 2 decimal places.
func CalculateDriverPayout(clientFare float64) float64 {
	net := clientFare / PayoutDivisor
	return math.Round(net*100) / 100
}
