package utils

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// GenerateID создает уникальный ID (UUIDv4)
func GenerateID() string {
	return uuid.NewString()
}

// RandomRange возвращает число из [min, max). При max <= min возвращает min.
func RandomRange(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// Clamp ограничивает v отрезком [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
