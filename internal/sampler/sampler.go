// Package sampler draws integer level-up increments whose expectation
// matches a continuous target mean.
//
// A target mean m is served by the two legal values that bracket it, lower
// and upper, mixed with P(upper) = (m-lower)/(upper-lower). The expectation of
// the draw is exactly m (after clamping m into the legal range).
package sampler

import (
	"errors"
	"fmt"

	"petgrowth/internal/rng"
)

var (
	// ErrInvalidRange is returned when a range has min > max.
	ErrInvalidRange = errors.New("sampler: invalid range")
	// ErrEmptyDomain is returned when there are no legal values to sample from.
	ErrEmptyDomain = errors.New("sampler: empty domain")
)

// BuildAllowedRange returns the integers in [min, max] not listed in
// disallow, in increasing order. The result may be empty.
func BuildAllowedRange(min, max int, disallow []int) ([]int, error) {
	if min > max {
		return nil, fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, min, max)
	}
	blocked := make(map[int]bool, len(disallow))
	for _, v := range disallow {
		blocked[v] = true
	}
	allowed := make([]int, 0, max-min+1)
	for v := min; v <= max; v++ {
		if !blocked[v] {
			allowed = append(allowed, v)
		}
	}
	return allowed, nil
}

// Bracket returns the greatest allowed value <= m and the smallest allowed
// value >= m, after clamping m into [allowed[0], allowed[len-1]]. allowed
// must be sorted ascending and non-empty.
func Bracket(allowed []int, targetMean float64) (lower, upper int, mean float64) {
	mean = clamp(targetMean, float64(allowed[0]), float64(allowed[len(allowed)-1]))
	lower, upper = allowed[0], allowed[len(allowed)-1]
	for _, v := range allowed {
		if float64(v) <= mean {
			lower = v
		}
		if float64(v) >= mean {
			upper = v
			break
		}
	}
	return lower, upper, mean
}

// SampleFromMean draws one value from allowed whose expectation equals
// targetMean clamped to the allowed range. It consumes exactly one draw from
// src, or none when the clamped mean lands on an allowed value or allowed
// has a single element.
func SampleFromMean(src rng.Source, allowed []int, targetMean float64) (int, error) {
	switch len(allowed) {
	case 0:
		return 0, ErrEmptyDomain
	case 1:
		return allowed[0], nil
	}

	lower, upper, m := Bracket(allowed, targetMean)
	if lower == upper {
		return lower, nil
	}

	p := (m - float64(lower)) / float64(upper-lower)
	if src.Float64() < p {
		return upper, nil
	}
	return lower, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
