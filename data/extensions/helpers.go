package extensions

import (
	"math"
	"strings"
	"time"
)

// FilterMultiple return all elements that satisfy the predicate
func FilterMultiple[T any](elements []T, predicate func(T) bool) (results []T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// IndexOfFold returns the index of the first string matching target case insensitively, -1 if none
func IndexOfFold(values []string, target string) int {
	for i, v := range values {
		if AreEqual(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

// AreEqual is a simple case invariant string comparason
func AreEqual(s, c string) bool {
	return strings.EqualFold(s, c)
}

// AreAllEqual checks if a slice is complised of the same element by value
func AreAllEqual[T comparable](values []T) bool {
	for i := 1; i < len(values); i++ {
		if values[i] != values[0] {
			return false
		}
	}
	return true
}

// FmtShort formats a time in a date only string
func FmtShort(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Finite drops NaN and infinite values, keeping order
func Finite(values []float64) []float64 {
	return FilterMultiple(values, func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
}

// Scale returns a new slice with every element multiplied by factor
func Scale(values []float64, factor float64) []float64 {
	res := make([]float64, len(values))
	for i, v := range values {
		res[i] = v * factor
	}
	return res
}

// NaNs returns a slice of length n filled with NaN
func NaNs(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = math.NaN()
	}
	return res
}
