package extensions

import (
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}

// AssertNear compares floats within tolerance, treating two NaNs as equal
func AssertNear(t *testing.T, name string, expected, actual, tolerance float64) {
	t.Helper()
	if math.IsNaN(expected) && math.IsNaN(actual) {
		return
	}
	if math.IsNaN(expected) != math.IsNaN(actual) || math.Abs(expected-actual) > tolerance {
		t.Fatalf("value mismatch for %s, expected %v, got %v (tolerance %v)", name, expected, actual, tolerance)
	}
}

// AssertSeriesNear compares float slices element wise with AssertNear
func AssertSeriesNear(t *testing.T, name string, expected, actual []float64, tolerance float64) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("length mismatch for %s, expected %d, got %d", name, len(expected), len(actual))
	}
	for i := range expected {
		if math.IsNaN(expected[i]) && math.IsNaN(actual[i]) {
			continue
		}
		if math.IsNaN(expected[i]) != math.IsNaN(actual[i]) || math.Abs(expected[i]-actual[i]) > tolerance {
			t.Fatalf("value mismatch for %s[%d], expected %v, got %v", name, i, expected[i], actual[i])
		}
	}
}
