// Package viewport keeps the displayed slice of a study in step with a
// single continuous scroll gesture and holds the viewer's display
// transforms.
package viewport

import "math"

// SliceFromScroll maps a scroll offset to a 1-based slice index. An
// unmeasured viewport (maxScroll <= 0) or a single-slice study always maps
// to slice 1.
func SliceFromScroll(scrollTop, maxScroll float64, totalSlices int) int {
	if totalSlices <= 1 || maxScroll <= 0 {
		return 1
	}
	progress := scrollTop / maxScroll
	slice := int(round(progress*float64(totalSlices-1))) + 1
	return Clamp(slice, totalSlices)
}

// ScrollFromSlice is the inverse of SliceFromScroll.
func ScrollFromSlice(slice int, maxScroll float64, totalSlices int) float64 {
	if totalSlices <= 1 || maxScroll <= 0 {
		return 0
	}
	progress := float64(Clamp(slice, totalSlices)-1) / float64(totalSlices-1)
	return progress * maxScroll
}

// Clamp limits slice to [1, totalSlices].
func Clamp(slice, totalSlices int) int {
	if totalSlices < 1 {
		totalSlices = 1
	}
	return min(max(slice, 1), totalSlices)
}

// round rounds half up, so 2.5 -> 3 and -0.5 -> 0.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
