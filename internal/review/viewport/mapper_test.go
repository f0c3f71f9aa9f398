package viewport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceFromScroll_RoundTrip(t *testing.T) {
	maxes := []float64{0.5, 1, 10, 420.5, 1980, 1e6}
	for total := 1; total <= 40; total++ {
		for _, m := range maxes {
			for slice := 1; slice <= total; slice++ {
				scroll := ScrollFromSlice(slice, m, total)
				got := SliceFromScroll(scroll, m, total)
				if !assert.Equal(t, slice, got, "total=%d max=%v slice=%d", total, m, slice) {
					return
				}
			}
		}
	}
}

func TestSingleSliceIsConstant(t *testing.T) {
	for _, m := range []float64{-5, 0, 1, 1980} {
		for _, scroll := range []float64{-10, 0, 7, 1e9} {
			assert.Equal(t, 1, SliceFromScroll(scroll, m, 1))
		}
		for _, slice := range []int{-1, 0, 1, 9} {
			assert.Zero(t, ScrollFromSlice(slice, m, 1))
		}
	}
}

func TestSliceFromScroll_UnmeasuredViewport(t *testing.T) {
	assert.Equal(t, 1, SliceFromScroll(300, 0, 7))
	assert.Equal(t, 1, SliceFromScroll(300, -1, 7))
	assert.Zero(t, ScrollFromSlice(5, 0, 7))
}

func TestSliceFromScroll(t *testing.T) {
	tests := []struct {
		scroll, max float64
		total, want int
	}{
		{scroll: 0, max: 1980, total: 7, want: 1},
		{scroll: 1980, max: 1980, total: 7, want: 7},
		{scroll: 990, max: 1980, total: 7, want: 4},
		// 0.5 of a step rounds up
		{scroll: 165, max: 1980, total: 7, want: 2},
		{scroll: 164, max: 1980, total: 7, want: 1},
		{scroll: 5000, max: 1980, total: 7, want: 7},
		{scroll: -30, max: 1980, total: 7, want: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%v/%d", tt.scroll, tt.max, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, SliceFromScroll(tt.scroll, tt.max, tt.total))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 7))
	assert.Equal(t, 7, Clamp(10, 7))
	assert.Equal(t, 3, Clamp(3, 7))
	assert.Equal(t, 1, Clamp(3, 0))
}
