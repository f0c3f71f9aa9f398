package viewport

// RenderParams is everything the image surface needs to draw the current
// view.
type RenderParams struct {
	Slice           int     `json:"slice"`
	ZoomLevel       float64 `json:"zoomLevel"`
	RotationDegrees int     `json:"rotationDegrees"`
	Brightness      int     `json:"brightness"`
	Contrast        int     `json:"contrast"`
}

// Surface draws slices. It is otherwise opaque to the viewport.
type Surface interface {
	Render(p RenderParams)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(p RenderParams)

func (f SurfaceFunc) Render(p RenderParams) { f(p) }

// Options bound the display transforms and size the scroll track.
type Options struct {
	ZoomStep float64
	ZoomMin  float64
	ZoomMax  float64

	// VirtualHeight is the height of the scroll content and ViewportHeight
	// the visible window; their difference is the scroll range.
	VirtualHeight  float64
	ViewportHeight float64
}

// DefaultOptions matches the reference viewer: zoom 0.25x to 5x in quarter
// steps over a 2400-high track seen through a 420-high window.
func DefaultOptions() Options {
	return Options{
		ZoomStep:       0.25,
		ZoomMin:        0.25,
		ZoomMax:        5,
		VirtualHeight:  2400,
		ViewportHeight: 420,
	}
}

// MaxScroll is the scroll range implied by the track and window heights.
func (o Options) MaxScroll() float64 {
	return max(o.VirtualHeight-o.ViewportHeight, 0)
}

const (
	neutralLevel = 100
	minLevel     = 0
	maxLevel     = 200
)

// Viewport holds the current slice, scroll offset and display transforms.
// Every change that alters RenderParams is pushed to the surface once.
type Viewport struct {
	opts    Options
	surface Surface

	total     int
	maxScroll float64
	scrollTop float64

	slice      int
	zoom       float64
	rotation   int
	brightness int
	contrast   int
}

// New returns a viewport over totalSlices slices positioned at start. The
// total is fixed for the viewport's life.
func New(totalSlices, start int, opts Options, surface Surface) *Viewport {
	if surface == nil {
		surface = SurfaceFunc(func(RenderParams) {})
	}
	v := &Viewport{
		opts:      opts,
		surface:   surface,
		total:     max(totalSlices, 1),
		maxScroll: opts.MaxScroll(),
	}
	v.resetTransforms()
	v.slice = Clamp(start, v.total)
	v.seek()
	v.surface.Render(v.Params())
	return v
}

// Params returns the current render parameters.
func (v *Viewport) Params() RenderParams {
	return RenderParams{
		Slice:           v.slice,
		ZoomLevel:       v.zoom,
		RotationDegrees: v.rotation,
		Brightness:      v.brightness,
		Contrast:        v.contrast,
	}
}

func (v *Viewport) Slice() int { return v.slice }
func (v *Viewport) Total() int { return v.total }
func (v *Viewport) ScrollTop() float64 { return v.scrollTop }
func (v *Viewport) MaxScroll() float64 { return v.maxScroll }
func (v *Viewport) CanZoomIn() bool { return v.zoom < v.opts.ZoomMax }
func (v *Viewport) CanZoomOut() bool { return v.zoom > v.opts.ZoomMin }
func (v *Viewport) AtFirst() bool { return v.slice == 1 }
func (v *Viewport) AtLast() bool { return v.slice == v.total }
func (v *Viewport) Options() Options { return v.opts }
func (v *Viewport) Progress() float64 { return progress(v.slice, v.total) }
func (v *Viewport) ZoomPercent() int { return int(round(v.zoom * 100)) }
func (v *Viewport) Rotation() int { return v.rotation }
func (v *Viewport) Levels() (b, c int) { return v.brightness, v.contrast }

func progress(slice, total int) float64 {
	if total <= 1 {
		return 0
	}
	return float64(slice-1) / float64(total-1)
}

// Resize changes the scroll range once the viewport is measured and
// re-seeks to the current slice.
func (v *Viewport) Resize(maxScroll float64) {
	v.maxScroll = max(maxScroll, 0)
	v.seek()
}

// OnScroll follows a user scroll gesture. The slice follows the offset but
// the offset is never re-seeked, so the gesture is not fought. It reports
// whether the slice changed. Scrolls before the viewport has a scroll range
// are ignored.
func (v *Viewport) OnScroll(scrollTop float64) bool {
	if v.maxScroll <= 0 {
		return false
	}
	v.scrollTop = min(max(scrollTop, 0), v.maxScroll)
	next := SliceFromScroll(v.scrollTop, v.maxScroll, v.total)
	if next == v.slice {
		return false
	}
	v.slice = next
	v.surface.Render(v.Params())
	return true
}

// Next moves one slice forward, stopping at the last slice.
func (v *Viewport) Next() bool { return v.Select(v.slice + 1) }

// Prev moves one slice back, stopping at the first slice.
func (v *Viewport) Prev() bool { return v.Select(v.slice - 1) }

// Select jumps to slice and re-seeks the scroll offset to match. It reports
// whether the slice changed.
func (v *Viewport) Select(slice int) bool {
	return v.apply(func() {
		v.slice = Clamp(slice, v.total)
		v.seek()
	})
}

// Reset returns to slice 1 with neutral transforms and the scroll offset at
// the top.
func (v *Viewport) Reset() bool {
	return v.apply(func() {
		v.slice = 1
		v.scrollTop = 0
		v.resetTransforms()
	})
}

// ZoomIn steps the zoom level up, capped at the maximum.
func (v *Viewport) ZoomIn() bool {
	return v.apply(func() { v.zoom = min(v.zoom+v.opts.ZoomStep, v.opts.ZoomMax) })
}

// ZoomOut steps the zoom level down, floored at the minimum.
func (v *Viewport) ZoomOut() bool {
	return v.apply(func() { v.zoom = max(v.zoom-v.opts.ZoomStep, v.opts.ZoomMin) })
}

// RotateClockwise turns the image 90 degrees clockwise.
func (v *Viewport) RotateClockwise() bool {
	return v.apply(func() { v.rotation = (v.rotation + 90) % 360 })
}

// RotateCounterClockwise turns the image 90 degrees counter-clockwise.
func (v *Viewport) RotateCounterClockwise() bool {
	return v.apply(func() { v.rotation = (v.rotation - 90 + 360) % 360 })
}

// SetBrightness sets brightness in percent, clamped to [0, 200].
func (v *Viewport) SetBrightness(pct int) bool {
	return v.apply(func() { v.brightness = min(max(pct, minLevel), maxLevel) })
}

// SetContrast sets contrast in percent, clamped to [0, 200].
func (v *Viewport) SetContrast(pct int) bool {
	return v.apply(func() { v.contrast = min(max(pct, minLevel), maxLevel) })
}

// apply runs mutate and renders when the parameters changed.
func (v *Viewport) apply(mutate func()) bool {
	before := v.Params()
	mutate()
	after := v.Params()
	if after == before {
		return false
	}
	v.surface.Render(after)
	return true
}

func (v *Viewport) seek() {
	v.scrollTop = ScrollFromSlice(v.slice, v.maxScroll, v.total)
}

func (v *Viewport) resetTransforms() {
	v.zoom = 1
	v.rotation = 0
	v.brightness = neutralLevel
	v.contrast = neutralLevel
}
