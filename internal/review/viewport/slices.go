package viewport

import (
	"strings"

	"github.com/colonyops/casereview/internal/core/caserecord"
)

// StudyFile is one uploaded file of a study.
type StudyFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SliceCountOptions tunes TotalSlices.
type SliceCountOptions struct {
	Default       int
	Min           int
	Max           int
	BytesPerSlice int64
}

// DefaultSliceCountOptions returns 7 slices by default and estimates in
// [5, 25] at one slice per 2 MiB.
func DefaultSliceCountOptions() SliceCountOptions {
	return SliceCountOptions{
		Default:       7,
		Min:           5,
		Max:           25,
		BytesPerSlice: 2 << 20,
	}
}

// TotalSlices derives the study's slice count once at screen entry. A count
// recorded on the case wins; otherwise DICOM-like uploads are estimated from
// their total size; otherwise the default applies.
func TotalSlices(rec caserecord.Record, files []StudyFile, opts SliceCountOptions) int {
	if rec.NumberOfSlices > 0 {
		return rec.NumberOfSlices
	}
	if n, ok := EstimateSlices(files, opts); ok {
		return n
	}
	return max(opts.Default, 1)
}

// EstimateSlices guesses a slice count from DICOM-like uploads. ok is false
// when no file looks like DICOM.
func EstimateSlices(files []StudyFile, opts SliceCountOptions) (n int, ok bool) {
	var total int64
	for _, f := range files {
		total += f.Size
		if isDicomLike(f.Name) {
			ok = true
		}
	}
	if !ok || opts.BytesPerSlice <= 0 {
		return 0, false
	}

	est := int(round(float64(total) / float64(opts.BytesPerSlice)))
	return min(max(est, opts.Min), opts.Max), true
}

func isDicomLike(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, ".dcm") ||
		strings.Contains(name, "dicom") ||
		strings.Contains(name, "mri")
}

// EntrySlice picks the slice shown when the screen opens: an explicit
// request wins over the handoff, which wins over slice 1. The result is
// clamped into range.
func EntrySlice(explicit int, handoff *caserecord.SelectionHandoff, totalSlices int) int {
	switch {
	case explicit > 0:
		return Clamp(explicit, totalSlices)
	case handoff != nil && handoff.HasSlice():
		return Clamp(handoff.RequestedSlice, totalSlices)
	}
	return 1
}

