package caserecord

import (
	"errors"

	"github.com/hay-kot/criterio"
)

// SelectionHandoff carries a case (and optionally a slice) from the screen
// that starts navigation to the screen that receives it. It is consumed on
// first read.
type SelectionHandoff struct {
	CaseID string `json:"caseId"`
	// RequestedSlice is 1-based; zero means no slice was requested.
	RequestedSlice int `json:"requestedSliceIndex,omitempty"`
}

// HasSlice reports whether a specific slice was requested.
func (h SelectionHandoff) HasSlice() bool {
	return h.RequestedSlice > 0
}

// Validate checks the payload before it is stored.
func (h SelectionHandoff) Validate() error {
	return criterio.ValidateStruct(
		ValidateCaseID(h.CaseID),
		criterio.Run("requested_slice_index", h.RequestedSlice, func(n int) error {
			if n < 0 {
				return errors.New("must be a positive slice index")
			}
			return nil
		}),
	)
}
