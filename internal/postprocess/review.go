package postprocess

import (
	"strings"
)

// Review markers the model is asked to emit.
const (
	ReviewMarker = "---REVIEW---"
	CodeMarker   = "---CODE---"
)

// Review is a sentinel-delimited review response split into its sections.
type Review struct {
	Review string
	Code   string
}

// Empty reports whether both sections are empty.
func (r Review) Empty() bool {
	return r.Review == "" && r.Code == ""
}

// SplitReview splits a review response. The review section runs from the
// review marker to the code marker, or to the end of the text when the code
// marker is missing. The code section is everything after the code marker.
// Missing sections come back empty; SplitReview never fails.
func SplitReview(raw string) Review {
	var out Review

	if i := strings.Index(raw, ReviewMarker); i >= 0 {
		rest := raw[i+len(ReviewMarker):]
		if j := strings.Index(rest, CodeMarker); j >= 0 {
			rest = rest[:j]
		}
		out.Review = strings.TrimSpace(rest)
	}

	if i := strings.Index(raw, CodeMarker); i >= 0 {
		out.Code = strings.TrimSpace(raw[i+len(CodeMarker):])
	}

	return out
}
