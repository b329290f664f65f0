package models

import (
	"sort"
	"strings"
)

// Track is a single entry of a soundtrack: an externally hosted piece of
// media tied (optionally) to a page range of the issue.
//
// Tracks are owned exclusively by their parent [Soundtrack] and are only ever
// written as part of a soundtrack write.
type Track struct {
	ID         string
	Title      string
	YouTubeURL string
	PageStart  *int // Optional; set together with PageEnd or not at all
	PageEnd    *int
	OrderIndex int // Authoritative playback order within the soundtrack
}

// Validate checks a track's own invariants.
func (t Track) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errBlank("track title")
	}
	if strings.TrimSpace(t.YouTubeURL) == "" {
		return errBlank("track URL")
	}
	if (t.PageStart == nil) != (t.PageEnd == nil) {
		return errPageRange
	}
	return nil
}

// SortTracks orders tracks by their order index. The sort is stable so ties
// keep insertion order.
func SortTracks(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].OrderIndex < tracks[j].OrderIndex
	})
}
