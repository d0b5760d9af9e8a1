package model

import "strings"

// Path utilities: canonicalize and split/merge hierarchical paths into
// (container, name) pairs. Pure functions, no state.
//
// The root collection is not addressed through Split/Merge; it is flagged
// with IsRoot and stored under the sentinel (RootContainer, RootName) pair.

const (
	// RootPath is the canonical path of the root collection.
	RootPath = "/"

	// RootContainer is the sentinel container of the root collection row.
	// No real path can equal it because canonical containers start with "/".
	RootContainer = "null"

	// RootName is the name of the root collection row.
	RootName = "Home"
)

// Normalize collapses redundant separators and guarantees a single leading
// slash with no trailing slash (except for the root path itself).
func Normalize(path string) string {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return RootPath
	}
	return "/" + strings.Join(segments, "/")
}

// Split separates the final segment of a path from its container prefix.
//
// Split("/a/b/c") returns ("/a/b", "c"); Split("/a") returns ("/", "a").
// Split on the root path is undefined: root is addressed by its flag, not
// by a (container, name) pair, so callers must short-circuit "/" before
// splitting.
func Split(path string) (container, name string) {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return RootPath, ""
	}
	name = segments[len(segments)-1]
	if len(segments) == 1 {
		return RootPath, name
	}
	return "/" + strings.Join(segments[:len(segments)-1], "/"), name
}

// Merge joins a container path and a leaf name, collapsing redundant
// separators. Merge(Split(p)) == Normalize(p) for every path with at least
// one segment.
func Merge(container, name string) string {
	return Normalize(container + "/" + name)
}

func splitSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
