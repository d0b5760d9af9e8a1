package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"root", "/", "/"},
		{"empty", "", "/"},
		{"simple", "/a/b", "/a/b"},
		{"missing leading slash", "a/b", "/a/b"},
		{"trailing slash", "/a/b/", "/a/b"},
		{"duplicate slashes", "//a///b", "/a/b"},
		{"only slashes", "///", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		wantContainer string
		wantName      string
	}{
		{"top level", "/a", "/", "a"},
		{"nested", "/a/b/c", "/a/b", "c"},
		{"redundant slashes", "//a//b//", "/a", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, name := Split(tt.in)
			assert.Equal(t, tt.wantContainer, container)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestMerge(t *testing.T) {
	assert.Equal(t, "/a/b", Merge("/a", "b"))
	assert.Equal(t, "/a", Merge("/", "a"))
	assert.Equal(t, "/a/b", Merge("/a/", "/b"))
}

func TestMergeSplitRoundTrip(t *testing.T) {
	for _, path := range []string{"/a", "/a/b", "/deep/nested/tree/leaf"} {
		container, name := Split(path)
		assert.Equal(t, path, Merge(container, name))
	}
}
