package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"recipe-collector/internal/core/classify"
)

func TestBuildPromptOrdersSources(t *testing.T) {
	src := Sources{
		Subtitles:   "two hundred grams guanciale",
		Description: "400g spaghetti",
		Title:       "Carbonara",
		Creator:     "chef",
		Tags:        []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
		SourceURL:   "https://www.tiktok.com/@chef/video/1",
		WebpageText: "page body",
	}
	p := BuildPrompt("", classify.MediaVideo, src)

	assert.True(t, strings.HasPrefix(p, DefaultExtractionPrompt))
	order := []string{"SUBTITLES/CAPTIONS", "VIDEO DESCRIPTION", "VIDEO TITLE: Carbonara", "CREATOR: chef", "TAGS:", "SOURCE URL:", "Webpage Content", "Now analyze the video"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(p, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
	assert.Contains(t, p, "TAGS: a, b, c, d, e, f, g, h, i, j\n")
	assert.NotContains(t, p, ", k")
}

func TestBuildPromptVariants(t *testing.T) {
	tests := []struct {
		name     string
		kind     classify.MediaKind
		src      Sources
		contains []string
		excludes []string
	}{
		{
			name:     "metadata only",
			kind:     classify.MediaNone,
			src:      Sources{Description: "desc"},
			contains: []string{"no video available, text only", "Video could not be downloaded"},
		},
		{
			name:     "webpage text",
			kind:     classify.MediaNone,
			src:      Sources{SourceURL: "https://blog.example/soup", WebpageText: "soup text"},
			contains: []string{"SOURCE URL: https://blog.example/soup", "--- Webpage Content ---\nsoup text"},
			excludes: []string{"AVAILABLE SOURCES", "Video could not be downloaded"},
		},
		{
			name:     "image without context",
			kind:     classify.MediaImage,
			contains: []string{"Now analyze the image"},
			excludes: []string{"SOURCE URL", "Webpage Content"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt("custom prompt", tt.kind, tt.src)
			assert.True(t, strings.HasPrefix(p, "custom prompt"))
			for _, s := range tt.contains {
				assert.Contains(t, p, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, p, s)
			}
		})
	}
}
