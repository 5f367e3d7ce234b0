package common

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomErrorMatching(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	wrapped := fmt.Errorf("webpage_fetch: %w", ErrFetch.Wrap(cause))

	assert.True(t, errors.Is(wrapped, ErrFetch))
	assert.False(t, errors.Is(wrapped, ErrUnsafeURL))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, http.StatusBadGateway, StatusOf(wrapped))
	assert.Equal(t, ErrCodeFetch, CodeOf(wrapped))

	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
	assert.Equal(t, ErrCodeInternalError, CodeOf(errors.New("plain")))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare", in: `{"title":"Pasta"}`, want: `{"title":"Pasta"}`},
		{name: "fenced", in: "```json\n{\"title\":\"Pasta\"}\n```", want: `{"title":"Pasta"}`},
		{name: "fence without lang", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", in: "Here you go: {\"a\":{\"b\":2}} enjoy", want: `{"a":{"b":2}}`},
		{name: "no object", in: "sorry, not a recipe", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]any
	assert.NoError(t, ParseJSON(`{"a":1}`, &v))
	assert.Error(t, ParseJSON(`{"a":1} {"b":2}`, &v))
}

func TestShortHexID(t *testing.T) {
	id := ShortHexID(12)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), id)
	assert.NotEqual(t, id, ShortHexID(12))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "äöü...", TruncateRunes("äöüß", 3))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Spaghetti Carbonara", SanitizeFilename("Spaghetti: Carbonara?"))
	assert.Equal(t, "recipe", SanitizeFilename("../.."))
}

func TestLoggerFiltersMediaFields(t *testing.T) {
	assert.True(t, isMediaField("media"))
	assert.True(t, isMediaField("image_data_url"))
	assert.True(t, isMediaField("video"))
	assert.False(t, isMediaField("url"))
}
