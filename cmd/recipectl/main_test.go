package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/export"
	"recipe-collector/internal/core/extract"
	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/pkg/common"
)

type fakeRunner struct {
	res *extract.Result
	err error
}

func (f fakeRunner) Run(context.Context, extract.Input) (*extract.Result, error) {
	return f.res, f.err
}

func TestBuildInput(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	imgPath := filepath.Join(dir, "dish.png")
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0o600))

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("plain notes"), 0o600))

	t.Run("link", func(t *testing.T) {
		in, err := buildInput([]string{"https://example.com/recipe"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/recipe", in.Text)
		assert.Equal(t, classify.MediaNone, in.MediaKind)
	})

	t.Run("image with source url", func(t *testing.T) {
		in, err := buildInput([]string{imgPath, "https://example.com/r"})
		require.NoError(t, err)
		assert.Equal(t, classify.MediaImage, in.MediaKind)
		assert.Equal(t, "image/png", in.MimeType)
		assert.Equal(t, "https://example.com/r", in.Text)
		assert.Equal(t, buf.Bytes(), in.Media)
	})

	t.Run("unsupported file", func(t *testing.T) {
		_, err := buildInput([]string{txtPath})
		assert.Error(t, err)
	})
}

func TestRunExtract(t *testing.T) {
	common.InitNopLogger()

	t.Run("prints markdown", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)

		r := fakeRunner{res: &extract.Result{
			Recipe: &recipe.Recipe{
				Title:        "Toast",
				Ingredients:  []recipe.Ingredient{{Name: "Bread", Text: "Bread"}},
				Instructions: []recipe.Step{{Number: 1, Text: "Toast the bread."}},
			},
			Attempts: []extract.Attempt{
				{State: extract.StateValidate, Outcome: extract.OutcomeSuccess},
				{State: extract.StateWebpageFetch, Outcome: extract.OutcomeSuccess},
			},
		}}

		require.NoError(t, runExtract(context.Background(), cmd, r, extract.Input{Text: "x"}, export.FormatMarkdown))
		assert.Contains(t, stdout.String(), "# Toast")
		assert.Contains(t, stdout.String(), "1. Toast the bread.")
		assert.Contains(t, stderr.String(), "validate:success -> webpage_fetch:success")
	})

	t.Run("reports failure path", func(t *testing.T) {
		cmd := &cobra.Command{}
		r := fakeRunner{err: &extract.Failure{
			Class:    classify.GenericWebpageURL,
			Attempts: []extract.Attempt{{State: extract.StateValidate, Outcome: extract.OutcomeFailure}},
			Reason:   "blocked",
			Err:      common.ErrUnsafeURL,
		}}

		err := runExtract(context.Background(), cmd, r, extract.Input{Text: "x"}, export.FormatMarkdown)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "this link cannot be processed")
		assert.Contains(t, err.Error(), "validate")
	})
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "recipectl version")
}
