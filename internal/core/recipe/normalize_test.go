package recipe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-collector/internal/pkg/common"
)

func carbonaraInference() *InferenceResult {
	return &InferenceResult{
		Title:      "  Spaghetti   Carbonara ",
		Servings:   "4 servings",
		PrepTime:   "15 minutes",
		CookTime:   "PT20M",
		Difficulty: "Einfach",
		Tags:       []string{"Italian", "pasta", "italian", "#Pasta", "quick"},
		Ingredients: []string{
			"## For the sauce",
			"200g Guanciale",
			"4 egg yolks",
			"",
			"## For the pasta",
			"- 400 g Spaghetti",
			"Salt",
		},
		Instructions: []string{
			"1. Cook pasta until al dente",
			"  ",
			"Step 2: Fry guanciale until crispy",
			"Mix yolks with Pecorino",
		},
		Equipment: []string{"large pot", "Large Pot", "pan"},
		Notes:     []string{"Pancetta works too", "Save pasta water"},
	}
}

func TestNormalizeInference(t *testing.T) {
	r, err := Normalize(carbonaraInference(), Hints{SourceURL: "https://www.youtube.com/watch?v=abc"})
	require.NoError(t, err)

	assert.Equal(t, "Spaghetti Carbonara", r.Title)
	assert.Equal(t, "4 servings", r.Servings)
	assert.Equal(t, "15 min", r.PrepTime)
	assert.Equal(t, "20 min", r.CookTime)
	assert.Equal(t, "35 min", r.TotalTime)
	assert.Equal(t, DifficultyEasy, r.Difficulty)
	assert.Equal(t, []string{"Italian", "pasta", "quick"}, r.Tags)
	assert.Equal(t, []string{"large pot", "pan"}, r.Equipment)
	assert.Equal(t, "Pancetta works too\nSave pasta water", r.Notes)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", r.SourceURL)
	assert.Equal(t, PlatformYouTube, r.SourcePlatform)

	require.Len(t, r.Ingredients, 4)
	assert.Equal(t, Ingredient{Section: "For the sauce", Quantity: "200", Unit: "g", Name: "Guanciale", Text: "200g Guanciale"}, r.Ingredients[0])
	assert.Equal(t, Ingredient{Section: "For the sauce", Quantity: "4", Name: "egg yolks", Text: "4 egg yolks"}, r.Ingredients[1])
	assert.Equal(t, Ingredient{Section: "For the pasta", Quantity: "400", Unit: "g", Name: "Spaghetti", Text: "400 g Spaghetti"}, r.Ingredients[2])
	assert.Equal(t, Ingredient{Section: "For the pasta", Name: "Salt", Text: "Salt"}, r.Ingredients[3])

	require.Len(t, r.Instructions, 3)
	assert.Equal(t, Step{Number: 1, Text: "Cook pasta until al dente"}, r.Instructions[0])
	assert.Equal(t, Step{Number: 2, Text: "Fry guanciale until crispy"}, r.Instructions[1])
	assert.Equal(t, Step{Number: 3, Text: "Mix yolks with Pecorino"}, r.Instructions[2])

	groups := r.Sections()
	require.Len(t, groups, 2)
	assert.Equal(t, "For the pasta", groups[1].Name)
	assert.Len(t, groups[1].Items, 2)
}

func TestNormalizeRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawResult
		hints Hints
	}{
		{
			name: "empty instructions",
			raw: &InferenceResult{
				Title:        "Toast",
				Ingredients:  []string{"2 slices bread"},
				Instructions: []string{"", "   "},
			},
		},
		{
			name: "only section headers",
			raw: &InferenceResult{
				Title:        "Cake",
				Ingredients:  []string{"## Dough", "## Icing"},
				Instructions: []string{"Bake"},
			},
		},
		{
			name: "no title and no hint",
			raw: &InferenceResult{
				Title:        "Unknown Recipe",
				Ingredients:  []string{"1 egg"},
				Instructions: []string{"Boil"},
			},
		},
		{
			name: "nil schema",
			raw:  (*SchemaResult)(nil),
		},
		{
			name: "nil raw",
			raw:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, tt.hints)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrIncompleteRecipe))
		})
	}
}

func TestNormalizeTitleFallsBackToHint(t *testing.T) {
	r, err := Normalize(&InferenceResult{
		Ingredients:  []string{"1 egg"},
		Instructions: []string{"Boil for 7 minutes"},
	}, Hints{Title: "Perfect soft eggs", Creator: "chef_anna"})
	require.NoError(t, err)
	assert.Equal(t, "Perfect soft eggs", r.Title)
	assert.Equal(t, "chef_anna", r.Creator)
	assert.Equal(t, DifficultyMedium, r.Difficulty)
	assert.Empty(t, r.SourceURL)
	assert.Empty(t, r.SourcePlatform)
}

func TestNormalizeSchema(t *testing.T) {
	r, err := Normalize(&SchemaResult{
		Title:        "Spaghetti",
		Ingredients:  []string{"400g Spaghetti", "200g Guanciale"},
		Instructions: []string{"Boil pasta", "Fry guanciale"},
		PrepTime:     "PT10M",
		CookTime:     "PT1H5M",
		Yield:        "4",
		Author:       "Nonna",
		Keywords:     []string{"pasta", "Roman"},
		Categories:   []string{"Main", "Italian", "pasta"},
	}, Hints{SourceURL: "https://recipes.example/spaghetti"})
	require.NoError(t, err)

	assert.Equal(t, "10 min", r.PrepTime)
	assert.Equal(t, "1h 5 min", r.CookTime)
	assert.Equal(t, "1h 15 min", r.TotalTime)
	assert.Equal(t, "4", r.Servings)
	assert.Equal(t, "Nonna", r.Creator)
	assert.Equal(t, []string{"Main", "Italian", "pasta", "Roman"}, r.Tags)
	assert.Equal(t, PlatformWeb, r.SourcePlatform)
	assert.Equal(t, []string{"Boil pasta", "Fry guanciale"}, r.StepTexts())
}

func TestNormalizeTagCap(t *testing.T) {
	tags := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		tags = append(tags, fmt.Sprintf("tag%d", i))
	}
	r, err := Normalize(&InferenceResult{
		Title:        "Soup",
		Tags:         tags,
		Ingredients:  []string{"1 l water"},
		Instructions: []string{"Boil"},
	}, Hints{})
	require.NoError(t, err)
	assert.Len(t, r.Tags, MaxTags)
	assert.Equal(t, "tag9", r.Tags[9])
}

func TestNormalizeSourceURL(t *testing.T) {
	base := func() *InferenceResult {
		return &InferenceResult{Title: "Soup", Ingredients: []string{"water"}, Instructions: []string{"Boil"}}
	}
	tests := []struct {
		url          string
		wantURL      string
		wantPlatform string
	}{
		{"https://vm.tiktok.com/ZM123/", "https://vm.tiktok.com/ZM123/", PlatformTikTok},
		{"https://www.instagram.com/reel/x", "https://www.instagram.com/reel/x", PlatformInstagram},
		{"https://fb.watch/abc", "https://fb.watch/abc", PlatformFacebook},
		{"https://blog.example/soup", "https://blog.example/soup", PlatformWeb},
		{"ftp://files.example/soup", "", ""},
		{"not a url", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			r, err := Normalize(base(), Hints{SourceURL: tt.url})
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, r.SourceURL)
			assert.Equal(t, tt.wantPlatform, r.SourcePlatform)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raws := []struct {
		name  string
		raw   RawResult
		hints Hints
	}{
		{name: "inference", raw: carbonaraInference(), hints: Hints{SourceURL: "https://www.tiktok.com/@c/video/1"}},
		{name: "schema", raw: &SchemaResult{
			Title:        "Stew",
			Ingredients:  []string{"1 1/2 cups stock", "2-3 carrots"},
			Instructions: []string{"Simmer.\nServe."},
			TotalTime:    "PT2H",
			Keywords:     []string{"winter"},
		}},
		{name: "verbatim durations", raw: &InferenceResult{
			Title:        "Bread",
			PrepTime:     "overnight",
			CookTime:     "10-15 min",
			Ingredients:  []string{"500 g flour"},
			Instructions: []string{"Knead", "Bake"},
			Difficulty:   "very hard",
		}},
	}

	for _, tt := range raws {
		t.Run(tt.name, func(t *testing.T) {
			once, err := Normalize(tt.raw, tt.hints)
			require.NoError(t, err)
			twice, err := Normalize(once, Hints{})
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestParseInferenceTolerantTypes(t *testing.T) {
	res := ParseInference(map[string]any{
		"title":        "Pancakes",
		"servings":     float64(4),
		"time":         "30 min",
		"tags":         "breakfast",
		"ingredients":  []any{"2 eggs", map[string]any{"name": "milk"}, nil},
		"instructions": "Mix\nFry",
		"notes":        "Serve warm",
	})
	assert.Equal(t, "4", res.Servings)
	assert.Equal(t, "30 min", res.TotalTime)
	assert.Equal(t, []string{"breakfast"}, res.Tags)
	assert.Equal(t, []string{"2 eggs", "milk"}, res.Ingredients)
	assert.Equal(t, []string{"Mix", "Fry"}, res.Instructions)
	assert.Equal(t, []string{"Serve warm"}, res.Notes)
}
