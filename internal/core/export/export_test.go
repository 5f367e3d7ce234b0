package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/pkg/common"
)

func sampleRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Title:      "Spaghetti Aglio e Olio",
		Servings:   "2",
		PrepTime:   "10 min",
		CookTime:   "15 min",
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"pasta", "quick dinner"},
		Ingredients: []recipe.Ingredient{
			{Quantity: "200", Unit: "g", Name: "Spaghetti", Text: "200 g Spaghetti"},
			{Quantity: "4", Name: "garlic cloves, sliced", Text: "4 garlic cloves, sliced"},
			{Section: "Topping", Name: "Parsley", Text: "Parsley"},
		},
		Instructions: []recipe.Step{
			{Number: 1, Text: "Boil the spaghetti for 10 minutes."},
			{Number: 2, Text: "Fry garlic cloves in a pan with olive oil 2-3 min"},
		},
		Equipment: []string{"pan"},
		Notes:     "Use good oil.\nSave pasta water.",
		SourceURL: "https://example.com/aglio",
		Creator:   "Chef Anna",
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleRecipe())

	for _, want := range []string{
		"# Spaghetti Aglio e Olio\n",
		"**Source:** [Chef Anna](https://example.com/aglio)",
		"**Servings:** 2",
		"**Time:** Prep: 10 min | Cook: 15 min",
		"**Difficulty:** easy",
		"**Tags:** #pasta #quick-dinner",
		"## Ingredients\n\n- 200 g Spaghetti\n- 4 garlic cloves, sliced\n",
		"### Topping\n\n- Parsley\n",
		"1. Boil the spaghetti for 10 minutes.\n2. Fry garlic",
		"## Equipment\n\n- pan\n",
		"## Tips\n\n- Use good oil.\n- Save pasta water.\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestMarkdown_SourceFallsBackToHost(t *testing.T) {
	r := sampleRecipe()
	r.Creator = ""
	r.Equipment = nil
	r.Notes = ""

	out := Markdown(r)
	assert.Contains(t, out, "**Source:** [example.com](https://example.com/aglio)")
	assert.NotContains(t, out, "## Equipment")
	assert.NotContains(t, out, "## Tips")
}

func TestCooklang(t *testing.T) {
	out, err := Cooklang(sampleRecipe())
	require.NoError(t, err)

	parts := strings.SplitN(out, "---\n", 3)
	require.Len(t, parts, 3)
	assert.Empty(t, parts[0])

	var fm map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, "https://example.com/aglio", fm["source"])
	assert.Equal(t, "Chef Anna", fm["author"])
	assert.Equal(t, "2", fm["servings"])
	assert.Equal(t, "10 min", fm["prep time"])
	assert.Equal(t, "15 min", fm["cook time"])
	assert.Equal(t, "easy", fm["difficulty"])
	assert.Equal(t, []any{"pasta", "quick dinner"}, fm["tags"])
	assert.NotContains(t, fm, "time required")

	body := parts[2]
	for _, want := range []string{
		"== Ingredients ==\n\n- @Spaghetti{200%g}\n- @garlic cloves{4}(sliced)\n",
		"== Topping ==\n\n- @Parsley{}\n",
		"== Instructions ==",
		"Boil the @spaghetti{} for ~{10%minutes}.",
		"Fry @garlic cloves{} in a #pan{} with olive oil ~{2-3%min}",
		"> Use good oil.\n> Save pasta water.",
	} {
		assert.Contains(t, body, want)
	}
}

func TestCooklang_NoFrontMatter(t *testing.T) {
	out, err := Cooklang(&recipe.Recipe{
		Title:        "Toast",
		Ingredients:  []recipe.Ingredient{{Name: "Bread", Text: "Bread"}},
		Instructions: []recipe.Step{{Number: 1, Text: "Toast the bread."}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "== Ingredients =="))
	assert.Contains(t, out, "Toast the @bread{}.")
}

func TestMarkItems(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		items  []string
		prefix byte
		want   string
	}{
		{"first occurrence only", "Salt, then more salt", []string{"salt"}, '@', "@Salt{}, then more salt"},
		{"longest first", "Add olive oil", []string{"oil", "olive oil"}, '@', "Add @olive oil{}"},
		{"letter boundary", "Stir the pancake batter", []string{"pan"}, '#', "Stir the pancake batter"},
		{"single letter skipped", "Add a pinch", []string{"a"}, '@', "Add a pinch"},
		{"already marked", "Use the #pan{}", []string{"pan"}, '#', "Use the #pan{}"},
		{"umlaut boundary", "Die Butter in der Pfanne bräunen", []string{"Pfanne"}, '#', "Die Butter in der #Pfanne{} bräunen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, markItems(tt.text, tt.items, tt.prefix))
		})
	}
}

func TestMarkTimers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bake 25 minutes", "Bake ~{25%minutes}"},
		{"Ruhen lassen 1 Stunde", "Ruhen lassen ~{1%Stunde}"},
		{"Simmer 10 - 15 min", "Simmer ~{10-15%min}"},
		{"Add 2 eggs", "Add 2 eggs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, markTimers(tt.in), tt.in)
	}
}

func TestPrepHint(t *testing.T) {
	tests := []struct {
		in       string
		wantHint string
		wantName string
	}{
		{"onion (finely chopped)", "finely chopped", "onion"},
		{"Zwiebel, gewürfelt", "gewürfelt", "Zwiebel"},
		{"salt, to taste", "", "salt, to taste"},
		{"butter", "", "butter"},
	}

	for _, tt := range tests {
		hint, name := prepHint(tt.in)
		assert.Equal(t, tt.wantHint, hint, tt.in)
		assert.Equal(t, tt.wantName, name, tt.in)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"cook", FormatCooklang, false},
		{" cooklang ", FormatCooklang, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, common.ErrInvalidRequest, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRenderAndFilename(t *testing.T) {
	r := sampleRecipe()
	r.Title = "Pasta: Best/Ever?"

	md, err := Render(r, FormatMarkdown)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Pasta: Best/Ever?"))

	cook, err := Render(r, FormatCooklang)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cook, "---\n"))

	_, err = Render(r, Format("pdf"))
	assert.Error(t, err)

	assert.Equal(t, "Pasta BestEver.md", Filename(r, FormatMarkdown))
	assert.Equal(t, "Pasta BestEver.cook", Filename(r, FormatCooklang))
	assert.Equal(t, "recipe.cook", Filename(&recipe.Recipe{}, FormatCooklang))
}
