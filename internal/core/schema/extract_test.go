package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-collector/internal/pkg/common"
)

func page(blocks ...string) string {
	out := "<html><head><title>Test</title>"
	for _, b := range blocks {
		out += `<script type="application/ld+json">` + b + `</script>`
	}
	return out + "</head><body><p>hello</p></body></html>"
}

const spaghettiLD = `{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Spaghetti",
  "recipeIngredient": ["400g Spaghetti", "200g Guanciale"],
  "recipeInstructions": ["Boil pasta", "Fry guanciale"]
}`

func TestExtractSpaghettiRoundTrip(t *testing.T) {
	common.InitNopLogger()
	r := Extract(page(spaghettiLD))
	require.NotNil(t, r)
	assert.Equal(t, "Spaghetti", r.Title)
	assert.Equal(t, []string{"400g Spaghetti", "200g Guanciale"}, r.Ingredients)
	assert.Equal(t, []string{"Boil pasta", "Fry guanciale"}, r.Instructions)
}

func TestExtractVariants(t *testing.T) {
	common.InitNopLogger()

	t.Run("graph with steps and sections", func(t *testing.T) {
		r := Extract(page(`{
		  "@context": "https://schema.org",
		  "@graph": [
		    {"@type": "WebPage", "name": "Site"},
		    {
		      "@type": ["Recipe", "NewsArticle"],
		      "name": "Pad Thai &amp; Friends",
		      "recipeIngredient": ["200 g rice noodles", " 2 eggs "],
		      "recipeInstructions": [
		        {"@type": "HowToSection", "name": "Prep", "itemListElement": [
		          {"@type": "HowToStep", "text": "Soak noodles"},
		          {"@type": "HowToStep", "name": "Whisk eggs"}
		        ]},
		        {"@type": "HowToStep", "text": "Stir-fry everything"}
		      ],
		      "prepTime": "PT15M",
		      "cookTime": "PT10M",
		      "recipeYield": ["2", "2 servings"],
		      "author": [{"@type": "Person", "name": "Somchai"}],
		      "keywords": "thai, noodles ,quick",
		      "recipeCategory": "Main course",
		      "recipeCuisine": ["Thai"],
		      "tool": [{"@type": "HowToTool", "name": "Wok"}]
		    }
		  ]
		}`))
		require.NotNil(t, r)
		assert.Equal(t, "Pad Thai & Friends", r.Title)
		assert.Equal(t, []string{"200 g rice noodles", "2 eggs"}, r.Ingredients)
		assert.Equal(t, []string{"Soak noodles", "Whisk eggs", "Stir-fry everything"}, r.Instructions)
		assert.Equal(t, "PT15M", r.PrepTime)
		assert.Equal(t, "PT10M", r.CookTime)
		assert.Equal(t, "2", r.Yield)
		assert.Equal(t, "Somchai", r.Author)
		assert.Equal(t, []string{"thai", "noodles", "quick"}, r.Keywords)
		assert.Equal(t, []string{"Main course", "Thai"}, r.Categories)
		assert.Equal(t, []string{"Wok"}, r.Equipment)
	})

	t.Run("top level array and numeric yield", func(t *testing.T) {
		r := Extract(page(`[
		  {"@type": "Organization", "name": "Blog"},
		  {"@type": "Recipe", "name": "Soup", "recipeYield": 4,
		   "author": "Ana",
		   "recipeIngredient": ["1 l stock"],
		   "recipeInstructions": "Heat stock.\nServe hot."}
		]`))
		require.NotNil(t, r)
		assert.Equal(t, "4", r.Yield)
		assert.Equal(t, "Ana", r.Author)
		assert.Equal(t, []string{"Heat stock.", "Serve hot."}, r.Instructions)
	})

	t.Run("skips broken block", func(t *testing.T) {
		r := Extract(page(`{ not json`, spaghettiLD))
		require.NotNil(t, r)
		assert.Equal(t, "Spaghetti", r.Title)
	})

	t.Run("html in instruction string", func(t *testing.T) {
		r := Extract(page(`{"@type":"Recipe","name":"Tea","recipeIngredient":["tea"],
		  "recipeInstructions":"<p>Boil water</p><br/>Steep 3 min"}`))
		require.NotNil(t, r)
		assert.Equal(t, []string{"Boil water", "Steep 3 min"}, r.Instructions)
	})
}

func TestExtractAbsent(t *testing.T) {
	common.InitNopLogger()
	tests := map[string]string{
		"no scripts":       "<html><body>nothing</body></html>",
		"not a recipe":     page(`{"@type": "Article", "name": "News"}`),
		"no instructions":  page(`{"@type": "Recipe", "name": "X", "recipeIngredient": ["a"]}`),
		"no ingredients":   page(`{"@type": "Recipe", "name": "X", "recipeInstructions": ["a"]}`),
		"empty step texts": page(`{"@type": "Recipe", "name": "X", "recipeIngredient": ["a"], "recipeInstructions": [{"@type":"HowToStep"}]}`),
	}
	for name, html := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Extract(html))
		})
	}
}
