// Package schema 從 HTML 的 JSON-LD 區塊取出 schema.org/Recipe
package schema

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/pkg/common"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Extract 掃描 application/ld+json 區塊，回傳第一個至少有一項食材與一個步驟的食譜
// 找不到時回傳 nil，不視為錯誤
func Extract(page string) *recipe.SchemaResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var found *recipe.SchemaResult
	doc.Find(`script[type*="ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var data any
		if err := common.ParseJSON(raw, &data); err != nil {
			common.LogDebug("略過無法解析的 JSON-LD", zap.Int("index", i), zap.Error(err))
			return true
		}
		for _, node := range candidates(data) {
			if r := parseRecipe(node); r != nil {
				found = r
				return false
			}
		}
		return true
	})

	return found
}

// candidates 展開頂層陣列與 @graph
func candidates(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = append(out, candidates(item)...)
		}
	case map[string]any:
		if graph, ok := t["@graph"]; ok {
			out = append(out, candidates(graph)...)
		}
		out = append(out, t)
		if main, ok := t["mainEntity"].(map[string]any); ok {
			out = append(out, main)
		}
	}
	return out
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe" || strings.HasSuffix(t, "/Recipe") || strings.HasSuffix(t, ":Recipe")
	case []any:
		for _, item := range t {
			if isRecipeType(item) {
				return true
			}
		}
	}
	return false
}

func parseRecipe(node map[string]any) *recipe.SchemaResult {
	if !isRecipeType(node["@type"]) {
		return nil
	}

	r := &recipe.SchemaResult{
		Title:        clean(recipe.AsString(node["name"])),
		Description:  clean(recipe.AsString(node["description"])),
		Ingredients:  cleanAll(recipe.AsStringList(node["recipeIngredient"])),
		Instructions: instructions(node["recipeInstructions"]),
		PrepTime:     recipe.AsString(node["prepTime"]),
		CookTime:     recipe.AsString(node["cookTime"]),
		TotalTime:    recipe.AsString(node["totalTime"]),
		Yield:        clean(recipe.AsString(node["recipeYield"])),
		Author:       clean(recipe.AsString(node["author"])),
		Keywords:     keywords(node["keywords"]),
		Equipment:    cleanAll(recipe.AsStringList(node["tool"])),
	}
	if len(r.Ingredients) == 0 {
		// 舊版 schema 使用 ingredients
		r.Ingredients = cleanAll(recipe.AsStringList(node["ingredients"]))
	}
	r.Categories = append(r.Categories, cleanAll(recipe.AsStringList(node["recipeCategory"]))...)
	r.Categories = append(r.Categories, cleanAll(recipe.AsStringList(node["recipeCuisine"]))...)

	if len(r.Ingredients) == 0 || len(r.Instructions) == 0 {
		return nil
	}
	return r
}

// instructions 支援字串、字串陣列、HowToStep 與 HowToSection
func instructions(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(tagPattern.ReplaceAllString(strings.ReplaceAll(t, "<br", "\n<br"), ""), "\n") {
			if line = clean(line); line != "" {
				out = append(out, line)
			}
		}
	case []any:
		for _, item := range t {
			out = append(out, instructions(item)...)
		}
	case map[string]any:
		if elements, ok := t["itemListElement"]; ok {
			return instructions(elements)
		}
		text := clean(recipe.AsString(t["text"]))
		if text == "" {
			text = clean(recipe.AsString(t["name"]))
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

func keywords(v any) []string {
	var out []string
	for _, item := range recipe.AsStringList(v) {
		for _, kw := range strings.Split(item, ",") {
			if kw = clean(kw); kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out
}

func clean(s string) string {
	s = html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
	return strings.Join(strings.Fields(s), " ")
}

func cleanAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = clean(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
