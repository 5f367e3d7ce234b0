package export

import (
	"fmt"
	"net/url"
	"strings"

	"recipe-collector/internal/core/recipe"
)

// Markdown 輸出 Obsidian 風格的 Markdown
func Markdown(r *recipe.Recipe) string {
	var lines []string
	lines = append(lines, "# "+r.Title, "")

	if r.SourceURL != "" {
		source := r.Creator
		if source == "" {
			if u, err := url.Parse(r.SourceURL); err == nil {
				source = u.Host
			}
		}
		lines = append(lines, fmt.Sprintf("**Source:** [%s](%s)", source, r.SourceURL))
	}
	if r.Servings != "" {
		lines = append(lines, "**Servings:** "+r.Servings)
	}

	var times []string
	if r.PrepTime != "" {
		times = append(times, "Prep: "+r.PrepTime)
	}
	if r.CookTime != "" {
		times = append(times, "Cook: "+r.CookTime)
	}
	if r.TotalTime != "" {
		times = append(times, "Total: "+r.TotalTime)
	}
	if len(times) > 0 {
		lines = append(lines, "**Time:** "+strings.Join(times, " | "))
	}
	if r.Difficulty != "" {
		lines = append(lines, "**Difficulty:** "+r.Difficulty)
	}
	if len(r.Tags) > 0 {
		tags := make([]string, len(r.Tags))
		for i, t := range r.Tags {
			tags[i] = "#" + strings.ReplaceAll(t, " ", "-")
		}
		lines = append(lines, "**Tags:** "+strings.Join(tags, " "))
	}
	lines = append(lines, "")

	lines = append(lines, "## Ingredients", "")
	for _, group := range r.Sections() {
		if group.Name != "" {
			lines = append(lines, "### "+group.Name, "")
		}
		for _, ing := range group.Items {
			lines = append(lines, "- "+ing.Line())
		}
		lines = append(lines, "")
	}

	lines = append(lines, "## Instructions", "")
	for _, step := range r.Instructions {
		lines = append(lines, fmt.Sprintf("%d. %s", step.Number, step.Text))
	}
	lines = append(lines, "")

	if len(r.Equipment) > 0 {
		lines = append(lines, "## Equipment", "")
		for _, item := range r.Equipment {
			lines = append(lines, "- "+item)
		}
		lines = append(lines, "")
	}

	if notes := r.NoteLines(); len(notes) > 0 {
		lines = append(lines, "## Tips", "")
		for _, note := range notes {
			lines = append(lines, "- "+note)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
