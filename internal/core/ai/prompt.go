package ai

import (
	"strings"

	"recipe-collector/internal/core/classify"
)

// DefaultExtractionPrompt 內建的食譜擷取提示詞
const DefaultExtractionPrompt = `Analyze ALL provided sources and extract the recipe completely.

SOURCE PRIORITIZATION (in case of conflicts):
1. Subtitles/Captions (most accurate source for spoken quantities)
2. Video description (often contains complete ingredient lists)
3. Video content (visual information)
4. Webpage text (context)

Respond ONLY with a JSON object in this format:
{
  "title": "Name of the dish",
  "servings": "4 servings",
  "prep_time": "15 min",
  "cook_time": "30 min",
  "total_time": "45 min",
  "difficulty": "medium",
  "tags": ["italian", "pasta", "vegetarian"],
  "ingredients": [
    "## For the sauce",
    "200g Guanciale",
    "4 egg yolks",
    "## For the pasta",
    "400g Spaghetti",
    "Salt"
  ],
  "instructions": [
    "Cook pasta in plenty of salted water until al dente (about 8-10 min)",
    "Cut guanciale into cubes and fry until crispy over medium heat",
    "Mix egg yolks with grated Pecorino"
  ],
  "equipment": ["large pot", "pan", "grater"],
  "notes": ["Pancetta can substitute for Guanciale", "Save pasta water for binding"]
}

IMPORTANT - COMPLETENESS:
- Extract ALL mentioned ingredients with EXACT quantities
- When quantities are mentioned (spoken, written, displayed), copy them EXACTLY
- Mark ingredient group headers with "## " (e.g., "## For the dough")
- List each preparation step individually and in detail
- Only list equipment if special tools are required
- Use notes for tips, variations, substitutions

CONVERSIONS:
- Quantities in metric units, original in parentheses: "240ml (1 cup) milk"
- Temperatures in Celsius with original: "180°C (350°F)"
- Translate "pinch", "dash" etc. appropriately

DIFFICULTY LEVEL:
- "easy": Few ingredients, simple techniques, under 30 min
- "medium": Multiple steps, some experience helpful
- "hard": Complex techniques, many components, time-consuming

TIMES:
- prep_time: Active preparation time (cutting, mixing)
- cook_time: Time at stove/oven
- total_time: Total time including resting periods
- If only total time is known: only specify total_time

RULES:
- Omit missing fields (don't use null or empty)
- ONLY the JSON, no other text!`

var separator = strings.Repeat("=", 60)

// BuildPrompt 依優先順序附加來源：字幕、描述、標題、作者、標籤、來源網址、網頁文字
func BuildPrompt(base string, kind classify.MediaKind, src Sources) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultExtractionPrompt
	}

	var b strings.Builder
	b.WriteString(base)

	if src.HasMetadata() {
		b.WriteString("\n\n" + separator + "\n")
		if kind == classify.MediaVideo {
			b.WriteString("AVAILABLE SOURCES:")
		} else {
			b.WriteString("AVAILABLE SOURCES (no video available, text only):")
		}
		b.WriteString("\n" + separator)

		if src.Subtitles != "" {
			b.WriteString("\n\n### 1. SUBTITLES/CAPTIONS (highest priority for quantities!):\n" + src.Subtitles)
		}
		if src.Description != "" {
			b.WriteString("\n\n### 2. VIDEO DESCRIPTION:\n" + src.Description)
		}
		if src.Title != "" {
			b.WriteString("\n\n### 3. VIDEO TITLE: " + src.Title)
		}
		if src.Creator != "" {
			b.WriteString("\n### 4. CREATOR: " + src.Creator)
		}
		if len(src.Tags) > 0 {
			tags := src.Tags
			if len(tags) > MaxPromptTags {
				tags = tags[:MaxPromptTags]
			}
			b.WriteString("\n### 5. TAGS: " + strings.Join(tags, ", "))
		}
	}

	if src.SourceURL != "" {
		b.WriteString("\n\n### SOURCE URL: " + src.SourceURL)
	}
	if src.WebpageText != "" {
		b.WriteString("\n\n--- Webpage Content ---\n" + src.WebpageText)
	}

	switch {
	case kind == classify.MediaVideo:
		b.WriteString("\n\n" + separator + "\nNow analyze the video together with the sources above.")
	case kind == classify.MediaImage:
		b.WriteString("\n\n" + separator + "\nNow analyze the image together with the sources above.")
	case src.HasMetadata():
		b.WriteString("\n\n" + separator + "\nNOTE: Video could not be downloaded. Extract the recipe from the text sources above.")
	}
	return b.String()
}
