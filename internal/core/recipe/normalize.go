package recipe

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/pkg/common"
)

// Hints 原始結果以外的補充資訊
type Hints struct {
	Title     string // 標題缺漏時使用（影片標題或網頁標題）
	SourceURL string
	Creator   string
}

var (
	stepNumbering = regexp.MustCompile(`^(?:(?i:step)\s*)?\d{1,2}\s*[.):]\s+`)
	placeholders  = map[string]bool{"unknown recipe": true, "unknown": true, "untitled": true}
)

var difficultySynonyms = map[string]string{
	"easy": DifficultyEasy, "simple": DifficultyEasy, "beginner": DifficultyEasy,
	"einfach": DifficultyEasy, "leicht": DifficultyEasy, "low": DifficultyEasy,
	"medium": DifficultyMedium, "moderate": DifficultyMedium, "intermediate": DifficultyMedium,
	"normal": DifficultyMedium, "mittel": DifficultyMedium, "average": DifficultyMedium,
	"hard": DifficultyHard, "difficult": DifficultyHard, "advanced": DifficultyHard,
	"expert": DifficultyHard, "schwer": DifficultyHard, "anspruchsvoll": DifficultyHard,
	"high": DifficultyHard, "challenging": DifficultyHard,
}

// draft 各來源轉換後、正規化前的共同中間格式
type draft struct {
	title        string
	servings     string
	prep         string
	cook         string
	total        string
	difficulty   string
	tags         []string
	lines        []string     // 未解析的食材行
	ingredients  []Ingredient // 已結構化的食材（來自 *Recipe）
	instructions []string
	renumber     bool // 是否去除步驟前的編號
	equipment    []string
	notes        []string
	sourceURL    string
	creator      string
}

// Normalize 把原始結果轉成標準食譜；食材、步驟或標題缺漏時回傳 ErrIncompleteRecipe
func Normalize(raw RawResult, hints Hints) (*Recipe, error) {
	d, err := toDraft(raw)
	if err != nil {
		return nil, err
	}

	ingredients := d.ingredients
	if ingredients == nil {
		ingredients = parseIngredientLines(d.lines)
	} else {
		ingredients = cleanIngredients(ingredients)
	}
	steps := cleanSteps(d.instructions, d.renumber)

	if len(ingredients) == 0 || len(steps) == 0 {
		return nil, common.ErrIncompleteRecipe.Wrap(fmt.Errorf(
			"missing ingredients or instructions (ingredients=%d, instructions=%d)", len(ingredients), len(steps)))
	}

	title := cleanTitle(d.title)
	if title == "" {
		title = cleanTitle(hints.Title)
	}
	if title == "" {
		return nil, common.ErrIncompleteRecipe.Wrap(fmt.Errorf("missing title"))
	}

	r := &Recipe{
		Title:        title,
		Servings:     strings.TrimSpace(d.servings),
		PrepTime:     NormalizeDuration(d.prep),
		CookTime:     NormalizeDuration(d.cook),
		TotalTime:    NormalizeDuration(d.total),
		Difficulty:   NormalizeDifficulty(d.difficulty),
		Tags:         dedupeFold(d.tags, MaxTags, func(s string) string { return strings.TrimSpace(strings.TrimLeft(s, "#")) }),
		Ingredients:  ingredients,
		Instructions: steps,
		Equipment:    dedupeFold(d.equipment, 0, strings.TrimSpace),
		Notes:        joinNotes(d.notes),
		Creator:      strings.TrimSpace(d.creator),
	}

	if r.TotalTime == "" {
		prep, okPrep := ParseDuration(r.PrepTime)
		cook, okCook := ParseDuration(r.CookTime)
		if okPrep && okCook {
			r.TotalTime = FormatMinutes(prep + cook)
		}
	}

	sourceURL := d.sourceURL
	if sourceURL == "" {
		sourceURL = hints.SourceURL
	}
	r.SourceURL, r.SourcePlatform = sourceOf(sourceURL)

	if r.Creator == "" {
		r.Creator = strings.TrimSpace(hints.Creator)
	}

	return r, nil
}

func toDraft(raw RawResult) (*draft, error) {
	switch v := raw.(type) {
	case *SchemaResult:
		if v == nil {
			break
		}
		tags := append(append([]string{}, v.Categories...), v.Keywords...)
		return &draft{
			title:        v.Title,
			servings:     v.Yield,
			prep:         v.PrepTime,
			cook:         v.CookTime,
			total:        v.TotalTime,
			tags:         tags,
			lines:        v.Ingredients,
			instructions: v.Instructions,
			renumber:     true,
			equipment:    v.Equipment,
			creator:      v.Author,
		}, nil
	case *InferenceResult:
		if v == nil {
			break
		}
		return &draft{
			title:        v.Title,
			servings:     v.Servings,
			prep:         v.PrepTime,
			cook:         v.CookTime,
			total:        v.TotalTime,
			difficulty:   v.Difficulty,
			tags:         v.Tags,
			lines:        v.Ingredients,
			instructions: v.Instructions,
			renumber:     true,
			equipment:    v.Equipment,
			notes:        v.Notes,
			creator:      v.Creator,
		}, nil
	case *Recipe:
		if v == nil {
			break
		}
		ingredients := append([]Ingredient{}, v.Ingredients...)
		return &draft{
			title:        v.Title,
			servings:     v.Servings,
			prep:         v.PrepTime,
			cook:         v.CookTime,
			total:        v.TotalTime,
			difficulty:   v.Difficulty,
			tags:         v.Tags,
			ingredients:  ingredients,
			instructions: v.StepTexts(),
			equipment:    v.Equipment,
			notes:        []string{v.Notes},
			sourceURL:    v.SourceURL,
			creator:      v.Creator,
		}, nil
	}
	return nil, common.ErrIncompleteRecipe.Wrap(fmt.Errorf("no result to normalize"))
}

func parseIngredientLines(lines []string) []Ingredient {
	out := make([]Ingredient, 0, len(lines))
	section := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsSectionHeader(line) {
			section = sectionName(line)
			continue
		}
		ing := ParseIngredientLine(line)
		if ing.Name == "" {
			continue
		}
		ing.Section = section
		out = append(out, ing)
	}
	return out
}

func cleanIngredients(in []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(in))
	for _, ing := range in {
		ing.Section = strings.TrimSpace(ing.Section)
		ing.Quantity = strings.TrimSpace(ing.Quantity)
		ing.Unit = strings.TrimSpace(ing.Unit)
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Text = strings.TrimSpace(ing.Text)
		if ing.Name == "" {
			continue
		}
		if ing.Text == "" {
			ing.Text = ing.Line()
		}
		out = append(out, ing)
	}
	return out
}

func cleanSteps(in []string, renumber bool) []Step {
	steps := make([]Step, 0, len(in))
	for _, text := range in {
		text = strings.TrimSpace(text)
		if renumber {
			text = strings.TrimSpace(stepNumbering.ReplaceAllString(text, ""))
		}
		if text == "" || IsSectionHeader(text) {
			continue
		}
		steps = append(steps, Step{Number: len(steps) + 1, Text: text})
	}
	return steps
}

func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if placeholders[strings.ToLower(s)] {
		return ""
	}
	return s
}

// NormalizeDifficulty 對應到 easy、medium 或 hard，無法辨識時為 medium
func NormalizeDifficulty(s string) string {
	if d, ok := difficultySynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d
	}
	return DifficultyMedium
}

// dedupeFold 不分大小寫去重並保留第一次出現的寫法，limit 為 0 表示不限
func dedupeFold(in []string, limit int, clean func(string) string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = clean(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func joinNotes(notes []string) string {
	var lines []string
	for _, n := range notes {
		for _, line := range strings.Split(n, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// sourceOf 驗證來源 URL 並推導平台，無效時兩者皆為空
func sourceOf(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" || u.User != nil {
		return "", ""
	}
	return raw, PlatformForURL(u)
}

// PlatformForURL 依主機推導來源平台
func PlatformForURL(u *url.URL) string {
	if p := classify.PlatformForHost(u.Hostname()); p != "" {
		return p
	}
	return PlatformWeb
}
