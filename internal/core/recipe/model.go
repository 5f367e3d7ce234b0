// Package recipe 定義標準食譜模型，以及把各來源的原始結果正規化成標準食譜的邏輯
package recipe

import "strings"

// 難度
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// 來源平台
const (
	PlatformTikTok    = "tiktok"
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
	PlatformFacebook  = "facebook"
	PlatformWeb       = "web"
)

// MaxTags 標籤上限
const MaxTags = 10

// Recipe 標準食譜
type Recipe struct {
	Title          string       `json:"title"`
	Servings       string       `json:"servings,omitempty"`
	PrepTime       string       `json:"prep_time,omitempty"`
	CookTime       string       `json:"cook_time,omitempty"`
	TotalTime      string       `json:"total_time,omitempty"`
	Difficulty     string       `json:"difficulty"`
	Tags           []string     `json:"tags,omitempty"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   []Step       `json:"instructions"`
	Equipment      []string     `json:"equipment,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	SourceURL      string       `json:"source_url,omitempty"`
	SourcePlatform string       `json:"source_platform,omitempty"`
	Creator        string       `json:"creator,omitempty"`
}

// Ingredient 食材行
type Ingredient struct {
	Section  string `json:"section,omitempty"` // 來自 "## " 分組標題
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Name     string `json:"name"`
	Text     string `json:"text"` // 原始整行
}

// Step 步驟，從 1 開始編號
type Step struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Line 回傳顯示用的食材行
func (i Ingredient) Line() string {
	if i.Text != "" {
		return i.Text
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{i.Quantity, i.Unit, i.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Sections 依出現順序回傳食材分組，沒有分組的食材歸在空字串
func (r *Recipe) Sections() []IngredientGroup {
	var groups []IngredientGroup
	for _, ing := range r.Ingredients {
		if len(groups) == 0 || groups[len(groups)-1].Name != ing.Section {
			groups = append(groups, IngredientGroup{Name: ing.Section})
		}
		last := &groups[len(groups)-1]
		last.Items = append(last.Items, ing)
	}
	return groups
}

// IngredientGroup 同一分組的食材
type IngredientGroup struct {
	Name  string
	Items []Ingredient
}

// StepTexts 回傳步驟文字
func (r *Recipe) StepTexts() []string {
	out := make([]string, len(r.Instructions))
	for i, s := range r.Instructions {
		out[i] = s.Text
	}
	return out
}

// NoteLines 把備註拆成非空白行
func (r *Recipe) NoteLines() []string {
	var out []string
	for _, line := range strings.Split(r.Notes, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
