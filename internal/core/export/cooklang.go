package export

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"recipe-collector/internal/core/recipe"
)

const maxCooklangIngredient = 200

var (
	timerPattern = regexp.MustCompile(`(?i)\b(\d+(?:\s*-\s*\d+)?)\s*(Minuten?|Min\.?|minutes?|min\.?|Stunden?|Std\.?|hours?|hrs?\.?|Sekunden?|Sek\.?|seconds?|sec\.?|secs?\.?)\b`)
	prepWords    = regexp.MustCompile(`(?i)gehackt|geschnitten|gewürfelt|gerieben|gepresst|gehobelt|zerkleinert|püriert|gestampft|mariniert|eingeweicht|aufgetaut|zimmerwarm|kalt|warm|weich|hart|frisch|getrocknet|chopped|diced|minced|sliced|grated|pressed|crushed|softened|melted|room temperature|cold|fresh|dried`)
	parenHint    = regexp.MustCompile(`\s*\(([^)]+)\)\s*$`)
	commaHint    = regexp.MustCompile(`,\s*([^,]+)$`)
	nameSuffix   = regexp.MustCompile(`\s*[,(].*$`)
)

// frontMatter Cooklang 的 YAML 中繼資料，順序即輸出順序
type frontMatter struct {
	Source       string   `yaml:"source,omitempty"`
	Author       string   `yaml:"author,omitempty"`
	Servings     string   `yaml:"servings,omitempty"`
	PrepTime     string   `yaml:"prep time,omitempty"`
	CookTime     string   `yaml:"cook time,omitempty"`
	TimeRequired string   `yaml:"time required,omitempty"`
	Difficulty   string   `yaml:"difficulty,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
}

func (fm frontMatter) empty() bool {
	return fm.Source == "" && fm.Author == "" && fm.Servings == "" && fm.PrepTime == "" &&
		fm.CookTime == "" && fm.TimeRequired == "" && fm.Difficulty == "" && len(fm.Tags) == 0
}

// Cooklang 輸出 .cook 格式：YAML front matter、@食材{量%單位}、#器具{}、~{時間%單位}
func Cooklang(r *recipe.Recipe) (string, error) {
	var lines []string

	fm := frontMatter{
		Source:       r.SourceURL,
		Author:       r.Creator,
		Servings:     r.Servings,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		TimeRequired: r.TotalTime,
		Difficulty:   r.Difficulty,
		Tags:         r.Tags,
	}
	if !fm.empty() {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fm); err != nil {
			return "", fmt.Errorf("encode front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode front matter: %w", err)
		}
		lines = append(lines, "---", strings.TrimRight(buf.String(), "\n"), "---", "")
	}

	lines = append(lines, "== Ingredients ==", "")
	for _, group := range r.Sections() {
		if group.Name != "" {
			lines = append(lines, "== "+group.Name+" ==", "")
		}
		for _, ing := range group.Items {
			lines = append(lines, "- "+cooklangIngredient(ing))
		}
	}
	lines = append(lines, "")

	lines = append(lines, "== Instructions ==", "")
	names := ingredientNames(r.Ingredients)
	for _, step := range r.Instructions {
		text := markTimers(step.Text)
		text = markItems(text, r.Equipment, '#')
		text = markItems(text, names, '@')
		lines = append(lines, text, "")
	}

	if notes := r.NoteLines(); len(notes) > 0 {
		for _, note := range notes {
			lines = append(lines, "> "+note)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n"), nil
}

// cooklangIngredient 轉成 @名稱{數量%單位}(處理方式)
func cooklangIngredient(ing recipe.Ingredient) string {
	if len(ing.Text) > maxCooklangIngredient {
		return "@" + truncateBytes(ing.Text, 50) + "...{}"
	}

	hint, name := prepHint(ing.Name)
	var out string
	switch {
	case ing.Quantity != "" && ing.Unit != "":
		out = fmt.Sprintf("@%s{%s%%%s}", name, cooklangAmount(ing.Quantity), ing.Unit)
	case ing.Quantity != "":
		out = fmt.Sprintf("@%s{%s}", name, cooklangAmount(ing.Quantity))
	default:
		out = "@" + name + "{}"
	}
	if hint != "" {
		out += "(" + hint + ")"
	}
	return out
}

func cooklangAmount(q string) string {
	q = strings.ReplaceAll(q, ",", ".")
	return strings.Join(strings.Fields(q), "")
}

// prepHint 取出括號或逗號後的處理方式
func prepHint(name string) (string, string) {
	if loc := parenHint.FindStringSubmatchIndex(name); loc != nil {
		return strings.TrimSpace(name[loc[2]:loc[3]]), strings.TrimSpace(name[:loc[0]])
	}
	if loc := commaHint.FindStringSubmatchIndex(name); loc != nil {
		hint := strings.TrimSpace(name[loc[2]:loc[3]])
		if prepWords.MatchString(hint) {
			return hint, strings.TrimSpace(name[:loc[0]])
		}
	}
	return "", name
}

func ingredientNames(ings []recipe.Ingredient) []string {
	names := make([]string, 0, len(ings))
	for _, ing := range ings {
		if name := strings.TrimSpace(nameSuffix.ReplaceAllString(ing.Name, "")); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func markTimers(text string) string {
	return timerPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := timerPattern.FindStringSubmatch(m)
		return "~{" + strings.ReplaceAll(sub[1], " ", "") + "%" + sub[2] + "}"
	})
}

// markItems 在文字中標記每個項目第一次出現的位置，較長的名稱優先
func markItems(text string, items []string, prefix byte) string {
	sorted := append([]string(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	seen := make(map[string]bool)
	for _, name := range sorted {
		lower := strings.ToLower(name)
		if utf8.RuneCountInString(name) < 2 || seen[lower] {
			continue
		}
		seen[lower] = true

		if strings.Contains(strings.ToLower(text), string(prefix)+lower) {
			continue
		}
		if start, end := wordIndex(text, name); start >= 0 {
			text = text[:start] + string(prefix) + text[start:end] + "{}" + text[end:]
		}
	}
	return text
}

// wordIndex 不分大小寫找出前後都不是字母、也不在既有標記內的位置
func wordIndex(text, word string) (int, int) {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(word))
	if err != nil {
		return -1, -1
	}
	for _, loc := range re.FindAllStringIndex(text, -1) {
		before, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
		after, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if !unicode.IsLetter(before) && !unicode.IsLetter(after) &&
			before != '@' && before != '#' && before != '~' && after != '{' {
			return loc[0], loc[1]
		}
	}
	return -1, -1
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
