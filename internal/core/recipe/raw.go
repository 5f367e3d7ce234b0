package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawResult 正規化前的原始結果，只有以下三種實作
//   - *SchemaResult    網頁 JSON-LD
//   - *InferenceResult AI 推論
//   - *Recipe          已正規化的食譜（重新正規化不會改變結果）
type RawResult interface {
	rawResult()
}

// SchemaResult 從 schema.org/Recipe 取出的欄位，食材與步驟尚未解析
type SchemaResult struct {
	Title        string
	Description  string
	Ingredients  []string
	Instructions []string
	PrepTime     string // ISO-8601，原樣保留
	CookTime     string
	TotalTime    string
	Yield        string
	Author       string
	Keywords     []string
	Categories   []string // recipeCategory 與 recipeCuisine
	Equipment    []string
}

// InferenceResult AI 回傳的欄位
type InferenceResult struct {
	Title        string
	Servings     string
	PrepTime     string
	CookTime     string
	TotalTime    string
	Difficulty   string
	Tags         []string
	Ingredients  []string
	Instructions []string
	Equipment    []string
	Notes        []string
	Creator      string
}

func (*SchemaResult) rawResult()    {}
func (*InferenceResult) rawResult() {}
func (*Recipe) rawResult()          {}

// ParseInference 把 AI 回應的 JSON 物件轉成 InferenceResult，容忍型別不一致
func ParseInference(data map[string]any) *InferenceResult {
	total := AsString(data["total_time"])
	if total == "" {
		total = AsString(data["time"])
	}
	return &InferenceResult{
		Title:        AsString(data["title"]),
		Servings:     AsString(data["servings"]),
		PrepTime:     AsString(data["prep_time"]),
		CookTime:     AsString(data["cook_time"]),
		TotalTime:    total,
		Difficulty:   AsString(data["difficulty"]),
		Tags:         AsStringList(data["tags"]),
		Ingredients:  AsStringList(data["ingredients"]),
		Instructions: AsStringList(data["instructions"]),
		Equipment:    AsStringList(data["equipment"]),
		Notes:        AsStringList(data["notes"]),
		Creator:      AsString(data["creator"]),
	}
}

// AsString 將 JSON 值轉為字串；物件取 name 或 text，陣列取第一個
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%g", t))
	case bool:
		return ""
	case map[string]any:
		if s := AsString(t["name"]); s != "" {
			return s
		}
		return AsString(t["text"])
	case []any:
		for _, item := range t {
			if s := AsString(item); s != "" {
				return s
			}
		}
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// AsStringList 將 JSON 值轉為字串清單；字串依換行拆開
func AsStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		var out []string
		for _, line := range strings.Split(t, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := AsString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := AsString(v); s != "" {
		return []string{s}
	}
	return nil
}
