// Package export 把標準食譜輸出成 Markdown 或 Cooklang 檔案
package export

import (
	"fmt"
	"strings"

	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/pkg/common"
)

// Format 輸出格式
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCooklang Format = "cooklang"
)

// ParseFormat 解析格式名稱，空字串為 Markdown
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "cooklang", "cook":
		return FormatCooklang, nil
	}
	return "", common.ErrInvalidRequest.Wrap(fmt.Errorf("unknown export format %q", s))
}

// Extension 副檔名
func (f Format) Extension() string {
	if f == FormatCooklang {
		return ".cook"
	}
	return ".md"
}

// ContentType HTTP Content-Type
func (f Format) ContentType() string {
	if f == FormatCooklang {
		return "text/plain; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Render 依格式輸出
func Render(r *recipe.Recipe, f Format) (string, error) {
	switch f {
	case FormatMarkdown:
		return Markdown(r), nil
	case FormatCooklang:
		return Cooklang(r)
	}
	return "", common.ErrInvalidRequest.Wrap(fmt.Errorf("unknown export format %q", f))
}

// Filename 以標題產生安全的檔名
func Filename(r *recipe.Recipe, f Format) string {
	return common.SanitizeFilename(r.Title) + f.Extension()
}
