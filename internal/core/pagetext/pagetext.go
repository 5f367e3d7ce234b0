// Package pagetext 把網頁 HTML 轉成給 AI 使用的純文字
package pagetext

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"recipe-collector/internal/pkg/common"
)

// 文字長度限制
const (
	MaxWebpageText   = 6000 // 網頁文字推論
	MaxContextText   = 4000 // 圖片說明中的網頁脈絡
	MinContentLength = 100
)

// ErrInsufficientContent 擷取到的文字太短
var ErrInsufficientContent = errors.New("insufficient webpage content")

var (
	imageLinkRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe           = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
)

// Result 擷取結果
type Result struct {
	Title string
	Text  string
}

// Extractor 主要內容擷取器
type Extractor struct {
	converter *md.Converter
}

// New 建立擷取器
func New() *Extractor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Extractor{converter: converter}
}

// Title 取出網頁標題（og:title 優先）
func Title(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return ""
	}
	return titleOf(doc)
}

func titleOf(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

// Extract 取出主要內容文字，超過 maxChars 時截斷；少於 MinContentLength 回傳 ErrInsufficientContent
func (e *Extractor) Extract(page []byte, pageURL string, maxChars int) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return nil, err
	}
	res := &Result{Title: titleOf(doc)}

	text := e.readable(page, pageURL)
	if utf8.RuneCountInString(text) < MinContentLength {
		common.LogDebug("readability 內容不足，改用整頁文字", zap.String("url", pageURL))
		text = e.stripped(doc)
	}

	if utf8.RuneCountInString(text) < MinContentLength {
		return res, ErrInsufficientContent
	}
	res.Text = common.TruncateRunes(text, maxChars)
	return res, nil
}

// readable 使用 readability 取出主要內容再轉成 markdown
func (e *Extractor) readable(page []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(string(page)), u)
	if err != nil {
		common.LogDebug("readability 解析失敗", zap.Error(err))
		return ""
	}
	markdown, err := e.converter.ConvertString(article.Content)
	if err != nil {
		return cleanText(article.TextContent)
	}
	return cleanText(markdown)
}

// stripped 移除 script、style、nav、header、footer 後取整頁文字
func (e *Extractor) stripped(doc *goquery.Document) string {
	body := doc.Find("body")
	body.Find("script, style, noscript, nav, header, footer, iframe, svg, form").Remove()

	htmlBody, err := body.Html()
	if err == nil {
		if markdown, err := e.converter.ConvertString(htmlBody); err == nil {
			return cleanText(markdown)
		}
	}
	return cleanText(body.Text())
}

// cleanText 移除連結語法與多餘空白行
func cleanText(s string) string {
	s = imageLinkRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		out = append(out, line)
	}
	s = strings.Join(out, "\n")
	return strings.TrimSpace(excessiveLinesRe.ReplaceAllString(s, "\n\n"))
}
