package downloader

import (
	"regexp"
	"strings"
)

// MinSubtitleLength 清理後少於此長度的字幕視為沒有字幕
const MinSubtitleLength = 20

var (
	timestampLine = regexp.MustCompile(`^\d{2}:\d{2}`)
	sequenceLine  = regexp.MustCompile(`^\d+$`)
	markupTag     = regexp.MustCompile(`<[^>]+>`)
	styleBlock    = regexp.MustCompile(`\{[^}]+\}`)
)

// CleanSubtitles 把 VTT/SRT 字幕轉成去重後的純文字
func CleanSubtitles(raw string) string {
	var lines []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "",
			strings.HasPrefix(line, "WEBVTT"),
			strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "Kind:"),
			strings.HasPrefix(line, "Language:"),
			timestampLine.MatchString(line),
			sequenceLine.MatchString(line),
			strings.Contains(line, "-->"):
			continue
		}

		line = markupTag.ReplaceAllString(line, "")
		line = strings.TrimSpace(styleBlock.ReplaceAllString(line, ""))
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}

	text := strings.Join(lines, " ")
	if len(text) <= MinSubtitleLength {
		return ""
	}
	return text
}
