package common

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ShortHexID 取隨機 UUID 的前 n 個十六進位字元（小寫）
func ShortHexID(n int) string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	if n <= 0 || n > len(hex) {
		return hex
	}
	return hex[:n]
}

// TruncateRunes 依字元數截斷字串，超過時附加 "..."
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename 移除檔名中不安全的字元
func SanitizeFilename(name string) string {
	clean := unsafeFilenameChars.ReplaceAllString(name, "")
	clean = strings.Join(strings.Fields(clean), " ")
	clean = strings.Trim(clean, ". ")
	if utf8.RuneCountInString(clean) > 100 {
		clean = string([]rune(clean)[:100])
	}
	if clean == "" {
		return "recipe"
	}
	return clean
}
