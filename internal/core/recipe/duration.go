package recipe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDuration = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

	durationPart = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(hours?|hrs?|h|stunden?|std|minutes?|minuten?|mins?|m)\b\.?`)
	durationGlue = regexp.MustCompile(`(?i)^(?:\s|,|and|und|&)*$`)
)

// ParseDuration 解析 ISO-8601 或常見的自由格式時間，回傳分鐘數
func ParseDuration(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := isoDuration.FindStringSubmatch(s); m != nil {
		if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
			return 0, false
		}
		days := atof(m[1])
		hours := atof(m[2])
		mins := atof(m[3])
		secs := atof(m[4])
		total := int(math.Round(days*24*60 + hours*60 + mins + secs/60))
		return total, total > 0
	}

	matches := durationPart.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var total float64
	var rest strings.Builder
	prev := 0
	for _, m := range matches {
		rest.WriteString(s[prev:m[0]])
		prev = m[1]
		value := atof(strings.Replace(s[m[2]:m[3]], ",", ".", 1))
		unit := strings.ToLower(s[m[4]:m[5]])
		if strings.HasPrefix(unit, "h") || strings.HasPrefix(unit, "st") {
			total += value * 60
		} else {
			total += value
		}
	}
	rest.WriteString(s[prev:])

	// 只允許數值與單位之間的連接詞，其他文字一律視為無法解析
	if !durationGlue.MatchString(rest.String()) {
		return 0, false
	}
	minutes := int(math.Round(total))
	return minutes, minutes > 0
}

// FormatMinutes 以標準格式輸出：45 min、1h、1h 30 min
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %d min", h, m)
	}
}

// NormalizeDuration 可解析時回傳標準格式，否則原樣回傳
func NormalizeDuration(s string) string {
	s = strings.TrimSpace(s)
	if minutes, ok := ParseDuration(s); ok {
		return FormatMinutes(minutes)
	}
	if _, isISO := isoZero(s); isISO {
		return ""
	}
	return s
}

// isoZero 判斷是否為長度為零的 ISO 時間（例如 PT0M）
func isoZero(s string) (int, bool) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "") {
		return 0, false
	}
	return 0, atof(m[1])+atof(m[2])+atof(m[3])+atof(m[4]) == 0
}

func atof(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
