// Package classify 判斷輸入屬於哪一種擷取路徑
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

// InputClass 輸入類別
type InputClass string

const (
	VideoPlatformURL    InputClass = "video_platform_url"
	GenericWebpageURL   InputClass = "generic_webpage_url"
	DirectVideo         InputClass = "direct_video"
	DirectImage         InputClass = "direct_image"
	ImageWithCaptionURL InputClass = "image_with_caption_url"
	// Unsupported 沒有媒體也沒有可用的 URL
	Unsupported InputClass = "unsupported"
)

// MediaKind 上傳媒體種類
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaImage
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	}
	return "none"
}

// Result 分類結果，URL 為文字中找到的第一個合法 http(s) URL
type Result struct {
	Class InputClass
	URL   string
}

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// 影音平台網域，以主機名稱後綴比對
var videoPlatforms = []struct {
	domain   string
	platform string
}{
	{"tiktok.com", "tiktok"},
	{"vm.tiktok.com", "tiktok"},
	{"instagram.com", "instagram"},
	{"youtube.com", "youtube"},
	{"youtu.be", "youtube"},
	{"facebook.com", "facebook"},
	{"fb.watch", "facebook"},
}

// Classify 依文字與媒體決定輸入類別，不會失敗
func Classify(text string, media MediaKind) Result {
	found := FindURL(text)

	switch media {
	case MediaVideo:
		// 影片附帶的 URL 只作為來源脈絡
		return Result{Class: DirectVideo, URL: found}
	case MediaImage:
		if found != "" {
			return Result{Class: ImageWithCaptionURL, URL: found}
		}
		return Result{Class: DirectImage}
	}

	if found == "" {
		return Result{Class: Unsupported}
	}
	if IsVideoPlatformURL(found) {
		return Result{Class: VideoPlatformURL, URL: found}
	}
	return Result{Class: GenericWebpageURL, URL: found}
}

// FindURL 找出文字中第一個合法的 http(s) URL，去除結尾標點，找不到時回傳空字串
func FindURL(text string) string {
	for _, match := range urlPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:!?)")
		u, err := url.Parse(match)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
			continue
		}
		return match
	}
	return ""
}

// PlatformForHost 依主機名稱回傳影音平台名稱，非影音平台回傳空字串
func PlatformForHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, p := range videoPlatforms {
		if host == p.domain || strings.HasSuffix(host, "."+p.domain) {
			return p.platform
		}
	}
	return ""
}

// IsVideoPlatformURL 判斷 URL 是否屬於支援的影音平台
func IsVideoPlatformURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return PlatformForHost(u.Hostname()) != ""
}
