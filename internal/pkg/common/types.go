package common

// ChatRequest OpenRouter chat completions 請求結構
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse OpenRouter chat completions 響應結構
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// Message 消息結構
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content 內容結構，依 Type 決定使用哪個欄位
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *MediaURL `json:"image_url,omitempty"`
	VideoURL *MediaURL `json:"video_url,omitempty"`
}

// MediaURL 媒體 URL（通常是 data URL）
type MediaURL struct {
	URL string `json:"url"`
}

// TextContent 建立文字內容
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// ImageContent 建立圖片內容
func ImageContent(dataURL string) Content {
	return Content{Type: "image_url", ImageURL: &MediaURL{URL: dataURL}}
}

// VideoContent 建立影片內容
func VideoContent(dataURL string) Content {
	return Content{Type: "video_url", VideoURL: &MediaURL{URL: dataURL}}
}
