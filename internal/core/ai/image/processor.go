// Package image 把上傳的媒體轉成模型可接受的 data URL
package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // 支援 WebP

	"recipe-collector/internal/pkg/common"
)

// Processor 媒體處理器
type Processor struct {
	maxImageBytes int64
	maxVideoBytes int64
}

// NewProcessor 創建媒體處理器
func NewProcessor(maxImageBytes, maxVideoBytes int64) *Processor {
	return &Processor{
		maxImageBytes: maxImageBytes,
		maxVideoBytes: maxVideoBytes,
	}
}

// DetectMime 依內容偵測 MIME 類型
func DetectMime(data []byte) string {
	return mimetype.Detect(data).String()
}

// PrepareImage 解碼後重新編碼為 JPEG data URL
func (p *Processor) PrepareImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", common.ErrInvalidImageFormat
	}
	if p.maxImageBytes > 0 && int64(len(data)) > p.maxImageBytes {
		return "", common.ErrInvalidImageSize
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

// PrepareVideo 檢查大小並轉成 data URL；mimeHint 為空或不是影片時以偵測結果為準
func (p *Processor) PrepareVideo(data []byte, mimeHint string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("video data is empty")
	}
	if p.maxVideoBytes > 0 && int64(len(data)) > p.maxVideoBytes {
		return "", fmt.Errorf("video size %d exceeds maximum limit of %d bytes", len(data), p.maxVideoBytes)
	}

	mime := mimeHint
	if !strings.HasPrefix(mime, "video/") {
		mime = DetectMime(data)
	}
	if !strings.HasPrefix(mime, "video/") {
		mime = "video/mp4"
	}
	return dataURL(mime, data), nil
}

func dataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
