// Package downloader 透過 yt-dlp 取得影音平台的中繼資料、字幕與影片
package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/safeurl"
	"recipe-collector/internal/pkg/common"
)

// ErrTooLarge 影片超過大小上限
var ErrTooLarge = errors.New("video exceeds size limit")

// Metadata 影片中繼資料
type Metadata struct {
	Title       string
	Description string
	Uploader    string
	Duration    int // 秒
	Tags        []string
	Subtitles   string // 清理後的字幕文字
	Platform    string
}

// HasContent 是否有可用於推論的文字（描述、字幕或標題）
func (m *Metadata) HasContent() bool {
	return m != nil && (m.Description != "" || m.Subtitles != "" || m.Title != "")
}

// Video 下載完成的影片
type Video struct {
	Data     []byte
	MimeType string
}

// Runner 執行外部指令，測試時可替換
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// ExecRunner 使用 os/exec 執行
type ExecRunner struct{}

// Run 執行指令並收集輸出
func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Options 下載器設定
type Options struct {
	Binary          string
	MetadataTimeout time.Duration
	DownloadTimeout time.Duration
	MaxFileBytes    int64
	SubtitleLangs   string
	WorkDir         string // 暫存目錄的上層，空字串使用系統預設
}

// Downloader yt-dlp 包裝
type Downloader struct {
	opts   Options
	runner Runner
}

// New 建立下載器，runner 為 nil 時使用 ExecRunner
func New(opts Options, runner Runner) *Downloader {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.MetadataTimeout <= 0 {
		opts.MetadataTimeout = 60 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 120 * time.Second
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = 50 * 1024 * 1024
	}
	if opts.SubtitleLangs == "" {
		opts.SubtitleLangs = "de,en"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Downloader{opts: opts, runner: runner}
}

// FetchMetadata 取得中繼資料與字幕；回傳的 Metadata 永遠不為 nil，
// 中繼資料 JSON 取得失敗時同時回傳錯誤
func (d *Downloader) FetchMetadata(ctx context.Context, rawURL string) (*Metadata, error) {
	u, err := safeurl.CheckSyntax(rawURL)
	if err != nil {
		return &Metadata{}, err
	}
	md := &Metadata{Platform: classify.PlatformForHost(u.Hostname())}

	metaErr := d.fetchInfo(ctx, rawURL, md)
	if metaErr != nil {
		common.LogWarn("中繼資料擷取失敗", zap.String("url", rawURL), zap.Error(metaErr))
	}
	if ctx.Err() != nil {
		return md, ctx.Err()
	}

	if subs, err := d.fetchSubtitles(ctx, rawURL); err != nil {
		common.LogWarn("字幕擷取失敗", zap.String("url", rawURL), zap.Error(err))
	} else if subs != "" {
		md.Subtitles = subs
		common.LogInfo("字幕已擷取", zap.Int("chars", len(subs)))
	}

	return md, metaErr
}

func (d *Downloader) fetchInfo(ctx context.Context, rawURL string, md *Metadata) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.MetadataTimeout)
	defer cancel()

	stdout, stderr, err := d.runner.Run(ctx, "", d.opts.Binary, "--no-download", "--dump-json", "--no-playlist", "--", rawURL)
	if err != nil {
		return fmt.Errorf("yt-dlp metadata: %w: %s", err, tail(stderr))
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return fmt.Errorf("yt-dlp metadata: empty output")
	}

	var info map[string]any
	if err := common.ParseJSONBytes(bytes.TrimSpace(stdout), &info); err != nil {
		return fmt.Errorf("yt-dlp metadata: parse json: %w", err)
	}
	md.Title = asString(info["title"])
	md.Description = asString(info["description"])
	md.Uploader = asString(info["uploader"])
	if md.Uploader == "" {
		md.Uploader = asString(info["channel"])
	}
	md.Duration = asInt(info["duration"])
	if tags, ok := info["tags"].([]any); ok {
		for _, t := range tags {
			if s := asString(t); s != "" {
				md.Tags = append(md.Tags, s)
			}
		}
	}
	common.LogInfo("中繼資料已擷取", zap.String("title", md.Title))
	return nil
}

func (d *Downloader) fetchSubtitles(ctx context.Context, rawURL string) (string, error) {
	dir, err := os.MkdirTemp(d.opts.WorkDir, "subs-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(ctx, d.opts.MetadataTimeout)
	defer cancel()

	_, stderr, err := d.runner.Run(ctx, dir, d.opts.Binary,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-lang", d.opts.SubtitleLangs,
		"--sub-format", "vtt/srt/best",
		"--no-playlist",
		"-o", filepath.Join(dir, "subs"),
		"--", rawURL,
	)
	if err != nil {
		return "", fmt.Errorf("yt-dlp subtitles: %w: %s", err, tail(stderr))
	}

	path := d.findSubtitleFile(dir)
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read subtitles: %w", err)
	}
	return CleanSubtitles(string(raw)), nil
}

// findSubtitleFile 依語言順序找字幕檔
func (d *Downloader) findSubtitleFile(dir string) string {
	candidates := []string{"subs.vtt", "subs.srt"}
	for _, lang := range strings.Split(d.opts.SubtitleLangs, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			candidates = append(candidates, "subs."+lang+".vtt", "subs."+lang+".srt")
		}
	}
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	// 其他語言的自動字幕
	matches, _ := filepath.Glob(filepath.Join(dir, "subs*.*"))
	for _, m := range matches {
		if ext := filepath.Ext(m); ext == ".vtt" || ext == ".srt" {
			return m
		}
	}
	return ""
}

// Download 下載影片並讀入記憶體
func (d *Downloader) Download(ctx context.Context, rawURL string) (*Video, error) {
	if _, err := safeurl.CheckSyntax(rawURL); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(d.opts.WorkDir, "video-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(ctx, d.opts.DownloadTimeout)
	defer cancel()

	output := filepath.Join(dir, "video.mp4")
	start := time.Now()
	_, stderr, err := d.runner.Run(ctx, dir, d.opts.Binary,
		"-f", "best[ext=mp4]/best",
		"--no-playlist",
		"--max-filesize", fmt.Sprintf("%d", d.opts.MaxFileBytes),
		"-o", output,
		"--", rawURL,
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp download: %w", ctx.Err())
		}
		return nil, fmt.Errorf("yt-dlp download: %w: %s", err, tail(stderr))
	}

	info, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp download: no output file: %w", err)
	}
	if info.Size() > d.opts.MaxFileBytes {
		return nil, ErrTooLarge
	}
	data, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}

	common.LogInfo("影片已下載",
		zap.Int64("size_kb", info.Size()/1024),
		zap.Duration("耗時", time.Since(start)),
	)
	return &Video{Data: data, MimeType: "video/mp4"}, nil
}

func tail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		return s[len(s)-300:]
	}
	return s
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func asInt(v any) int {
	var f float64
	if _, err := fmt.Sscan(asString(v), &f); err != nil {
		return 0
	}
	return int(f)
}
