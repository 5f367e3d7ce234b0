package safeurl

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-collector/internal/pkg/common"
)

// DialFunc 建立 TCP 連線，測試時可替換
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// FetcherOptions 抓取器設定
type FetcherOptions struct {
	UserAgent    string
	MaxBodyBytes int64
	MaxRedirects int
	Timeout      time.Duration
	Dial         DialFunc
}

// Page 抓取結果
type Page struct {
	URL         string // 最後一跳的 URL
	StatusCode  int
	ContentType string
	Body        []byte
	Truncated   bool
}

// Fetcher 只連線到驗證過的鎖定 IP，手動處理每一次重新導向
type Fetcher struct {
	validator    *Validator
	client       *resty.Client
	dial         DialFunc
	maxBody      int64
	maxRedirects int
}

type pinKey struct{}

// NewFetcher 建立安全抓取器
func NewFetcher(validator *Validator, opts FetcherOptions) *Fetcher {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Dial == nil {
		dialer := &net.Dialer{Timeout: 10 * time.Second}
		opts.Dial = dialer.DialContext
	}

	f := &Fetcher{
		validator:    validator,
		dial:         opts.Dial,
		maxBody:      opts.MaxBodyBytes,
		maxRedirects: opts.MaxRedirects,
	}

	// 不使用 proxy、不重用連線，每一跳都重新解析並連到鎖定的 IP
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           f.pinnedDial,
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
	}

	client := resty.New()
	client.SetTransport(transport)
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	f.client = client

	return f
}

// pinnedDial 忽略 transport 給的位址，改連到 context 內鎖定的目標
func (f *Fetcher) pinnedDial(ctx context.Context, network, _ string) (net.Conn, error) {
	target, ok := ctx.Value(pinKey{}).(*Target)
	if !ok || target == nil {
		return nil, fmt.Errorf("refusing to dial without a validated target")
	}
	return f.dial(ctx, network, target.DialAddr())
}

// Fetch 使用預設的重新導向上限抓取
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	return f.SafeFetch(ctx, rawURL, f.maxRedirects)
}

// SafeFetch 抓取 URL，每一個 Location 都當作新的 URL 完整驗證
func (f *Fetcher) SafeFetch(ctx context.Context, rawURL string, maxRedirects int) (*Page, error) {
	current := rawURL
	for hop := 0; ; hop++ {
		target, err := f.validator.ValidateAndResolve(ctx, current)
		if err != nil {
			return nil, err
		}

		resp, err := f.client.R().
			SetContext(context.WithValue(ctx, pinKey{}, target)).
			SetDoNotParseResponse(true).
			Get(target.URL.String())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, common.ErrFetch.Wrap(fmt.Errorf("request %s: %w", target.Host, err))
		}

		status := resp.StatusCode()
		if isRedirect(status) {
			closeBody(resp)
			location := resp.Header().Get("Location")
			if location == "" {
				return nil, common.ErrFetch.Wrap(fmt.Errorf("redirect %d without location", status))
			}
			if hop >= maxRedirects {
				return nil, common.ErrFetch.Wrap(fmt.Errorf("too many redirects (max %d)", maxRedirects))
			}
			next, err := target.URL.Parse(location)
			if err != nil {
				return nil, common.ErrUnsafeURL.Wrap(fmt.Errorf("malformed redirect location: %w", err))
			}
			common.LogDebug("跟隨重新導向",
				zap.String("from", target.URL.String()),
				zap.String("to", next.String()),
				zap.Int("hop", hop+1),
			)
			current = next.String()
			continue
		}

		if status < 200 || status >= 300 {
			closeBody(resp)
			return nil, common.ErrFetch.Wrap(fmt.Errorf("unexpected status %d", status))
		}

		body, truncated, err := f.readBody(resp)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, common.ErrFetch.Wrap(fmt.Errorf("read body: %w", err))
		}

		return &Page{
			URL:         target.URL.String(),
			StatusCode:  status,
			ContentType: resp.Header().Get("Content-Type"),
			Body:        body,
			Truncated:   truncated,
		}, nil
	}
}

func (f *Fetcher) readBody(resp *resty.Response) ([]byte, bool, error) {
	raw := resp.RawBody()
	if raw == nil {
		return nil, false, nil
	}
	defer raw.Close()

	body, err := io.ReadAll(io.LimitReader(raw, f.maxBody+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > f.maxBody {
		return body[:f.maxBody], true, nil
	}
	return body, false, nil
}

func closeBody(resp *resty.Response) {
	if raw := resp.RawBody(); raw != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(raw, 4096))
		raw.Close()
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// IsHTML 判斷內容類型是否為 HTML
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	return ct == "" || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}
