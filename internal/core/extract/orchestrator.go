// Package extract 依輸入類別執行有限狀態機，逐一嘗試擷取策略直到得到完整食譜
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipe-collector/internal/core/ai"
	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/downloader"
	"recipe-collector/internal/core/pagetext"
	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/core/safeurl"
	"recipe-collector/internal/infrastructure/metrics"
	"recipe-collector/internal/pkg/common"
)

// Validator URL 安全驗證
type Validator interface {
	ValidateAndResolve(ctx context.Context, rawURL string) (*safeurl.Target, error)
}

// Fetcher 安全抓取網頁
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*safeurl.Page, error)
}

// Downloader 影音平台中繼資料與影片下載
type Downloader interface {
	FetchMetadata(ctx context.Context, rawURL string) (*downloader.Metadata, error)
	Download(ctx context.Context, rawURL string) (*downloader.Video, error)
}

// Timeouts 各類步驟的時間上限
type Timeouts struct {
	Validate  time.Duration
	Metadata  time.Duration
	Download  time.Duration
	Fetch     time.Duration
	Inference time.Duration
}

// Input 一次擷取請求
type Input struct {
	Text      string
	Media     []byte
	MediaKind classify.MediaKind
	MimeType  string
}

// Result 成功的擷取結果
type Result struct {
	Recipe   *recipe.Recipe
	Class    classify.InputClass
	Attempts []Attempt
}

// Orchestrator 擷取流程協調器
type Orchestrator struct {
	validator  Validator
	fetcher    Fetcher
	downloader Downloader
	inferrer   ai.Inferrer
	text       *pagetext.Extractor
	timeouts   Timeouts
}

// New 建立協調器
func New(validator Validator, fetcher Fetcher, dl Downloader, inferrer ai.Inferrer, timeouts Timeouts) *Orchestrator {
	if timeouts.Validate <= 0 {
		timeouts.Validate = 10 * time.Second
	}
	if timeouts.Metadata <= 0 {
		timeouts.Metadata = 2 * time.Minute
	}
	if timeouts.Download <= 0 {
		timeouts.Download = 2 * time.Minute
	}
	if timeouts.Fetch <= 0 {
		timeouts.Fetch = 15 * time.Second
	}
	if timeouts.Inference <= 0 {
		timeouts.Inference = 150 * time.Second
	}
	return &Orchestrator{
		validator:  validator,
		fetcher:    fetcher,
		downloader: dl,
		inferrer:   inferrer,
		text:       pagetext.New(),
		timeouts:   timeouts,
	}
}

// run 一次請求的狀態與部分結果
type run struct {
	input    Input
	class    classify.InputClass
	url      string
	metadata *downloader.Metadata
	video    *downloader.Video
	page     *safeurl.Page
	title    string // 網頁標題
	pageText string // 說明網址的網頁文字
	recipe   *recipe.Recipe
	attempts []Attempt
}

// Run 分類輸入並執行對應的流程
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Result, error) {
	c := classify.Classify(in.Text, in.MediaKind)
	if c.Class == classify.Unsupported {
		return nil, common.ErrInvalidRequest.Wrap(errors.New("no media and no http(s) link found"))
	}
	return o.RunClass(ctx, in, c)
}

// RunClass 以指定的分類執行流程
func (o *Orchestrator) RunClass(ctx context.Context, in Input, c classify.Result) (*Result, error) {
	f, ok := flows[c.Class]
	if !ok {
		return nil, common.ErrInvalidRequest.Wrap(fmt.Errorf("unsupported input class %q", c.Class))
	}

	r := &run{input: in, class: c.Class, url: c.URL, metadata: &downloader.Metadata{}}
	common.LogInfo("開始擷取",
		zap.String("class", string(c.Class)),
		zap.String("url", c.URL),
		zap.String("media", in.MediaKind.String()),
	)

	state := f.start
	for {
		e, ok := f.edges[state]
		if !ok {
			return nil, fmt.Errorf("no transition for state %q in %s", state, c.Class)
		}

		err := o.step(ctx, state, r)

		// 呼叫端取消時立即結束
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.ObserveExtraction(string(c.Class), "cancelled")
			common.LogWarn("擷取已取消", zap.String("state", string(state)), zap.String("path", path(r.attempts)))
			return nil, ctxErr
		}

		if err == nil {
			if e.onSuccess == StateDone {
				metrics.ObserveExtraction(string(c.Class), "success")
				common.LogInfo("擷取完成",
					zap.String("class", string(c.Class)),
					zap.String("path", path(r.attempts)),
					zap.String("title", r.recipe.Title),
				)
				return &Result{Recipe: r.recipe, Class: c.Class, Attempts: r.attempts}, nil
			}
			state = e.onSuccess
			continue
		}

		if errors.Is(err, common.ErrUnsafeURL) && !degradesOnUnsafe[state] {
			return nil, o.fail(r, common.ErrUnsafeURL, err)
		}
		if e.onFailure == StateFailed {
			return nil, o.fail(r, e.terminal, err)
		}
		state = e.onFailure
	}
}

func (o *Orchestrator) fail(r *run, terminal *common.CustomError, cause error) error {
	metrics.ObserveExtraction(string(r.class), terminal.Code)
	common.LogWarn("擷取失敗",
		zap.String("class", string(r.class)),
		zap.String("code", terminal.Code),
		zap.String("path", path(r.attempts)),
		zap.Error(cause),
	)
	return &Failure{
		Class:    r.class,
		Attempts: r.attempts,
		Reason:   cause.Error(),
		Err:      terminal,
	}
}

// step 以該狀態的時間上限執行一個步驟並記錄結果
func (o *Orchestrator) step(ctx context.Context, state State, r *run) error {
	fn, ok := steps[state]
	if !ok {
		return fmt.Errorf("no step for state %q", state)
	}

	stepCtx, cancel := context.WithTimeout(ctx, o.timeoutFor(state))
	defer cancel()

	start := time.Now()
	err := fn(o, stepCtx, r)
	if err == nil && stepCtx.Err() != nil {
		err = stepCtx.Err()
	}
	elapsed := time.Since(start)

	a := Attempt{State: state, Outcome: OutcomeSuccess, Duration: elapsed}
	if err != nil {
		a.Outcome = OutcomeFailure
		a.Reason = reasonOf(err)
	}
	r.attempts = append(r.attempts, a)
	metrics.ObserveStep(string(state), string(a.Outcome), elapsed)
	common.LogDebug("步驟結束",
		zap.String("state", string(state)),
		zap.String("outcome", string(a.Outcome)),
		zap.String("reason", a.Reason),
		zap.Duration("耗時", elapsed),
	)
	return err
}

func (o *Orchestrator) timeoutFor(state State) time.Duration {
	switch state {
	case StateValidate:
		return o.timeouts.Validate
	case StateVideoMetadata:
		return o.timeouts.Metadata
	case StateVideoDownload:
		return o.timeouts.Download
	case StateWebpageFetch, StateWebpageSchema, StateCaptionFetch:
		return o.timeouts.Fetch
	default:
		return o.timeouts.Inference
	}
}

func reasonOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return common.TruncateRunes(err.Error(), 200)
}
