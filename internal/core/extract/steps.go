package extract

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"recipe-collector/internal/core/ai"
	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/pagetext"
	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/core/schema"
	"recipe-collector/internal/pkg/common"
)

var (
	errNoMetadata = errors.New("metadata has no description, subtitles or title")
	errNoSchema   = errors.New("no schema.org recipe on page")
	errNoVideo    = errors.New("no video downloaded")
	errNoPage     = errors.New("no page fetched")
)

type stepFunc func(o *Orchestrator, ctx context.Context, r *run) error

var steps = map[State]stepFunc{
	StateValidate:              (*Orchestrator).validate,
	StateVideoMetadata:         (*Orchestrator).videoMetadata,
	StateVideoDownload:         (*Orchestrator).videoDownload,
	StateVideoInference:        (*Orchestrator).videoInference,
	StateMetadataInference:     (*Orchestrator).metadataInference,
	StateWebpageFetch:          (*Orchestrator).webpageFetch,
	StateWebpageSchema:         (*Orchestrator).webpageSchema,
	StateWebpageTextInference:  (*Orchestrator).webpageTextInference,
	StateDirectVideoInference:  (*Orchestrator).directVideoInference,
	StateImageInference:        (*Orchestrator).imageInference,
	StateCaptionFetch:          (*Orchestrator).captionFetch,
	StateCaptionImageInference: (*Orchestrator).captionImageInference,
}

func (o *Orchestrator) validate(ctx context.Context, r *run) error {
	_, err := o.validator.ValidateAndResolve(ctx, r.url)
	return err
}

func (o *Orchestrator) videoMetadata(ctx context.Context, r *run) error {
	md, err := o.downloader.FetchMetadata(ctx, r.url)
	if md != nil {
		r.metadata = md
	}
	return err
}

func (o *Orchestrator) videoDownload(ctx context.Context, r *run) error {
	v, err := o.downloader.Download(ctx, r.url)
	if err != nil {
		return err
	}
	r.video = v
	return nil
}

func (o *Orchestrator) videoInference(ctx context.Context, r *run) error {
	if r.video == nil {
		return errNoVideo
	}
	return o.infer(ctx, r, ai.InferenceRequest{
		Media:     r.video.Data,
		MediaKind: classify.MediaVideo,
		MimeType:  r.video.MimeType,
		Sources:   metadataSources(r),
	}, r.metadata.Title)
}

func (o *Orchestrator) metadataInference(ctx context.Context, r *run) error {
	if !r.metadata.HasContent() {
		return errNoMetadata
	}
	return o.infer(ctx, r, ai.InferenceRequest{Sources: metadataSources(r)}, r.metadata.Title)
}

func (o *Orchestrator) webpageFetch(ctx context.Context, r *run) error {
	page, err := o.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return err
	}
	r.page = page
	r.title = pagetext.Title(page.Body)
	return nil
}

func (o *Orchestrator) webpageSchema(_ context.Context, r *run) error {
	if r.page == nil {
		return errNoPage
	}
	sr := schema.Extract(string(r.page.Body))
	if sr == nil {
		return errNoSchema
	}
	rec, err := recipe.Normalize(sr, recipe.Hints{Title: r.title, SourceURL: r.url})
	if err != nil {
		return err
	}
	r.recipe = rec
	return nil
}

func (o *Orchestrator) webpageTextInference(ctx context.Context, r *run) error {
	if r.page == nil {
		return errNoPage
	}
	text, err := o.text.Extract(r.page.Body, r.page.URL, pagetext.MaxWebpageText)
	if err != nil {
		return err
	}
	return o.infer(ctx, r, ai.InferenceRequest{
		Sources: ai.Sources{SourceURL: r.url, WebpageText: text.Text},
	}, firstNonEmpty(r.title, text.Title))
}

func (o *Orchestrator) directVideoInference(ctx context.Context, r *run) error {
	return o.infer(ctx, r, ai.InferenceRequest{
		Media:     r.input.Media,
		MediaKind: classify.MediaVideo,
		MimeType:  r.input.MimeType,
		Sources:   ai.Sources{SourceURL: r.url},
	}, "")
}

// imageInference 只用圖片推論，不帶來源網址
func (o *Orchestrator) imageInference(ctx context.Context, r *run) error {
	r.url = ""
	return o.infer(ctx, r, ai.InferenceRequest{
		Media:     r.input.Media,
		MediaKind: classify.MediaImage,
		MimeType:  r.input.MimeType,
	}, "")
}

// captionFetch 抓取圖片說明中的網址作為推論脈絡；內容不足時仍保留網址
func (o *Orchestrator) captionFetch(ctx context.Context, r *run) error {
	page, err := o.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return err
	}
	text, err := o.text.Extract(page.Body, page.URL, pagetext.MaxContextText)
	if text != nil {
		r.title = text.Title
	}
	if err != nil {
		common.LogDebug("說明網址內容不足", zap.String("url", r.url), zap.Error(err))
		return nil
	}
	r.pageText = text.Text
	return nil
}

func (o *Orchestrator) captionImageInference(ctx context.Context, r *run) error {
	return o.infer(ctx, r, ai.InferenceRequest{
		Media:     r.input.Media,
		MediaKind: classify.MediaImage,
		MimeType:  r.input.MimeType,
		Sources:   ai.Sources{SourceURL: r.url, WebpageText: r.pageText},
	}, r.title)
}

// infer 推論後正規化；正規化失敗與推論失敗同樣視為步驟失敗
func (o *Orchestrator) infer(ctx context.Context, r *run, req ai.InferenceRequest, titleHint string) error {
	res, err := o.inferrer.Infer(ctx, req)
	if err != nil {
		return err
	}
	rec, err := recipe.Normalize(res, recipe.Hints{Title: titleHint, SourceURL: r.url, Creator: r.metadata.Uploader})
	if err != nil {
		return err
	}
	r.recipe = rec
	return nil
}

func metadataSources(r *run) ai.Sources {
	md := r.metadata
	return ai.Sources{
		Subtitles:   md.Subtitles,
		Description: md.Description,
		Title:       md.Title,
		Creator:     md.Uploader,
		Tags:        md.Tags,
		SourceURL:   r.url,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
