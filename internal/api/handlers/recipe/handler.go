// Package recipe 食譜擷取、查詢與匯出的 HTTP 處理程序
package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/export"
	"recipe-collector/internal/core/extract"
	recipeModel "recipe-collector/internal/core/recipe"
	"recipe-collector/internal/core/recipecache"
	"recipe-collector/internal/pkg/common"
)

// Extractor 執行一次擷取
type Extractor interface {
	Run(ctx context.Context, in extract.Input) (*extract.Result, error)
}

// ExtractRequest 以文字（含連結）擷取食譜
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// AttemptResponse 單一步驟的紀錄
type AttemptResponse struct {
	State      string `json:"state"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// ExtractResponse 擷取成功
type ExtractResponse struct {
	Token    string              `json:"token"`
	Class    string              `json:"class"`
	Recipe   *recipeModel.Recipe `json:"recipe"`
	Attempts []AttemptResponse   `json:"attempts"`
}

// FailureResponse 擷取失敗，附上嘗試過的步驟
type FailureResponse struct {
	common.ErrorResponse
	Class    string            `json:"class"`
	Attempts []AttemptResponse `json:"attempts"`
}

// Handler 食譜處理程序
type Handler struct {
	extractor Extractor
	recipes   *recipecache.Cache
	maxUpload int64
	debug     bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(extractor Extractor, recipes *recipecache.Cache, maxUpload int64, debug bool) *Handler {
	return &Handler{
		extractor: extractor,
		recipes:   recipes,
		maxUpload: maxUpload,
		debug:     debug,
	}
}

// HandleExtract 接受 JSON {"text"} 或 multipart（file、caption）
func (h *Handler) HandleExtract(c *gin.Context) {
	requestID := requestid.Get(c)

	in, err := h.bindInput(c)
	if err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestID))
		h.respondError(c, err)
		return
	}

	common.LogInfo("開始處理擷取請求",
		zap.String("request_id", requestID),
		zap.String("media", in.MediaKind.String()),
		zap.Int("media_bytes", len(in.Media)),
	)

	res, err := h.extractor.Run(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token := h.recipes.Put(res.Recipe)
	common.LogInfo("擷取請求完成",
		zap.String("request_id", requestID),
		zap.String("token", token),
		zap.String("class", string(res.Class)),
	)

	c.JSON(http.StatusOK, ExtractResponse{
		Token:    token,
		Class:    string(res.Class),
		Recipe:   res.Recipe,
		Attempts: attemptResponses(res.Attempts),
	})
}

// HandleGetRecipe 以 token 取回快取中的食譜
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	r, ok := h.recipes.Get(c.Param("token"))
	if !ok {
		h.respondError(c, common.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleExport 以 Markdown 或 Cooklang 下載快取中的食譜
func (h *Handler) HandleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	r, ok := h.recipes.Get(c.Param("token"))
	if !ok {
		h.respondError(c, common.ErrNotFound)
		return
	}

	body, err := export.Render(r, format)
	if err != nil {
		h.respondError(c, common.ErrInternalError.Wrap(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(r, format)))
	c.Data(http.StatusOK, format.ContentType(), []byte(body))
}

func (h *Handler) bindInput(c *gin.Context) (extract.Input, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return extract.Input{}, common.ErrInvalidRequest.Wrap(err)
		}
		return extract.Input{Text: req.Text}, nil
	}

	in := extract.Input{Text: c.PostForm("caption")}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, common.ErrInvalidRequest.Wrap(err)
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return in, common.ErrInvalidRequest.Wrap(fmt.Errorf("file exceeds %d bytes", h.maxUpload))
	}

	f, err := fh.Open()
	if err != nil {
		return in, common.ErrInvalidRequest.Wrap(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return in, common.ErrInvalidRequest.Wrap(err)
	}

	mt := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(mt.String(), "image/"):
		in.MediaKind = classify.MediaImage
	case strings.HasPrefix(mt.String(), "video/"):
		in.MediaKind = classify.MediaVideo
	default:
		return in, common.ErrInvalidRequest.Wrap(fmt.Errorf("unsupported media type %s", mt.String()))
	}
	in.Media = data
	in.MimeType = mt.String()
	return in, nil
}

// respondError 把錯誤轉成 HTTP 響應；對使用者只顯示錯誤分類的訊息
func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timeout",
		})
		return
	}
	if errors.Is(err, context.Canceled) {
		common.LogInfo("用戶端已取消請求", zap.String("path", c.Request.URL.Path))
		c.Abort()
		return
	}

	resp := common.ErrorResponse{Code: common.CodeOf(err), Message: common.ErrInternalError.Message}
	var ce *common.CustomError
	if errors.As(err, &ce) {
		resp.Message = ce.Message
	}
	if h.debug {
		resp.Details = err.Error()
	}
	status := common.StatusOf(err)
	_ = c.Error(err)

	var failure *extract.Failure
	if errors.As(err, &failure) {
		c.AbortWithStatusJSON(status, FailureResponse{
			ErrorResponse: resp,
			Class:         string(failure.Class),
			Attempts:      attemptResponses(failure.Attempts),
		})
		return
	}
	c.AbortWithStatusJSON(status, resp)
}

func attemptResponses(attempts []extract.Attempt) []AttemptResponse {
	out := make([]AttemptResponse, len(attempts))
	for i, a := range attempts {
		out[i] = AttemptResponse{
			State:      string(a.State),
			Outcome:    string(a.Outcome),
			Reason:     a.Reason,
			DurationMS: a.Duration.Milliseconds(),
		}
	}
	return out
}
