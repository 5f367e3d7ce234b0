package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 Wrap 過的錯誤仍能被 errors.Is 命中
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap 以相同代碼包裝一個底層錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// CodeOf 取得錯誤代碼
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternalError
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503

	// 擷取流程
	ErrCodeUnsafeURL                    = "UNSAFE_URL"
	ErrCodeFetch                        = "FETCH_ERROR"
	ErrCodeInference                    = "INFERENCE_ERROR"
	ErrCodeIncompleteRecipe             = "INCOMPLETE_RECIPE"
	ErrCodeDownloadAndMetadataExhausted = "DOWNLOAD_AND_METADATA_EXHAUSTED"
	ErrCodeFetchFailed                  = "FETCH_FAILED"
	ErrCodeNoRecipeFound                = "NO_RECIPE_FOUND"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)

	// 業務錯誤
	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "invalid image format", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "image exceeds size limit", http.StatusBadRequest, nil)
	ErrCacheFull          = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheMiss          = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)

	// 擷取流程錯誤
	// ErrUnsafeURL 違反 SSRF 政策（scheme、位址類別或重新導向目標），不重試
	ErrUnsafeURL = NewError(ErrCodeUnsafeURL, "this link cannot be processed", http.StatusBadRequest, nil)
	// ErrFetch 網路、逾時或重新導向次數過多
	ErrFetch = NewError(ErrCodeFetch, "fetch failed", http.StatusBadGateway, nil)
	// ErrInference AI 服務失敗或逾時
	ErrInference = NewError(ErrCodeInference, "inference failed", http.StatusBadGateway, nil)
	// ErrIncompleteRecipe 正規化後缺少食材或步驟
	ErrIncompleteRecipe = NewError(ErrCodeIncompleteRecipe, "recipe is incomplete", http.StatusUnprocessableEntity, nil)

	// 終止錯誤（整條備援鏈用盡）
	ErrDownloadAndMetadataExhausted = NewError(ErrCodeDownloadAndMetadataExhausted, "could not extract a recipe from this input", http.StatusUnprocessableEntity, nil)
	ErrFetchFailed                  = NewError(ErrCodeFetchFailed, "could not extract a recipe from this input", http.StatusUnprocessableEntity, nil)
	ErrNoRecipeFound                = NewError(ErrCodeNoRecipeFound, "could not extract a recipe from this input", http.StatusUnprocessableEntity, nil)
)
