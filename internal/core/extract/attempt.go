package extract

import (
	"fmt"
	"strings"
	"time"

	"recipe-collector/internal/core/classify"
)

// Outcome 步驟結果
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Attempt 一個步驟的執行紀錄
type Attempt struct {
	State    State         `json:"state"`
	Outcome  Outcome       `json:"outcome"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"-"`
}

// Failure 擷取失敗；Unwrap 回傳 common 中的錯誤分類
type Failure struct {
	Class    classify.InputClass
	Attempts []Attempt
	Reason   string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v (%s)", f.Class, f.Err, f.Reason)
}

// Unwrap 回傳錯誤分類
func (f *Failure) Unwrap() error {
	return f.Err
}

// Path 已嘗試的狀態，例如 "validate -> webpage_fetch"
func (f *Failure) Path() string {
	return path(f.Attempts)
}

func path(attempts []Attempt) string {
	names := make([]string, len(attempts))
	for i, a := range attempts {
		names[i] = string(a.State)
	}
	return strings.Join(names, " -> ")
}
