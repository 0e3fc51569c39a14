// Package errs 定義服務層回傳的錯誤分類與對應的 HTTP 狀態碼。
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

type Code int

const (
	Internal Code = iota
	Validation
	Forbidden
	NotFound
	Unauthenticated
)

var codeNames = map[Code]string{
	Internal:        "internal",
	Validation:      "validation",
	Forbidden:       "forbidden",
	NotFound:        "not_found",
	Unauthenticated: "unauthenticated",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "unknown"
}

// Error 帶分類碼的錯誤，FuncName/FileName 記錄產生位置供日誌使用
type Error struct {
	Code     Code   `json:"-"`
	Message  string `json:"message"`
	FuncName string `json:"-"`
	FileName string `json:"-"`
	Err      error  `json:"-"`
}

// Newf 建立錯誤並記錄呼叫端位置
func Newf(code Code, format string, args ...any) *Error {
	return newAt(2, code, nil, format, args...)
}

// Wrapf 同 Newf，但保留原始錯誤供 errors.Is 判斷
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return newAt(2, code, err, format, args...)
}

func newAt(skip int, code Code, err error, format string, args ...any) *Error {
	e := &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
	if pc, file, line, ok := runtime.Caller(skip); ok {
		e.FileName = fmt.Sprintf("%s:%d", file, line)
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.FuncName = fn.Name()
		}
	}
	return e
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf 取出錯誤分類，非 *Error 一律視為 Internal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus 將錯誤分類對應到 HTTP 狀態碼
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case Validation:
		return http.StatusUnprocessableEntity
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
