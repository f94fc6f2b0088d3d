package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerでそのままJSONにするエラー
type HTTPError struct {
	Status  int
	Message string
	// 入力エラーの項目ごとの理由
	Fields map[string]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 400 項目ごとの理由つき
func NewValidationError(fields map[string]string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "validation error",
		Fields:  fields,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	errUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	errDB           = NewHTTPError(http.StatusInternalServerError, "db error")
)
