// Package validator はリクエストボディの検証（echo.Validator実装）。
package validator

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"ecshop/internal/usecase"

	"github.com/go-playground/validator/v10"
)

type RequestValidator struct {
	v *validator.Validate
}

func New() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーの項目名はjsonタグ
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate は失敗時に項目ごとの理由を持つ *usecase.HTTPError を返す
func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = reason(fe)
	}
	return usecase.NewValidationError(fields)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid email"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return fe.Tag()
	}
}
