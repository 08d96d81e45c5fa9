package rating

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationResult 校验结果
type ValidationResult struct {
	IsValid bool         `json:"is_valid"`
	Errors  []FieldError `json:"errors"`
}

// Err 转换为 error（合法时返回 nil）
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validator 货件请求结构校验器
// 累积全部问题后一次返回，不做短路
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	v := validator.New()

	// 字段路径使用 json 名称，与调用方看到的字段保持一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v}
}

// Validate 校验请求，纯函数，无外部调用
func (v *Validator) Validate(req *ShipmentRequest) ValidationResult {
	if req == nil {
		return ValidationResult{
			IsValid: false,
			Errors:  []FieldError{{Field: "request", Message: ErrNilRequest.Error()}},
		}
	}

	err := v.validate.Struct(req)
	if err == nil {
		return ValidationResult{IsValid: true, Errors: []FieldError{}}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationResult{
			IsValid: false,
			Errors:  []FieldError{{Field: "request", Message: err.Error()}},
		}
	}

	issues := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}

	return ValidationResult{IsValid: false, Errors: issues}
}

// fieldPath 去掉顶层结构体名称，例如 ShipmentRequest.destination.postal_code -> destination.postal_code
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	case "min":
		if fe.Field() == "packages" {
			return "at least one package is required"
		}
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return "is invalid"
	}
}
