// Package validation 负责表单输入的校验，并把失败转换为字段级错误文案。
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DefaultMaxMessageLength 是聊天输入允许的最大字符数（按 rune 计）。
const DefaultMaxMessageLength = 2000

// trimSpace 去除首尾空白，额外包括 U+FEFF（unicode.IsSpace 不认为它是空白）。
func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// FieldError 是展示在输入框旁边的字段级错误。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors 是一次表单校验得到的全部字段错误。
type FieldErrors []*FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

// validator 对字符串的 min/max 按 rune 计数。
func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

var messages = map[string]map[string]string{
	"message": {
		"required": "Enter at least one word",
		"max":      "Message is too long (max %s characters)",
	},
	"email": {
		"required": "Email is required",
		"email":    "Invalid email",
	},
	"username": {
		"required": "Username is required",
		"min":      "Username must be at least 3 characters",
		"max":      "Username is too long",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	},
}

// translate 把 validator 的错误转换为字段错误；field 非空时覆盖字段名（用于 Var 校验）。
func translate(err error, field string) FieldErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "form", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = strings.ToLower(fe.Field())
		}
		msg, ok := messages[name][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		if strings.Contains(msg, "%s") {
			msg = fmt.Sprintf(msg, fe.Param())
		}
		out = append(out, &FieldError{Field: name, Message: msg})
	}
	return out
}
