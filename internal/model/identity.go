package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Identity 是当前会话中已登录用户的信息。
type Identity struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Initial 返回头像中显示的首字母，用户名为空时返回 "?"。
func (i Identity) Initial() string {
	r, _ := utf8.DecodeRuneInString(i.Username)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Account 是内存账户目录中的一条注册记录。
type Account struct {
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NormalizeEmail 统一邮箱的大小写与空白，作为账户目录的键。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
