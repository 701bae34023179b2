package validation

import "strconv"

// ValidateMessage 去除首尾空白后校验聊天输入：不能为空，且不超过 2000 个字符。
// 成功时返回规范化后的文本。
func ValidateMessage(raw string) (string, *FieldError) {
	return ValidateMessageMax(raw, DefaultMaxMessageLength)
}

// ValidateMessageMax 与 ValidateMessage 相同，但上限可配置。
func ValidateMessageMax(raw string, max int) (string, *FieldError) {
	trimmed := trimSpace(raw)
	if err := validate.Var(trimmed, "required,max="+strconv.Itoa(max)); err != nil {
		return "", translate(err, "message")[0]
	}
	return trimmed, nil
}
