package review

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady 小组未全部完成，或平均分尚不可用
	ErrNotReady = errors.New("小组尚未全部完成互评，结果暂不发布")
	// ErrMarkIncomplete 教师小组分或等级缺失
	ErrMarkIncomplete = errors.New("教师评分不完整")
)

// ValidationError 提交内容校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
