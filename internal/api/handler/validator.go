package handler

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/review"
)

// RegisterValidators 向 gin 的校验器注册自定义 tag
//   - peerscore: 互评分数必须为 1..5 的整数
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("peerscore", validatePeerScore)
}

func validatePeerScore(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s := fl.Field().Int()
		return s >= review.MinScore && s <= review.MaxScore
	default:
		return false
	}
}
