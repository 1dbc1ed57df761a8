// Package validation 为 gin 默认校验器注册中文翻译与自定义规则。
package validation

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zhtrans "github.com/go-playground/validator/v10/translations/zh"
)

// Setup 注册翻译器，返回供错误翻译使用的 Translator
// 字段名使用 json tag，提示信息与请求体字段一致
func Setup() (ut.Translator, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, nil
	}
	return Register(v)
}

// Register 在指定校验器上注册中文翻译（测试中可传入独立实例）
func Register(v *validator.Validate) (ut.Translator, error) {
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ := uni.GetTranslator("zh")

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	if err := zhtrans.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}
	return trans, nil
}
