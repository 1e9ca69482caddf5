// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
//
// 标签名统一为 `rule`，并与 gin 的 binding 引擎共用同一个 validator 实例.
// 包初始化时注册了几个业务别名：
//
//	article_title 非空、去除首尾空白后仍非空、长度不超过 255（Wikipedia 标题上限）
//	calendar_day  1-31
package rule

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建并注册 tag name 函数.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName("rule")
	registerBuiltins(inst)
}

// registerBuiltins 注册业务相关的规则与别名.
func registerBuiltins(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})

	v.RegisterAlias("article_title", "required,notblank,max=255")
	v.RegisterAlias("calendar_day", "min=1,max=31")
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段的命名空间，值为可读错误信息.
type ValidationErrors map[string]string

// Errors 把 validator 返回的错误整理为 ValidationErrors；非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}

	out := make(ValidationErrors, len(ves))
	for _, fe := range ves {
		msg := "failed on '" + fe.Tag() + "'"
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}

		out[fe.Namespace()] = msg
	}

	return out
}

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("Cat", "article_title").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}
