// internal/service/checkout/domain/errors.go
package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthenticated 表示代理签名校验失败，请求不被继续处理。
	ErrUnauthenticated = errors.New("proxy signature verification failed")

	// ErrNotEligible 表示表单在当前上下文不可见或金额越界。
	// 服务边界对它返回空响应，不作为错误暴露给购物者。
	ErrNotEligible = errors.New("order form is not eligible for this request")

	// ErrSettingsNotFound 表示店铺从未安装/配置过本应用。
	ErrSettingsNotFound = errors.New("shop settings not found")
)

// BlockedError 表示某条拦截规则命中。
// Message 是店铺配置的统一拒绝文案，原样返回给客户端；
// Rule 只用于服务端日志与指标，绝不下发，避免规则被探测。
type BlockedError struct {
	Rule    string
	Message string
	Score   int // 风控评分，未评分时为 0
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("submission blocked by rule %q", e.Rule)
}

// ValidationError 是订单管理 API 返回的字段级校验错误。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// FinalizationError 表示草稿订单已创建但未能完成。
// 外部系统此时存在一个无本地记录的悬挂草稿，需要人工对账，
// 本流水线不做自动重试。
type FinalizationError struct {
	DraftID string
	Err     error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("draft order %s created but failed to complete: %v", e.DraftID, e.Err)
}

func (e *FinalizationError) Unwrap() error {
	return e.Err
}
