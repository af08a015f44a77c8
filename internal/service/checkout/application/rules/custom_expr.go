// internal/service/checkout/application/rules/custom_expr.go
package rules

import (
	"sync"

	"github.com/google/cel-go/cel"

	"codgate/internal/pkg/logger"
)

const ruleCustomExpr = "custom_expr"

// exprEnv 是所有自定义表达式共用的 CEL 环境，声明提交上下文中可引用的变量。
var exprEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("ip", cel.StringType),
		cel.Variable("email", cel.StringType),
		cel.Variable("phone", cel.StringType),
		cel.Variable("postal_code", cel.StringType),
		cel.Variable("country", cel.StringType),
		cel.Variable("quantity", cel.IntType),
		cel.Variable("total", cel.DoubleType),
	)
})

// programCache 按表达式文本缓存编译结果（成功或失败），一编多评。
// 表达式随店铺配置经 TTL 缓存下发，文本不变则程序不变，无需显式失效。
var programCache sync.Map // string -> *compiledExpr

type compiledExpr struct {
	program cel.Program
	err     error
}

func compileExpr(expr string) (cel.Program, error) {
	if cached, ok := programCache.Load(expr); ok {
		entry := cached.(*compiledExpr)
		return entry.program, entry.err
	}

	entry := &compiledExpr{}
	env, err := exprEnv()
	if err != nil {
		entry.err = err
	} else {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			entry.err = issues.Err()
		} else {
			entry.program, entry.err = env.Program(ast)
		}
	}
	programCache.Store(expr, entry)
	return entry.program, entry.err
}

// CustomExprHandler 评估管理员自定义的 CEL 拦截表达式，
// 例如: email.endsWith("@tempmail.example") || quantity > 5 && total < 10.0
// 表达式为 true 时拒绝。表达式本身有错误时跳过本规则（记日志放行），
// 一条写坏的规则不能让整个店面无法下单。
type CustomExprHandler struct {
	NextHandler
}

func (h *CustomExprHandler) Handle(ruleCtx *RuleContext) error {
	expr := ruleCtx.Settings.Rules.CustomExpr
	if expr == "" {
		return h.executeNext(ruleCtx)
	}

	ctx, span := ruleCtx.Tracer.Start(ruleCtx.Ctx, "rules.CustomExpr")
	defer span.End()

	program, err := compileExpr(expr)
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).
			Str("shop", ruleCtx.Submission.Shop).
			Msg("custom blocking expression failed to compile, rule skipped")
		return h.executeNext(ruleCtx)
	}

	sub := ruleCtx.Submission
	out, _, err := program.Eval(map[string]interface{}{
		"ip":          sub.NormalizedIP(),
		"email":       sub.NormalizedEmail(),
		"phone":       sub.NormalizedPhone(),
		"postal_code": sub.NormalizedPostal(),
		"country":     sub.Address.Country,
		"quantity":    sub.TotalQuantity(),
		"total":       sub.TotalMajor(),
	})
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).
			Str("shop", sub.Shop).
			Msg("custom blocking expression evaluation failed, rule skipped")
		return h.executeNext(ruleCtx)
	}

	if matched, ok := out.Value().(bool); ok && matched {
		return ruleCtx.reject(ruleCustomExpr)
	}

	return h.executeNext(ruleCtx)
}
