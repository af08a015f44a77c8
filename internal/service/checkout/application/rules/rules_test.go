package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"codgate/internal/service/checkout/domain"
	"codgate/internal/service/checkout/domain/port"
)

type fakeRiskScorer struct {
	assessment *port.RiskAssessment
	err        error
	calls      int
}

func (f *fakeRiskScorer) Score(ctx context.Context, input *port.RiskInput) (*port.RiskAssessment, error) {
	f.calls++
	return f.assessment, f.err
}

type fakeTracking struct {
	records []*domain.OrderTrackingRecord
	err     error
}

func (f *fakeTracking) Create(ctx context.Context, record *domain.OrderTrackingRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeTracking) HasRecent(ctx context.Context, query domain.RecentOrderQuery) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.records {
		if r.Shop != query.Shop || r.CreatedAt.Before(query.Since) {
			continue
		}
		if (query.IP != "" && r.IP == query.IP) ||
			(query.Email != "" && r.Email == query.Email) ||
			(query.Phone != "" && r.Phone == query.Phone) {
			return true, nil
		}
	}
	return false, nil
}

func newSubmission() *domain.OrderSubmission {
	return &domain.OrderSubmission{
		Shop:  "demo.myshopify.com",
		IP:    "203.0.113.7",
		Email: "Buyer@Example.com",
		Phone: "+971 50 123 4567",
		Address: domain.Address{
			City:    "Dubai",
			Country: "AE",
			Zip:     "12345",
		},
		Items: []domain.LineItem{{VariantID: "v1", Quantity: 2}},
		Cart:  domain.CartSnapshot{Currency: "AED", TotalPrice: 150000, ItemCount: 2},
	}
}

func newRuleContext(settings *domain.ShopSettings, sub *domain.OrderSubmission) *RuleContext {
	return &RuleContext{
		Ctx:        context.Background(),
		Tracer:     otel.Tracer("test"),
		Settings:   settings,
		Submission: sub,
	}
}

func TestAllowlistBypassesEverything(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	// 同一 IP 同时出现在放行与封禁名单: 放行名单必须赢，且跳过全部后续规则
	settings.Rules.AllowedIPs = "203.0.113.7"
	settings.Rules.BlockedIPs = "203.0.113.7"
	settings.Rules.BlockedEmails = "buyer@example.com"
	settings.Rules.MaxQuantity = 1

	err := BuildChain().Handle(newRuleContext(settings, newSubmission()))
	assert.NoError(t, err)
}

func TestIPBlocklist(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.BlockedIPs = "198.51.100.1\n203.0.113.7\n"

	err := BuildChain().Handle(newRuleContext(settings, newSubmission()))

	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "ip_blocklist", blocked.Rule)
	assert.Equal(t, settings.Rules.RejectMessage, blocked.Message)
}

func TestEmailBlocklistCaseInsensitive(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.BlockedEmails = " BUYER@example.COM \n"

	err := BuildChain().Handle(newRuleContext(settings, newSubmission()))

	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "email_blocklist", blocked.Rule)
}

func TestPhoneBlocklistDigitsOnly(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.BlockedPhones = "0501112222\n971501234567"

	err := BuildChain().Handle(newRuleContext(settings, newSubmission()))

	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "phone_blocklist", blocked.Rule)
}

func TestQuantityCap(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.MaxQuantity = 3

	sub := newSubmission()
	sub.Items = []domain.LineItem{{VariantID: "v1", Quantity: 2}, {VariantID: "v2", Quantity: 2}}

	err := BuildChain().Handle(newRuleContext(settings, sub))

	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "quantity_cap", blocked.Rule)

	sub.Items = []domain.LineItem{{VariantID: "v1", Quantity: 3}}
	assert.NoError(t, BuildChain().Handle(newRuleContext(settings, sub)))
}

func TestPostalCodeModes(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.PostalCodes = "12345\n67890"

	// exclude 模式: 名单内拒绝
	settings.Rules.PostalMode = domain.PostalModeExclude
	err := BuildChain().Handle(newRuleContext(settings, newSubmission()))
	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "postal_code", blocked.Rule)

	// allow 模式: 名单内通过
	settings.Rules.PostalMode = domain.PostalModeAllow
	assert.NoError(t, BuildChain().Handle(newRuleContext(settings, newSubmission())))

	// allow 模式: 名单外拒绝
	sub := newSubmission()
	sub.Address.Zip = "99999"
	err = BuildChain().Handle(newRuleContext(settings, sub))
	require.ErrorAs(t, err, &blocked)

	// none 模式: 不检查
	settings.Rules.PostalMode = domain.PostalModeNone
	assert.NoError(t, BuildChain().Handle(newRuleContext(settings, sub)))
}

func TestRepeatOrderWindow(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.RepeatWindowHours = 24

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracking := &fakeTracking{records: []*domain.OrderTrackingRecord{{
		Shop:      "demo.myshopify.com",
		Email:     "buyer@example.com",
		CreatedAt: base,
	}}}

	// 窗口内同邮箱 => 拒绝
	ruleCtx := newRuleContext(settings, newSubmission())
	ruleCtx.Tracking = tracking
	ruleCtx.Now = func() time.Time { return base.Add(2 * time.Hour) }

	err := BuildChain().Handle(ruleCtx)
	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "repeat_order", blocked.Rule)

	// 时钟拨过窗口 => 放行
	ruleCtx = newRuleContext(settings, newSubmission())
	ruleCtx.Tracking = tracking
	ruleCtx.Now = func() time.Time { return base.Add(25 * time.Hour) }
	assert.NoError(t, BuildChain().Handle(ruleCtx))
}

func TestRepeatOrderLookupFailureIsOpen(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.RepeatWindowHours = 24

	ruleCtx := newRuleContext(settings, newSubmission())
	ruleCtx.Tracking = &fakeTracking{err: assert.AnError}

	assert.NoError(t, BuildChain().Handle(ruleCtx))
}

func TestRiskAutoRejectPrecedesDeterministicRules(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.RiskScoringEnabled = true
	settings.Rules.RiskAutoReject = true
	// 邮箱同时在封禁名单里，但风控拒绝必须先发生
	settings.Rules.BlockedEmails = "buyer@example.com"

	ruleCtx := newRuleContext(settings, newSubmission())
	ruleCtx.RiskScorer = &fakeRiskScorer{assessment: &port.RiskAssessment{
		Score:          91,
		Recommendation: port.RecommendationReject,
	}}

	err := BuildChain().Handle(ruleCtx)
	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "risk_score", blocked.Rule)
	assert.Equal(t, 91, blocked.Score)
}

func TestRiskReviewDoesNotReject(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.RiskScoringEnabled = true
	settings.Rules.RiskAutoReject = true

	ruleCtx := newRuleContext(settings, newSubmission())
	ruleCtx.RiskScorer = &fakeRiskScorer{assessment: &port.RiskAssessment{
		Score:          55,
		Recommendation: port.RecommendationReview,
	}}

	assert.NoError(t, BuildChain().Handle(ruleCtx))
	assert.Equal(t, 55, ruleCtx.Score)
}

func TestRiskScorerUnavailableIsOpen(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.RiskScoringEnabled = true
	settings.Rules.RiskAutoReject = true

	ruleCtx := newRuleContext(settings, newSubmission())
	ruleCtx.RiskScorer = &fakeRiskScorer{err: assert.AnError}

	assert.NoError(t, BuildChain().Handle(ruleCtx))
}

func TestCustomExpr(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.CustomExpr = `quantity >= 2 && total >= 1000.0`

	err := BuildChain().Handle(newRuleContext(settings, newSubmission()))
	var blocked *domain.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "custom_expr", blocked.Rule)

	settings.Rules.CustomExpr = `email.endsWith("@tempmail.example")`
	assert.NoError(t, BuildChain().Handle(newRuleContext(settings, newSubmission())))
}

func TestCustomExprCompileErrorIsOpen(t *testing.T) {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.Rules.CustomExpr = `this is (not valid CEL`

	assert.NoError(t, BuildChain().Handle(newRuleContext(settings, newSubmission())))
}

func TestCustomExprCompilesOnce(t *testing.T) {
	expr := `quantity > 100`

	_, err := compileExpr(expr)
	require.NoError(t, err)

	cached, ok := programCache.Load(expr)
	require.True(t, ok)

	// 同一表达式文本复用同一个已编译程序
	_, err = compileExpr(expr)
	require.NoError(t, err)
	cachedAgain, _ := programCache.Load(expr)
	assert.Same(t, cached, cachedAgain)

	// 编译失败同样缓存，不会每次提交都重新报错编译
	_, errA := compileExpr(`not ( valid`)
	_, errB := compileExpr(`not ( valid`)
	require.Error(t, errA)
	assert.Equal(t, errA, errB)
}
