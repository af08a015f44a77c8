// internal/service/checkout/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"codgate/internal/pkg/logger"
	"codgate/internal/service/checkout/application/rules"
	"codgate/internal/service/checkout/domain"
	"codgate/internal/service/checkout/domain/port"
)

// CheckoutService 编排 COD 下单流水线:
// 配置读取 -> 可见性/金额校验 -> 拦截规则链 -> 两阶段订单创建 -> 追踪与挽回。
type CheckoutService struct {
	settingsRepo domain.SettingsRepository
	trackingRepo domain.TrackingRepository
	sessionRepo  domain.CartSessionRepository

	orderAPI       port.OrderAPI
	riskScorer     port.RiskScorer
	purchaseEvents port.PurchaseEventProducer // 可为 nil（事件流未配置时）

	tracer trace.Tracer
	now    func() time.Time
}

func NewCheckoutService(
	settingsRepo domain.SettingsRepository,
	trackingRepo domain.TrackingRepository,
	sessionRepo domain.CartSessionRepository,
	orderAPI port.OrderAPI,
	riskScorer port.RiskScorer,
	purchaseEvents port.PurchaseEventProducer,
	tracer trace.Tracer,
) *CheckoutService {
	return &CheckoutService{
		settingsRepo:   settingsRepo,
		trackingRepo:   trackingRepo,
		sessionRepo:    sessionRepo,
		orderAPI:       orderAPI,
		riskScorer:     riskScorer,
		purchaseEvents: purchaseEvents,
		tracer:         tracer,
		now:            time.Now,
	}
}

// WithClock 注入时钟，供重复下单窗口的测试模拟时间。
func (s *CheckoutService) WithClock(now func() time.Time) *CheckoutService {
	s.now = now
	return s
}

// CheckEligibility 是读路径: 决定表单是否允许在当前页面展示。
// 不可见或金额越界返回 ErrNotEligible，接口层对它回空响应。
func (s *CheckoutService) CheckEligibility(ctx context.Context, shop string, pc domain.PageContext) (*FormConfig, error) {
	ctx, span := s.tracer.Start(ctx, "app.CheckEligibility")
	defer span.End()
	span.SetAttributes(attribute.String("shop", shop), attribute.String("page.template", pc.Template))

	settings, err := s.settingsRepo.Get(ctx, shop)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, domain.ErrNotEligible
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, "load shop settings")
	}

	if !settings.IsVisible(pc) || !settings.AmountWithinBounds(pc.CartTotal) {
		span.AddEvent("form not eligible for this context")
		return nil, domain.ErrNotEligible
	}

	return &FormConfig{
		Shop:          shop,
		HideAddToCart: settings.HideAddToCart,
		HideBuyNow:    settings.HideBuyNow,
	}, nil
}

// SubmitOrder 是写路径: 完整执行一次下单提交。
func (s *CheckoutService) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.SubmitOrder")
	defer span.End()
	span.SetAttributes(attribute.String("shop", req.Shop))

	settings, err := s.settingsRepo.Get(ctx, req.Shop)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, domain.ErrNotEligible
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, "load shop settings")
	}

	submission := req.ToSubmission()

	// 1. 可见性与金额校验。提交路径与读路径口径一致:
	//    不合格的请求静默丢弃，不给出可探测的错误。
	pc := domain.PageContext{
		ProductID: req.ProductID,
		Template:  req.Template,
		Country:   req.CountryCode,
		CartTotal: submission.TotalMajor(),
	}
	if !settings.IsVisible(pc) || !settings.AmountWithinBounds(submission.TotalMajor()) {
		span.AddEvent("submission not eligible, dropped silently")
		return nil, domain.ErrNotEligible
	}

	// 2. 拦截规则链
	ruleCtx := &rules.RuleContext{
		Ctx:        ctx,
		Tracer:     s.tracer,
		Settings:   settings,
		Submission: submission,
		RiskScorer: s.riskScorer,
		Tracking:   s.trackingRepo,
		Now:        s.now,
	}
	if err := rules.BuildChain().Handle(ruleCtx); err != nil {
		var blocked *domain.BlockedError
		if errors.As(err, &blocked) {
			// 命中的具体规则只进日志，响应里只有统一文案
			logger.Ctx(ctx).Warn().
				Str("shop", req.Shop).
				Str("rule", blocked.Rule).
				Int("risk_score", blocked.Score).
				Msg("submission blocked")
			span.SetAttributes(attribute.String("blocked.rule", blocked.Rule))
		}
		span.RecordError(err)
		return nil, err
	}

	// 3. 两阶段订单创建
	resp, err := s.placeOrder(ctx, settings, submission)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order placement failed")
		return nil, err
	}

	span.AddEvent("order placed successfully")
	return resp, nil
}

// placeOrder 执行 create -> complete 的两阶段外部交互及成功后的本地副作用。
// 两步不是原子的: complete 失败后草稿订单悬挂在外部系统中，只能人工对账。
func (s *CheckoutService) placeOrder(ctx context.Context, settings *domain.ShopSettings, sub *domain.OrderSubmission) (*SubmitOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()

	// 阶段 1: 创建草稿订单。此处失败不产生任何本地状态。
	draftID, userErrs, err := s.orderAPI.CreateDraftOrder(ctx, sub.Shop, &port.DraftOrderInput{
		Email:           sub.Email,
		Note:            sub.Note,
		Tags:            []string{"COD", "cod-checkout"},
		ShippingAddress: sub.Address,
		LineItems:       sub.Items,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create draft order")
	}
	if len(userErrs) > 0 {
		first := userErrs[0]
		return nil, &domain.ValidationError{Field: first.Field, Message: first.Message}
	}
	span.AddEvent("draft order created", trace.WithAttributes(attribute.String("draft.id", draftID)))

	// 阶段 2: 完成草稿订单。失败即悬挂草稿，必须以最高级别告警。
	completed, err := s.orderAPI.CompleteDraftOrder(ctx, sub.Shop, draftID)
	if err != nil {
		finalization := &domain.FinalizationError{DraftID: draftID, Err: err}
		logger.Ctx(ctx).Error().Err(err).
			Str("shop", sub.Shop).
			Str("draft_id", draftID).
			Bool("critical", true).
			Msg("draft order created but completion failed, manual reconciliation required")
		span.RecordError(finalization, trace.WithAttributes(attribute.Bool("critical.error", true)))
		return nil, finalization
	}

	// 成功路径的本地副作用。以下任何失败都不回滚订单，只记录。
	record := domain.NewTrackingRecord(sub, completed.OrderID, s.now())
	if err := s.trackingRepo.Create(ctx, record); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("shop", sub.Shop).
			Str("order_id", completed.OrderID).
			Msg("failed to persist order tracking record")
		span.RecordError(err)
	}

	if sub.SessionID != "" {
		if err := s.sessionRepo.MarkRecovered(ctx, sub.Shop, sub.SessionID, completed.OrderID); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("shop", sub.Shop).
				Str("session_id", sub.SessionID).
				Msg("failed to mark abandoned cart session recovered")
			span.RecordError(err)
		}
	}

	purchase := &PurchaseData{
		Value:    sub.TotalMajor(),
		Currency: sub.Cart.Currency,
		Items:    sub.Items,
	}

	if s.purchaseEvents != nil {
		event := &domain.PurchasePlaced{
			EventID:   domain.NewEventID(),
			Shop:      sub.Shop,
			OrderID:   completed.OrderID,
			OrderName: completed.OrderName,
			Value:     purchase.Value,
			Currency:  purchase.Currency,
			Items:     sub.Items,
			PlacedAt:  s.now(),
		}
		if err := s.purchaseEvents.Publish(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("order_id", completed.OrderID).
				Msg("failed to publish purchase event")
		}
	}

	return &SubmitOrderResponse{
		OrderID:     completed.OrderID,
		OrderName:   completed.OrderName,
		RedirectURL: settings.RedirectURL,
		Purchase:    purchase,
	}, nil
}
