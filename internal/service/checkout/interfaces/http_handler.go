// internal/service/checkout/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"codgate/internal/pkg/logger"
	"codgate/internal/service/checkout/application"
	"codgate/internal/service/checkout/domain"
)

const serviceName = "checkout-service"

// 集成模式: JSON API 或成功后跳转感谢页。
// 以显式参数建模，不再靠请求形态猜测。
const (
	integrationModeJSON     = "json"
	integrationModeRedirect = "redirect"
)

const defaultThankYouPath = "/pages/thank-you"

// CheckoutHandler 封装 checkout 服务的 HTTP 处理器。
type CheckoutHandler struct {
	service *application.CheckoutService
	secret  string
}

// NewCheckoutHandler 创建一个新的 HTTP 处理器实例。
func NewCheckoutHandler(service *application.CheckoutService, sharedSecret string) *CheckoutHandler {
	return &CheckoutHandler{service: service, secret: sharedSecret}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CheckoutHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/proxy/checkout-form", h.handleFormConfig)
	mux.HandleFunc("/proxy/orders", h.handleSubmitOrder)
}

type jsonResponse struct {
	Success      bool                      `json:"success"`
	OrderID      string                    `json:"orderId,omitempty"`
	OrderName    string                    `json:"orderName,omitempty"`
	PurchaseData *application.PurchaseData `json:"purchaseData,omitempty"`
	Error        string                    `json:"error,omitempty"`
	RiskScore    int                       `json:"riskScore,omitempty"`
}

// handleFormConfig 是读路径: 店面代理询问表单是否应该展示。
// 不合格一律回空 204，店面据此静默不渲染表单。
func (h *CheckoutHandler) handleFormConfig(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "api.FormConfig")
	defer span.End()

	query := r.URL.Query()
	if err := h.authenticate(query); err != nil {
		writeJSON(w, http.StatusUnauthorized, jsonResponse{Success: false, Error: "unauthorized"})
		return
	}

	cartTotal, _ := strconv.ParseFloat(query.Get("cart_total"), 64)
	config, err := h.service.CheckEligibility(ctx, query.Get("shop"), domain.PageContext{
		ProductID: query.Get("product_id"),
		Template:  query.Get("template"),
		Country:   query.Get("country_code"),
		CartTotal: cartTotal / 100,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotEligible) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("eligibility check failed")
		writeJSON(w, http.StatusInternalServerError, jsonResponse{Success: false, Error: "unexpected error"})
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// handleSubmitOrder 是写路径: 处理一次 COD 下单提交。
func (h *CheckoutHandler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "api.SubmitOrder")
	defer span.End()

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	if err := h.authenticate(query); err != nil {
		submissionsTotal.WithLabelValues(outcomeUnauthorized).Inc()
		writeJSON(w, http.StatusUnauthorized, jsonResponse{Success: false, Error: "unauthorized"})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, jsonResponse{Success: false, Error: "malformed form payload"})
		return
	}

	req, err := buildSubmitRequest(query, r.PostForm, clientIP(r))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, jsonResponse{Success: false, Error: "malformed form payload"})
		return
	}

	mode := r.PostForm.Get("integration_mode")
	if mode != integrationModeRedirect {
		mode = integrationModeJSON
	}

	resp, err := h.service.SubmitOrder(ctx, req)
	if err != nil {
		h.writeSubmitError(w, ctx, err)
		return
	}

	submissionsTotal.WithLabelValues(outcomeSuccess).Inc()
	ordersCreatedTotal.Inc()

	if mode == integrationModeRedirect {
		target := resp.RedirectURL
		if target == "" {
			target = defaultThankYouPath
		}
		if u, parseErr := url.Parse(target); parseErr == nil {
			q := u.Query()
			q.Set("order", resp.OrderName)
			u.RawQuery = q.Encode()
			target = u.String()
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		Success:      true,
		OrderID:      resp.OrderID,
		OrderName:    resp.OrderName,
		PurchaseData: resp.Purchase,
	})
}

// authenticate 执行代理签名校验。
// preview=true 的店主预览请求跳过签名校验——这是一个被刻意保留的架构特例，
// 但仍然强制要求 shop 参数存在。
func (h *CheckoutHandler) authenticate(query url.Values) error {
	if query.Get("shop") == "" {
		return domain.ErrUnauthenticated
	}
	if query.Get("preview") == "true" {
		return nil
	}
	return VerifyProxySignature(query, h.secret)
}

// writeSubmitError 把错误分类映射到响应契约。
// 命中的拦截规则绝不出现在任何客户端可见字段里。
func (h *CheckoutHandler) writeSubmitError(w http.ResponseWriter, ctx context.Context, err error) {
	var blocked *domain.BlockedError
	var validation *domain.ValidationError
	var finalization *domain.FinalizationError

	switch {
	case errors.Is(err, domain.ErrNotEligible):
		// 不合格的提交与读路径同样静默
		submissionsTotal.WithLabelValues(outcomeIneligible).Inc()
		w.WriteHeader(http.StatusNoContent)

	case errors.As(err, &blocked):
		submissionsTotal.WithLabelValues(outcomeBlocked).Inc()
		blockedTotal.WithLabelValues(blocked.Rule).Inc()
		writeJSON(w, http.StatusForbidden, jsonResponse{
			Success:   false,
			Error:     blocked.Message,
			RiskScore: blocked.Score,
		})

	case errors.As(err, &validation):
		submissionsTotal.WithLabelValues(outcomeValidation).Inc()
		writeJSON(w, http.StatusBadRequest, jsonResponse{Success: false, Error: validation.Message})

	case errors.As(err, &finalization):
		// 悬挂草稿: 给购物者一条区别于普通失败的文案，提示联系商家
		submissionsTotal.WithLabelValues(outcomeFinalization).Inc()
		writeJSON(w, http.StatusInternalServerError, jsonResponse{
			Success: false,
			Error:   "Your order was received but could not be finalized. Please contact the store to confirm it.",
		})

	default:
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		logger.Ctx(ctx).Error().Err(err).Msg("order submission failed")
		writeJSON(w, http.StatusInternalServerError, jsonResponse{Success: false, Error: "unexpected error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// clientIP 提取请求方 IP，优先信任代理注入的 X-Forwarded-For 首项。
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// buildSubmitRequest 从查询参数与表单字段构造应用层请求。
func buildSubmitRequest(query url.Values, form url.Values, ip string) (*application.SubmitOrderRequest, error) {
	req := &application.SubmitOrderRequest{
		Shop:        query.Get("shop"),
		IP:          ip,
		ProductID:   firstNonEmpty(form.Get("product_id"), query.Get("product_id")),
		Template:    firstNonEmpty(form.Get("template"), query.Get("template")),
		CountryCode: query.Get("country_code"),

		FirstName: form.Get("first_name"),
		LastName:  form.Get("last_name"),
		Email:     form.Get("email"),
		Phone:     form.Get("phone"),
		Address1:  form.Get("address1"),
		Address2:  form.Get("address2"),
		City:      form.Get("city"),
		Province:  form.Get("province"),
		Zip:       form.Get("zip"),
		Country:   form.Get("country"),

		Note:      form.Get("note"),
		SessionID: form.Get("session_id"),
	}

	if raw := form.Get("line_items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Items); err != nil {
			return nil, errors.Wrap(err, "decode line_items")
		}
	}
	if raw := form.Get("cart"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Cart); err != nil {
			return nil, errors.Wrap(err, "decode cart")
		}
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
