package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"codgate/internal/service/checkout/application"
	"codgate/internal/service/checkout/domain"
	"codgate/internal/service/checkout/domain/port"
)

const testSecret = "proxy-secret"

type stubSettingsRepo struct {
	settings *domain.ShopSettings
}

func (s *stubSettingsRepo) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	if s.settings == nil {
		return nil, domain.ErrSettingsNotFound
	}
	return s.settings, nil
}

type stubTrackingRepo struct{}

func (s *stubTrackingRepo) Create(ctx context.Context, record *domain.OrderTrackingRecord) error {
	return nil
}

func (s *stubTrackingRepo) HasRecent(ctx context.Context, query domain.RecentOrderQuery) (bool, error) {
	return false, nil
}

type stubSessionRepo struct{}

func (s *stubSessionRepo) MarkRecovered(ctx context.Context, shop, sessionID, orderID string) error {
	return nil
}

type stubOrderAPI struct{}

func (s *stubOrderAPI) CreateDraftOrder(ctx context.Context, shop string, input *port.DraftOrderInput) (string, []port.UserError, error) {
	return "draft-1", nil, nil
}

func (s *stubOrderAPI) CompleteDraftOrder(ctx context.Context, shop, draftID string) (*port.CompletedOrder, error) {
	return &port.CompletedOrder{OrderID: "order-2001", OrderName: "#2001"}, nil
}

func testSettings() *domain.ShopSettings {
	settings := domain.DefaultSettings("demo.myshopify.com")
	settings.MinAmount = 1000
	settings.MaxAmount = 5000
	return settings
}

func newTestServer(t *testing.T, settings *domain.ShopSettings) *httptest.Server {
	t.Helper()
	service := application.NewCheckoutService(
		&stubSettingsRepo{settings: settings},
		&stubTrackingRepo{},
		&stubSessionRepo{},
		&stubOrderAPI{},
		nil,
		nil,
		otel.Tracer("test"),
	)
	mux := http.NewServeMux()
	NewCheckoutHandler(service, testSecret).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// signedQuery 按代理的签名规则给查询参数补上 signature。
func signedQuery(params url.Values) string {
	params.Set("signature", ComputeProxySignature(params, testSecret))
	return params.Encode()
}

func orderForm() url.Values {
	return url.Values{
		"first_name": {"Amal"},
		"last_name":  {"Hassan"},
		"email":      {"buyer@example.com"},
		"phone":      {"+971501234567"},
		"address1":   {"12 Marina Walk"},
		"city":       {"Dubai"},
		"zip":        {"12345"},
		"country":    {"AE"},
		"template":   {"product"},
		"product_id": {"884422"},
		"line_items": {`[{"variantId":"v1","quantity":2}]`},
		"cart":       {`{"currency":"AED","total_price":150000,"item_count":2}`},
		"session_id": {"sess-42"},
	}
}

func postOrder(t *testing.T, server *httptest.Server, query string, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.Post(
		server.URL+"/proxy/orders?"+query,
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubmitOrder_EndToEndJSON(t *testing.T) {
	server := newTestServer(t, testSettings())

	query := signedQuery(url.Values{
		"shop":         {"demo.myshopify.com"},
		"country_code": {"AE"},
	})
	resp := postOrder(t, server, query, orderForm())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success      bool                      `json:"success"`
		OrderID      string                    `json:"orderId"`
		OrderName    string                    `json:"orderName"`
		PurchaseData *application.PurchaseData `json:"purchaseData"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "order-2001", body.OrderID)
	assert.Equal(t, "#2001", body.OrderName)
	require.NotNil(t, body.PurchaseData)
	assert.InDelta(t, 1500.00, body.PurchaseData.Value, 0.001)
}

func TestSubmitOrder_RedirectMode(t *testing.T) {
	settings := testSettings()
	settings.RedirectURL = "https://demo.myshopify.com/pages/merci"
	server := newTestServer(t, settings)

	form := orderForm()
	form.Set("integration_mode", "redirect")
	query := signedQuery(url.Values{
		"shop":         {"demo.myshopify.com"},
		"country_code": {"AE"},
	})

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	req, err := http.NewRequest(http.MethodPost, server.URL+"/proxy/orders?"+query, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/pages/merci", location.Path)
	assert.Equal(t, "#2001", location.Query().Get("order"))
}

func TestSubmitOrder_InvalidSignature(t *testing.T) {
	server := newTestServer(t, testSettings())

	query := url.Values{
		"shop":      {"demo.myshopify.com"},
		"signature": {"deadbeef"},
	}
	resp := postOrder(t, server, query.Encode(), orderForm())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitOrder_BlockedHidesRuleName(t *testing.T) {
	settings := testSettings()
	settings.Rules.BlockedEmails = "buyer@example.com"
	server := newTestServer(t, settings)

	query := signedQuery(url.Values{
		"shop":         {"demo.myshopify.com"},
		"country_code": {"AE"},
	})
	resp := postOrder(t, server, query, orderForm())
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body jsonResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	// 响应里只有店铺配置的统一文案，不泄露命中的规则
	assert.Equal(t, settings.Rules.RejectMessage, body.Error)
	assert.NotContains(t, body.Error, "email")
}

func TestSubmitOrder_IneligibleIsSilent(t *testing.T) {
	settings := testSettings()
	settings.Mode = domain.VisibilityDisabled
	server := newTestServer(t, settings)

	query := signedQuery(url.Values{
		"shop":         {"demo.myshopify.com"},
		"country_code": {"AE"},
	})
	resp := postOrder(t, server, query, orderForm())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestFormConfig_Eligible(t *testing.T) {
	settings := testSettings()
	settings.HideBuyNow = true
	server := newTestServer(t, settings)

	query := signedQuery(url.Values{
		"shop":         {"demo.myshopify.com"},
		"template":     {"product"},
		"product_id":   {"884422"},
		"country_code": {"AE"},
		"cart_total":   {"150000"},
	})
	resp, err := http.Get(server.URL + "/proxy/checkout-form?" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var config application.FormConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&config))
	assert.True(t, config.HideBuyNow)
	assert.False(t, config.HideAddToCart)
}

func TestFormConfig_UnknownShopIsSilent(t *testing.T) {
	server := newTestServer(t, nil)

	query := signedQuery(url.Values{
		"shop":     {"ghost.myshopify.com"},
		"template": {"product"},
	})
	resp, err := http.Get(server.URL + "/proxy/checkout-form?" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestFormConfig_PreviewBypassesSignature(t *testing.T) {
	server := newTestServer(t, testSettings())

	// 预览模式不带签名，但 shop 参数仍然必填
	query := url.Values{
		"shop":       {"demo.myshopify.com"},
		"preview":    {"true"},
		"template":   {"product"},
		"cart_total": {"150000"},
	}
	resp, err := http.Get(server.URL + "/proxy/checkout-form?" + query.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(server.URL + "/proxy/checkout-form?preview=true")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestSubmitOrder_GetNotAllowed(t *testing.T) {
	server := newTestServer(t, testSettings())

	query := signedQuery(url.Values{"shop": {"demo.myshopify.com"}})
	resp, err := http.Get(server.URL + "/proxy/orders?" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
