// internal/service/checkout/infrastructure/adapter/orders_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"codgate/internal/pkg/httpclient"
	"codgate/internal/service/checkout/domain"
	"codgate/internal/service/checkout/domain/port"
)

// OrderHTTPAdapter 是 port.OrderAPI 的 HTTP 实现，
// 对接外部订单管理 API 的草稿订单两步流程。
type OrderHTTPAdapter struct {
	client      *httpclient.Client
	endpoint    string
	accessToken string
	timeout     time.Duration
}

// NewOrderHTTPAdapter 创建订单管理 API 适配器。
func NewOrderHTTPAdapter(client *httpclient.Client, endpoint, accessToken string, timeout time.Duration) *OrderHTTPAdapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderHTTPAdapter{
		client:      client,
		endpoint:    endpoint,
		accessToken: accessToken,
		timeout:     timeout,
	}
}

type draftOrderPayload struct {
	DraftOrder struct {
		Email           string           `json:"email,omitempty"`
		Note            string           `json:"note,omitempty"`
		Tags            []string         `json:"tags,omitempty"`
		ShippingAddress domain.Address   `json:"shippingAddress"`
		LineItems       []draftOrderLine `json:"lineItems"`
	} `json:"draftOrder"`
}

type draftOrderLine struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type draftOrderResponse struct {
	DraftOrder struct {
		ID string `json:"id"`
	} `json:"draftOrder"`
	UserErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"userErrors"`
}

type completeDraftResponse struct {
	Order struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"order"`
	UserErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"userErrors"`
}

// CreateDraftOrder 调用外部 API 创建草稿订单。
// 422 携带的字段级错误作为业务错误返回，与传输层错误严格区分。
func (a *OrderHTTPAdapter) CreateDraftOrder(ctx context.Context, shop string, input *port.DraftOrderInput) (string, []port.UserError, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	payload := draftOrderPayload{}
	payload.DraftOrder.Email = input.Email
	payload.DraftOrder.Note = input.Note
	payload.DraftOrder.Tags = input.Tags
	payload.DraftOrder.ShippingAddress = input.ShippingAddress
	for _, item := range input.LineItems {
		payload.DraftOrder.LineItems = append(payload.DraftOrder.LineItems, draftOrderLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	status, body, err := a.client.DoJSON(ctx, http.MethodPost, a.url("/draft_orders"), a.headers(shop), payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "order api transport failure")
	}

	var resp draftOrderResponse
	switch {
	case status == http.StatusUnprocessableEntity:
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", nil, errors.Wrapf(err, "order api returned %d with unreadable body", status)
		}
		return "", toUserErrors(resp.UserErrors), nil
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", nil, errors.Wrap(err, "decode draft order response")
		}
		if len(resp.UserErrors) > 0 {
			return "", toUserErrors(resp.UserErrors), nil
		}
		if resp.DraftOrder.ID == "" {
			return "", nil, errors.New("order api returned empty draft order id")
		}
		return resp.DraftOrder.ID, nil, nil
	default:
		return "", nil, errors.Errorf("order api returned unexpected status %d", status)
	}
}

// CompleteDraftOrder 把草稿订单完成为正式订单。
func (a *OrderHTTPAdapter) CompleteDraftOrder(ctx context.Context, shop, draftID string) (*port.CompletedOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	path := fmt.Sprintf("/draft_orders/%s/complete", draftID)
	status, body, err := a.client.DoJSON(ctx, http.MethodPost, a.url(path), a.headers(shop), nil)
	if err != nil {
		return nil, errors.Wrap(err, "order api transport failure")
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, errors.Errorf("order api returned unexpected status %d", status)
	}

	var resp completeDraftResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode complete draft response")
	}
	if len(resp.UserErrors) > 0 {
		return nil, errors.Errorf("complete draft rejected: %s", resp.UserErrors[0].Message)
	}
	if resp.Order.ID == "" {
		return nil, errors.New("order api returned empty order id on completion")
	}

	return &port.CompletedOrder{OrderID: resp.Order.ID, OrderName: resp.Order.Name}, nil
}

func (a *OrderHTTPAdapter) url(path string) string {
	return a.endpoint + path
}

func (a *OrderHTTPAdapter) headers(shop string) map[string]string {
	return map[string]string{
		"X-Access-Token": a.accessToken,
		"X-Shop-Domain":  shop,
	}
}

func toUserErrors(raw []struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}) []port.UserError {
	out := make([]port.UserError, 0, len(raw))
	for _, e := range raw {
		out = append(out, port.UserError{Field: e.Field, Message: e.Message})
	}
	return out
}
