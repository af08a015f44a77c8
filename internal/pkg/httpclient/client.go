// internal/pkg/httpclient/client.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Client 是一个可追踪的、可注入的 HTTP 客户端。
// 超时完全由每次请求传入的 context 控制，不在客户端上设置全局 Timeout。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
}

// NewClient 创建一个新的客户端实例。
func NewClient(tracer trace.Tracer) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
	}
}

// DoJSON 以 JSON 编码 body 发送请求，返回状态码与响应体原始字节。
// 返回的 error 只代表传输层失败；非 2xx 状态由调用方自行判定，
// 因为部分外部 API 用 4xx 携带结构化的业务错误。
func (c *Client) DoJSON(ctx context.Context, method, rawURL string, headers map[string]string, body interface{}) (int, []byte, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, err
	}
	spanName := fmt.Sprintf("call-%s", strings.Split(parsedURL.Host, ":")[0])

	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), reqBody)
	if err != nil {
		span.RecordError(err)
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	span.SetAttributes(
		attribute.String("http.url", parsedURL.String()),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp.StatusCode, nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp.StatusCode, respBody, nil
}

// PostJSON 发送 POST 请求并将 2xx 响应解码到 out。
// 非 2xx 一律视为错误返回。
func (c *Client) PostJSON(ctx context.Context, rawURL string, headers map[string]string, body, out interface{}) error {
	status, respBody, err := c.DoJSON(ctx, http.MethodPost, rawURL, headers, body)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("service %s returned status %d", rawURL, status)
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
