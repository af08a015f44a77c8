// internal/service/checkout/infrastructure/adapter/risk_http_adapter.go
package adapter

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"codgate/internal/pkg/httpclient"
	"codgate/internal/service/checkout/domain/port"
)

// RiskHTTPAdapter 是 port.RiskScorer 的 HTTP 实现。
type RiskHTTPAdapter struct {
	client   *httpclient.Client
	endpoint string
	timeout  time.Duration
}

// NewRiskHTTPAdapter 创建风控服务适配器。
func NewRiskHTTPAdapter(client *httpclient.Client, endpoint string, timeout time.Duration) *RiskHTTPAdapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RiskHTTPAdapter{client: client, endpoint: endpoint, timeout: timeout}
}

// Score 调用外部风控服务对提交打分。
func (a *RiskHTTPAdapter) Score(ctx context.Context, input *port.RiskInput) (*port.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var assessment port.RiskAssessment
	if err := a.client.PostJSON(ctx, a.endpoint+"/score", nil, input, &assessment); err != nil {
		return nil, errors.Wrap(err, "risk scorer call failed")
	}
	if assessment.Recommendation == "" {
		assessment.Recommendation = port.RecommendationAllow
	}
	return &assessment, nil
}
