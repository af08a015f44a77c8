// internal/service/checkout/domain/port/risk.go
package port

import "context"

// Recommendation 是风控服务给出的处理建议。
type Recommendation string

const (
	RecommendationAllow  Recommendation = "allow"
	RecommendationReview Recommendation = "review"
	RecommendationReject Recommendation = "reject"
)

// RiskInput 是送入风控评分的请求方/订单特征。
type RiskInput struct {
	IP        string  `json:"ip"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Zip       string  `json:"zip"`
	Value     float64 `json:"value"`
	ItemCount int     `json:"itemCount"`
}

// RiskAssessment 是风控服务的评分结果。
type RiskAssessment struct {
	Score          int            `json:"score"` // 0–100
	Recommendation Recommendation `json:"recommendation"`
	Factors        []string       `json:"factors,omitempty"`
}

// RiskScorer 是外部风控服务的出站端口。
type RiskScorer interface {
	Score(ctx context.Context, input *RiskInput) (*RiskAssessment, error)
}
