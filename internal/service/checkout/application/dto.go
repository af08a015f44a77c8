// internal/service/checkout/application/dto.go
package application

import "codgate/internal/service/checkout/domain"

// SubmitOrderRequest 是下单用例的输入数据，由接口层从表单字段构造。
type SubmitOrderRequest struct {
	Shop      string
	IP        string
	ProductID string
	Template  string

	// CountryCode 是代理解析出的请求方国家，用于可见性判断；
	// Country 是表单填写的收货国家。
	CountryCode string
	Country     string

	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address1  string
	Address2  string
	City      string
	Province  string
	Zip       string

	Items []domain.LineItem
	Cart  domain.CartSnapshot

	Note      string
	SessionID string
}

// ToSubmission 把请求 DTO 转换为领域提交对象。
func (r *SubmitOrderRequest) ToSubmission() *domain.OrderSubmission {
	return &domain.OrderSubmission{
		Shop:  r.Shop,
		IP:    r.IP,
		Email: r.Email,
		Phone: r.Phone,
		Address: domain.Address{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Address1:  r.Address1,
			Address2:  r.Address2,
			City:      r.City,
			Province:  r.Province,
			Zip:       r.Zip,
			Country:   r.Country,
			Phone:     r.Phone,
		},
		Items:     r.Items,
		Cart:      r.Cart,
		Note:      r.Note,
		SessionID: r.SessionID,
	}
}

// PurchaseData 是返回给客户端、用于触发采购事件上报的载荷。
// Value 为主币种单位。
type PurchaseData struct {
	Value    float64           `json:"value"`
	Currency string            `json:"currency"`
	Items    []domain.LineItem `json:"items"`
}

// SubmitOrderResponse 是下单用例的输出数据。
type SubmitOrderResponse struct {
	OrderID     string
	OrderName   string
	RedirectURL string
	Purchase    *PurchaseData
}

// FormConfig 是资格检查通过后下发给店面组件的表单配置。
type FormConfig struct {
	Shop          string `json:"shop"`
	HideAddToCart bool   `json:"hideAddToCart"`
	HideBuyNow    bool   `json:"hideBuyNow"`
}
