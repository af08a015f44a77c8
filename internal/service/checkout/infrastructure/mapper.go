// internal/service/checkout/infrastructure/mapper.go
package infrastructure

import "codgate/internal/service/checkout/domain"

// ToTrackingModel 把领域追踪记录转换为数据库模型。
func ToTrackingModel(record *domain.OrderTrackingRecord) *OrderTrackingModel {
	return &OrderTrackingModel{
		Shop:       record.Shop,
		OrderID:    record.OrderID,
		IP:         record.IP,
		Email:      record.Email,
		Phone:      record.Phone,
		PostalCode: record.PostalCode,
		Quantity:   record.Quantity,
		TotalPrice: record.TotalPrice,
		Currency:   record.Currency,
		CreatedAt:  record.CreatedAt,
	}
}
