// internal/service/checkout/infrastructure/adapter/purchase_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"codgate/internal/service/checkout/domain"
)

// PurchaseKafkaAdapter 是 port.PurchaseEventProducer 的 Kafka 实现。
// 成交事件按店铺作为分区键，保证同店事件有序。
type PurchaseKafkaAdapter struct {
	writer *kafka.Writer
}

// NewPurchaseKafkaAdapter 创建成交事件生产者。
func NewPurchaseKafkaAdapter(brokers []string, topic string) *PurchaseKafkaAdapter {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &PurchaseKafkaAdapter{writer: writer}
}

// Publish 把成交事件写入事件流。
func (a *PurchaseKafkaAdapter) Publish(ctx context.Context, event *domain.PurchasePlaced) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return a.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Shop),
		Value: value,
	})
}

// Close 关闭底层 writer。
func (a *PurchaseKafkaAdapter) Close() error {
	return a.writer.Close()
}
