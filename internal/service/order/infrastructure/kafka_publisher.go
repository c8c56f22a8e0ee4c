// internal/service/order/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"merx/internal/pkg/mq"
	catalogdomain "merx/internal/service/catalog/domain"
	"merx/internal/service/order/domain"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// KafkaEventPublisher 把领域事件投递到 Kafka。
// 以聚合ID做消息 Key，同一订单/商品的事件落在同一分区，消费侧天然有序。
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

// eventEnvelope 给消费者一个稳定的事件外壳，payload 按 type 解码。
type eventEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, key string, event interface{}) error {
	envelope := eventEnvelope{Payload: event}
	switch event.(type) {
	case domain.OrderCommitted:
		envelope.Type = "order.committed"
	case domain.StockChanged:
		envelope.Type = "stock.changed"
	case catalogdomain.LowStockAlert:
		envelope.Type = "stock.low"
	default:
		return errors.Errorf("unknown event type %T", event)
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(key), value)
}

// PublishLowStock 实现库存审计的告警出口。
func (p *KafkaEventPublisher) PublishLowStock(ctx context.Context, alert catalogdomain.LowStockAlert) error {
	return p.Publish(ctx, alert.ProductID, alert)
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
