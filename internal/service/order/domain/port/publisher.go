// internal/service/order/domain/port/publisher.go
package port

import "context"

// EventPublisher 在订单事务提交成功之后发布领域事件。
// 发布失败只记录，不影响已提交的订单。
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}
