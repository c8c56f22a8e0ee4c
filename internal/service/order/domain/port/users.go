// internal/service/order/domain/port/users.go
package port

import "context"

// UserInfo 是用户服务返回的展示信息。
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserDirectory 用于查询订单展示所需的用户信息，查不到时降级为空。
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*UserInfo, error)
}
