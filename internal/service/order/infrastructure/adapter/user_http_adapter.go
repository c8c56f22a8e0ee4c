// internal/service/order/infrastructure/adapter/user_http_adapter.go
package adapter

import (
	"context"
	"fmt"
	"net/url"

	"merx/internal/pkg/httpclient"
	"merx/internal/service/order/domain/port"
)

// UserHTTPAdapter 通过用户服务的 HTTP 接口查询展示信息。
// 订单侧对它的使用是尽力而为的，失败只会让视图里少一块用户信息。
type UserHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewUserHTTPAdapter(client *httpclient.Client, baseURL string) *UserHTTPAdapter {
	return &UserHTTPAdapter{client: client, baseURL: baseURL}
}

var _ port.UserDirectory = (*UserHTTPAdapter)(nil)

func (a *UserHTTPAdapter) GetUser(ctx context.Context, userID string) (*port.UserInfo, error) {
	var body struct {
		Success bool          `json:"success"`
		Data    port.UserInfo `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/api/users/%s", a.baseURL, url.PathEscape(userID))
	if err := a.client.GetJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}
