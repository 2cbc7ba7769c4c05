package channel

import "context"

// Channel 通知投递通道，按师傅/客户偏好顺序依次尝试
type Channel interface {
	// Name 返回通道标识（telegram / sms / email）
	Name() string
	// Send 向目标地址投递一条文本消息，失败返回错误以触发降级
	Send(ctx context.Context, target, subject, body string) error
}
