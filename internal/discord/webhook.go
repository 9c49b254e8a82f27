package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const sendTimeout = 10 * time.Second

// ErrNoWebhookURL 表示未配置 Webhook 地址。每次投递都会失败，
// 但不影响轮询继续运行。
var ErrNoWebhookURL = errors.New("未配置 Discord Webhook 地址")

// Client Discord Webhook 投递客户端。
type Client struct {
	webhookURL string
	client     *http.Client
}

// NewClient 创建投递客户端。webhookURL 允许为空（投递时报错）。
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: sendTimeout},
	}
}

// Send 把消息 POST 到 Webhook。只有 HTTP 204 视为成功，
// 其他状态码或网络错误都是失败，由调用方在下个周期重试。
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if c.webhookURL == "" {
		return ErrNoWebhookURL
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("投递失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("投递被拒绝: HTTP %d - %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
