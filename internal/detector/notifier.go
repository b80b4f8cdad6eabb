package detector

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

// WebhookNotifier 通过 HTTP Webhook 推送异常事件批次
// 推送是尽力而为的：超时和重试由 resty 处理，最终失败由调用方吞掉
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier 创建 Webhook 通知器
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

// Notify 推送一批异常事件
func (n *WebhookNotifier) Notify(events []models.AnomalyEvent) error {
	if n.url == "" {
		return nil
	}

	resp, err := n.httpClient.R().
		SetBody(map[string]interface{}{
			"source": "vitalwatch",
			"events": events,
		}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to post anomaly webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("anomaly webhook returned status %d", resp.StatusCode())
	}

	n.logger.Debug("Anomaly webhook delivered",
		zap.Int("event_count", len(events)),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}
