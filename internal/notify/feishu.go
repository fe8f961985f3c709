// Package notify 通过飞书群自定义机器人推送运营通知。
// webhook 地址未配置时通知静默跳过，业务流程不受影响。
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FeishuWebhook 飞书群机器人通知器
type FeishuWebhook struct {
	webhookURL string
	http       *resty.Client
	logger     *zap.Logger
}

// NewFeishuWebhook 创建通知器。webhookURL 为空时返回禁用态实例。
func NewFeishuWebhook(webhookURL string, logger *zap.Logger) *FeishuWebhook {
	return &FeishuWebhook{
		webhookURL: webhookURL,
		http: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
		logger: logger,
	}
}

// Enabled 是否已配置 webhook 地址
func (n *FeishuWebhook) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// CardText 卡片文本节点
type CardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// CardField 卡片字段（双列布局）
type CardField struct {
	IsShort bool     `json:"is_short"`
	Text    CardText `json:"text"`
}

// CardElement 卡片内容元素
type CardElement struct {
	Tag      string        `json:"tag"`
	Content  string        `json:"content,omitempty"`
	Fields   []CardField   `json:"fields,omitempty"`
	Elements []CardElement `json:"elements,omitempty"`
}

// CardHeader 卡片标题区
type CardHeader struct {
	Title    CardText `json:"title"`
	Template string   `json:"template,omitempty"`
}

// Card 交互式消息卡片
type Card struct {
	Header   *CardHeader   `json:"header,omitempty"`
	Elements []CardElement `json:"elements"`
}

// SendCard 向群机器人发送消息卡片。
// 未配置时直接返回 nil；发送失败只记日志不向上传播，
// 通知永远不阻塞业务操作。
func (n *FeishuWebhook) SendCard(ctx context.Context, card Card) error {
	if !n.Enabled() {
		return nil
	}

	body := map[string]interface{}{
		"msg_type": "interactive",
		"card":     card,
	}

	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	resp, err := n.http.R().SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(n.webhookURL)
	if err != nil {
		n.logger.Warn("feishu notify failed", zap.Error(err))
		return nil
	}
	if resp.IsError() || result.Code != 0 {
		n.logger.Warn("feishu notify rejected",
			zap.Int("status", resp.StatusCode()),
			zap.Int("code", result.Code),
			zap.String("msg", result.Msg))
	}
	return nil
}

// NewMaintenanceRequestCard 报修受理通知卡片
func NewMaintenanceRequestCard(unitNumber, title, priority string) Card {
	return Card{
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: "🔧 新报修工单"},
			Template: "orange",
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**单元**\n%s", unitNumber)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**优先级**\n%s", priority)}},
					{IsShort: false, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**事项**\n%s", title)}},
				},
			},
			{Tag: "hr"},
			{
				Tag: "note",
				Elements: []CardElement{
					{Tag: "plain_text", Content: "请及时安排处理"},
				},
			},
		},
	}
}

// NewBillingRunCard 出账完成通知卡片
func NewBillingRunCard(period string, generated, skipped, failed int) Card {
	template := "blue"
	if failed > 0 {
		template = "red"
	}
	return Card{
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: "💰 账期出账完成"},
			Template: template,
		},
		Elements: []CardElement{
			{
				Tag: "div",
				Fields: []CardField{
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**账期**\n%s", period)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**新出账单**\n%d", generated)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**已跳过**\n%d", skipped)}},
					{IsShort: true, Text: CardText{Tag: "lark_md", Content: fmt.Sprintf("**失败**\n%d", failed)}},
				},
			},
		},
	}
}
