// Package mailer 邮件发送：SendGrid 实现、日志实现，以及请求路径外的异步派发器。
package mailer

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"go.uber.org/zap"

	"faculty-portal/config"
)

// Message 一封邮件
type Message struct {
	To      []mail.Address
	Subject string
	Text    string
	HTML    string
}

// HasRecipients 是否有收件人
func (m *Message) HasRecipients() bool { return len(m.To) > 0 }

// Sender 同步发送邮件
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender 配置了 API Key 时使用 SendGrid，否则退化为日志发送器
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	if cfg.APIKey == "" {
		logger.Warn("未配置 mail.api_key，邮件仅写入日志")
		return NewLogSender(cfg, logger)
	}
	return NewSendgridSender(cfg)
}

// ── 异步派发 ──

const sendTimeout = 30 * time.Second

// Dispatcher 在请求路径之外发送邮件；失败只记录日志，不影响主流程
type Dispatcher struct {
	sender Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewDispatcher 创建派发器
func NewDispatcher(sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch 异步发送，立即返回
func (d *Dispatcher) Dispatch(msgs ...*Message) {
	for _, msg := range msgs {
		if msg == nil || !msg.HasRecipients() {
			continue
		}
		d.wg.Add(1)
		go func(msg *Message) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("发送邮件 panic", zap.Any("panic", r), zap.String("subject", msg.Subject))
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := d.sender.Send(ctx, msg); err != nil {
				d.logger.Error("发送邮件失败",
					zap.String("subject", msg.Subject),
					zap.Int("recipients", len(msg.To)),
					zap.Error(err),
				)
			}
		}(msg)
	}
}

// Wait 等待已派发的邮件发送完毕（优雅关闭时调用）
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
