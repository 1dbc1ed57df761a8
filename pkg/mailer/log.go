package mailer

import (
	"context"

	"go.uber.org/zap"

	"faculty-portal/config"
)

// logSender 仅把邮件写入日志（开发环境与未配置 SendGrid 时使用）
type logSender struct {
	from       string
	subjPrefix string
	logger     *zap.Logger
}

// NewLogSender 创建日志发送器
func NewLogSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	return &logSender{from: cfg.FromAddress, subjPrefix: cfg.SubjectPrefix, logger: logger}
}

func (s *logSender) Send(_ context.Context, msg *Message) error {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	s.logger.Info("邮件（未实际发送）",
		zap.String("from", s.from),
		zap.Strings("to", to),
		zap.String("subject", s.subjPrefix+msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
