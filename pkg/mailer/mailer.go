package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail/v2"
	"go.uber.org/zap"

	"github.com/Skyler-Tan/G17--Mini-IT-project/config"
)

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// NewMailer 根据配置创建邮件发送器；未配置 SMTP 时返回只记录日志的实现
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	if !cfg.Enabled() {
		logger.Info("未配置 SMTP，邮件通知仅记录日志")
		return &noopMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

// ── SMTP 实现 ──

type smtpMailer struct {
	cfg *config.MailConfig
}

func (m *smtpMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.Username, m.cfg.Password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.SMTPHost,
		InsecureSkipVerify: m.cfg.SkipTLSVerify,
	}
	d.Timeout = 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < d.Timeout {
			d.Timeout = remaining
		}
	}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// ── 空实现 ──

type noopMailer struct {
	logger *zap.Logger
}

func (m *noopMailer) Send(_ context.Context, to []string, subject, _ string) error {
	m.logger.Info("跳过邮件发送", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
