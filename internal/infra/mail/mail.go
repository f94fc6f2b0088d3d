// Package mail はメール送信。
package mail

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPで送る
type SMTPSender struct {
	addr string
	auth smtp.Auth
}

// userが空なら認証なし
func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	s := &SMTPSender{addr: fmt.Sprintf("%s:%d", host, port)}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return fmt.Errorf("mail has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, m.From, m.To, Render(m)); err != nil {
		return fmt.Errorf("send mail to %s: %w", strings.Join(m.To, ","), err)
	}
	return nil
}

// Render はヘッダ付きの本文（text/plain, UTF-8）を作る
func Render(m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// SMTP未設定のときはログに出すだけ
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(l *zap.Logger) *LogSender {
	return &LogSender{log: l.Named("mail")}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.log.Info("mail",
		zap.String("from", m.From),
		zap.Strings("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}
