package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers a message to a customer or user. Callers treat a failure
// as non-fatal.
type Notifier interface {
	Send(ctx context.Context, m Message) error
}

type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

// Log only writes the message to the log; used when SMTP is not configured.
type Log struct{ Logger logrus.FieldLogger }

func (l Log) Send(_ context.Context, m Message) error {
	l.Logger.WithFields(logrus.Fields{
		"to":      m.To,
		"subject": m.Subject,
	}).Info(m.Body)
	return nil
}

var vnd = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount with Vietnamese digit grouping, e.g. "180.000 VND".
func FormatVND(amount int64) string {
	return vnd.Sprintf("%d VND", amount)
}
