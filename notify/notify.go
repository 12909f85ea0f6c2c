package notify

import (
	"context"
	"log"
)

// Message is a composed notification, ready for delivery. Rendering richer
// bodies (HTML templates) is a downstream concern.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers one message to one recipient. Failures are expected to be
// treated as non-fatal by callers.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is the local/dev fallback: it only logs what would be sent.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("notify: [%s] %s", to, subject)
	return nil
}
