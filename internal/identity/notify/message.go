// Package notify delivers verification codes and temporary credentials by
// mail. Delivery is asynchronous: callers enqueue and move on, failures
// surface on the Dispatcher's error channel and in the logs.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"
)

type Kind string

const (
	KindVerificationCode    Kind = "verification_code"
	KindTemporaryCredential Kind = "temporary_credential"
)

// Message is a rendered plain-text mail.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	Body    string
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]mailTemplate{
	KindVerificationCode: {
		subject: "Your verification code",
		body: template.Must(template.New(string(KindVerificationCode)).Parse(
			`Hello,

Your verification code is {{.Code}}.
It expires in {{.Window}}. If you did not request it, ignore this mail.
`)),
	},
	KindTemporaryCredential: {
		subject: "Your temporary password",
		body: template.Must(template.New(string(KindTemporaryCredential)).Parse(
			`Hello,

A temporary password was issued for your account: {{.Credential}}
Sign in with it and choose a new password straight away.
If you did not ask for this, change your password now.
`)),
	},
}

// humanWindow renders a code window for mail text, e.g. "10 minutes".
func humanWindow(d time.Duration) string {
	if d <= 0 {
		d = 10 * time.Minute
	}
	if m := int(d.Minutes()); m >= 1 {
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}

type templateData struct {
	Code       string
	Credential string
	Window     string
}

func render(kind Kind, to string, data templateData) (Message, error) {
	t, ok := templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown message kind %q", kind)
	}
	var buf bytes.Buffer
	if err := t.body.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", kind, err)
	}
	return Message{Kind: kind, To: to, Subject: t.subject, Body: buf.String()}, nil
}
