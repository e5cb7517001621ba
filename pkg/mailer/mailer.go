package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/salvaalejos/ceitm-web/pkg/config"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To       string
	Subject  string
	Template string
	Context  map[string]interface{}
}

// Mailer delivers notification emails over SMTP.
type Mailer struct {
	cfg       config.MailConfig
	templates *template.Template
}

// New parses the built-in templates and returns a Mailer. The SMTP connection
// is established per send; notification volume does not justify pooling.
func New(cfg config.MailConfig) (*Mailer, error) {
	tmpl, err := template.New("mail").Parse(mailTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Mailer{cfg: cfg, templates: tmpl}, nil
}

// Send renders the named template and delivers the message.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	body := &bytes.Buffer{}
	if err := m.templates.ExecuteTemplate(body, msg.Template, msg.Context); err != nil {
		return fmt.Errorf("render template %q: %w", msg.Template, err)
	}

	email := mail.NewMsg()
	if err := email.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextHTML, body.String())

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
