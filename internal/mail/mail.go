// Package mail renders account emails and hands them to a transport.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

const (
	TemplateVerifyEmail     = "verify-email"
	TemplateVerifiedEmail   = "verified-email"
	TemplateWelcomeEmail    = "welcome-email"
	TemplateAccountRejected = "account-rejected"
	TemplateResetPassword   = "reset-password-email"
	TemplateCustomEmail     = "custom-email"
)

var subjects = map[string]string{
	TemplateVerifyEmail:     "Welcome to The application .",
	TemplateVerifiedEmail:   "Successfully verified email",
	TemplateWelcomeEmail:    "Welcome to the Application, Your account is approved",
	TemplateAccountRejected: "Sorry Your Account is rejected",
	TemplateResetPassword:   "Reset your password",
	TemplateCustomEmail:     "A message from the administrators",
}

// Message is the transport-neutral form of an email. It is what the broker carries.
type Message struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	Data     map[string]string `json:"data"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render returns the subject and HTML body for msg. A "subject" entry in
// msg.Data overrides the template's default subject.
func (r *Renderer) Render(msg Message) (string, string, error) {
	subject, ok := subjects[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", msg.Template)
	}
	if s := msg.Data["subject"]; s != "" {
		subject = s
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, msg.Template, msg.Data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msg.Template, err)
	}
	return subject, buf.String(), nil
}
