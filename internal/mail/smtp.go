package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"
)

// SMTPMailer delivers transactional mail through a plain SMTP relay
// (Mailpit in development, the shop's provider in production).
type SMTPMailer struct {
	addr    string
	from    string
	baseURL string
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(host string, port int, from, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		addr:    fmt.Sprintf("%s:%d", host, port),
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SendVerification mails the account activation link.
func (m *SMTPMailer) SendVerification(ctx context.Context, email, token string) error {
	link := m.baseURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	body := "Bonjour,\r\n\r\n" +
		"Merci de votre inscription. Cliquez sur le lien ci-dessous pour activer votre compte :\r\n\r\n" +
		link + "\r\n\r\n" +
		"Ce lien expire sous 48 heures.\r\n"
	return m.send(ctx, email, "Activez votre compte", body)
}

// SendPasswordReset mails the password reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	query := url.Values{"token": {token}, "email": {email}}
	link := m.baseURL + "/auth?" + query.Encode()
	body := "Bonjour,\r\n\r\n" +
		"Une réinitialisation de mot de passe a été demandée pour votre compte.\r\n" +
		"Cliquez sur le lien ci-dessous pour choisir un nouveau mot de passe :\r\n\r\n" +
		link + "\r\n\r\n" +
		"Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.\r\n"
	return m.send(ctx, email, "Réinitialisation de votre mot de passe", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
}
