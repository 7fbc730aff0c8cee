// Package mailer sends transactional email (invitations) over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email is a single outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers email through a configured SMTP relay.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	from     string
	fromName string
}

// New creates a Mailer. An empty host disables delivery; Send then
// returns an error the caller may log and ignore.
func New(host string, port int, user, pass, from, fromName string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from, fromName: fromName}
}

// Enabled reports whether an SMTP relay is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Send delivers one email. Multipart alternative when both bodies are
// set, plain text otherwise.
func (m *Mailer) Send(e Email) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: no smtp host configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if e.HTMLBody != "" && e.TextBody != "" {
		const boundary = "shelterhub-alt"
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, e.TextBody)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, e.HTMLBody)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	} else {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(e.TextBody)
		b.WriteString("\r\n")
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, []string{e.To}, []byte(b.String()))
}
