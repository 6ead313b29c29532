package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Mailer delivers the two reporter-facing emails over SMTP. Delivery is
// best-effort: errors surface as outbox job failures and are retried with
// backoff, never shown to the reporter.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string

	// InsecureSkipVerify skips TLS certificate verification, useful for
	// local capture servers like MailHog.
	InsecureSkipVerify bool
}

func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

// SendAuthCodeEmail tells the reporter their auth code after a submission.
func (m *Mailer) SendAuthCodeEmail(ctx context.Context, email, authCode, inquiryID string) error {
	subject := "Your inquiry has been received"
	body := fmt.Sprintf(
		"Your inquiry %s has been received.\r\n\r\n"+
			"Keep this code to check its status later: %s\r\n\r\n"+
			"You will need both this code and the email address you submitted with.\r\n",
		inquiryID, authCode)
	return m.send(ctx, email, subject, body)
}

// SendReplyEmail tells the reporter a reply has been posted. The reply body
// itself is not included; the reporter retrieves it through the encrypted
// verification flow.
func (m *Mailer) SendReplyEmail(ctx context.Context, email, inquiryID string) error {
	subject := "Your inquiry has a new reply"
	body := fmt.Sprintf(
		"A reply has been posted to your inquiry %s.\r\n\r\n"+
			"Use your email address and auth code to read it.\r\n",
		inquiryID)
	return m.send(ctx, email, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	var sb strings.Builder
	sb.WriteString("From: " + m.from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if err := c.Hello("localhost"); err != nil {
		return err
	}

	// STARTTLS when the server offers it; local capture servers may not.
	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{ServerName: m.host, InsecureSkipVerify: m.InsecureSkipVerify}
		if err := c.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if m.user != "" {
		auth := smtp.PlainAuth("", m.user, m.pass, m.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(sb.String())); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
