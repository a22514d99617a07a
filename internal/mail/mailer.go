// Package mail sends transactional email over SMTP. Delivery is a blocking
// call with no retry policy; callers surface failures to the user, who may
// resubmit.
package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	texttemplate "text/template"
	"time"

	"github.com/collabhq/collaboard/internal/config"
)

//go:embed templates/*.html templates/*.txt
var templatesFS embed.FS

// Mailer sends application email. In stub mode (no SMTP host configured)
// messages are logged instead of sent, so development works without a mail
// server.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	stubMode bool
	log      *slog.Logger
	htmlTmpl *template.Template
	textTmpl *texttemplate.Template
}

// New creates a Mailer from configuration.
func New(cfg *config.Config, log *slog.Logger) (*Mailer, error) {
	htmlTmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}
	textTmpl, err := texttemplate.ParseFS(templatesFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.EmailFrom,
		stubMode: cfg.MailStubMode(),
		log:      log,
		htmlTmpl: htmlTmpl,
		textTmpl: textTmpl,
	}, nil
}

// SendVerificationEmail delivers the account verification link. The link is
// valid for validFor from now; the email states the window in hours.
func (m *Mailer) SendVerificationEmail(to, link string, validFor time.Duration) error {
	data := struct {
		Link  string
		Hours int
	}{
		Link:  link,
		Hours: int(validFor.Hours()),
	}

	var html, text bytes.Buffer
	if err := m.htmlTmpl.ExecuteTemplate(&html, "verify_account.html", data); err != nil {
		return fmt.Errorf("failed to render html body: %w", err)
	}
	if err := m.textTmpl.ExecuteTemplate(&text, "verify_account.txt", data); err != nil {
		return fmt.Errorf("failed to render text body: %w", err)
	}

	if m.stubMode {
		m.log.Info("Mail stub mode: verification email not sent", "to", to, "link", link)
		return nil
	}

	msg, err := buildMessage(m.from, to, "Collaboard - Verify Your Account", text.String(), html.String())
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}
	return m.send(to, msg)
}

// buildMessage assembles a multipart/alternative MIME message with plain-text
// and HTML bodies.
func buildMessage(from, to, subject, textBody, htmlBody string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", w.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	// Plain text first; mail clients prefer the last alternative they support
	textPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(textBody)); err != nil {
		return nil, err
	}

	htmlPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// send connects to the SMTP server, upgrades to TLS and delivers the message.
func (m *Mailer) send(to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, m.port)

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("smtp server does not support STARTTLS")
	}
	tlsConfig := &tls.Config{
		ServerName: m.host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}
