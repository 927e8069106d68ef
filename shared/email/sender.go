package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"video-insights/internal/models"
	"video-insights/shared/config"
)

//go:embed digest.html
var digestTemplate string

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"thousands": thousands,
	"safeCSS":   func(s string) template.CSS { return template.CSS(s) },
}).Parse(digestTemplate))

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// SendDigest mails the high-potential videos of a refresh. An empty report sends nothing.
func (s *Sender) SendDigest(report *models.DigestReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if len(report.Videos) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Video Insights - %d High-Potential Videos (%s)",
		len(report.Videos), report.Date.Format("Jan 2, 2006"))

	body, err := RenderDigest(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	return s.sendViaSMTP(subject, htmlBody)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

func RenderDigest(report *models.DigestReport) (string, error) {
	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// thousands formats n with English digit grouping. Printers carry state, so each call gets its own.
func thousands(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
