package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"kqs-apply/config"
)

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	toEmail   string
	send      SendFunc
}

// ApplicationEmailData holds the data for application emails
type ApplicationEmailData struct {
	ReferenceID    string
	ApplicantName  string
	ApplicantEmail string
	Position       string
	Message        string
	CVFilename     string
}

// FileAttachment is a file sent along with an email
type FileAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewEmailService creates a new email service from the SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: from,
		toEmail:   cfg.ApplicationsEmailTo,
		send:      smtp.SendMail,
	}
}

// WithSendFunc replaces the SMTP delivery function
func (s *EmailService) WithSendFunc(fn SendFunc) *EmailService {
	s.send = fn
	return s
}

// applicationEmailTemplate is the HTML template for application emails
var applicationEmailTemplate = template.Must(template.New("application").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Application</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0b1f3a; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .value { margin-top: 5px; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #0b1f3a; margin-top: 10px; white-space: pre-wrap; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Application: {{.Position}}</h1>
        </div>
        <div class="content">
            <div class="field">
                <div class="label">Applicant:</div>
                <div class="value">{{.ApplicantName}} ({{.ApplicantEmail}})</div>
            </div>
            <div class="field">
                <div class="label">Position:</div>
                <div class="value">{{.Position}}</div>
            </div>
            {{if .CVFilename}}<div class="field">
                <div class="label">CV:</div>
                <div class="value">{{.CVFilename}} (attached)</div>
            </div>{{end}}
            <div class="field">
                <div class="label">Message:</div>
                <div class="message-box">{{if .Message}}{{.Message}}{{else}}(none){{end}}</div>
            </div>
        </div>
        <div class="footer">
            <p>Reference {{.ReferenceID}}. Sent from the Kings Quant Society apply form.</p>
            <p>To reply, send an email to: {{.ApplicantEmail}}</p>
        </div>
    </div>
</body>
</html>`))

// SendApplicationEmail mails an application, with the CV attached when given, to the society inbox
func (s *EmailService) SendApplicationEmail(data ApplicationEmailData, attachment *FileAttachment) error {
	var body bytes.Buffer
	if err := applicationEmailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("Application: %s - %s", data.Position, data.ApplicantName)
	msg, err := buildMessage(s.fromEmail, s.toEmail, data.ApplicantEmail, subject, body.Bytes(), attachment)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	// Setup SMTP authentication
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{s.toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != "" && s.toEmail != ""
}

// buildMessage constructs a multipart/mixed MIME message with an HTML body
func buildMessage(from, to, replyTo, subject string, html []byte, attachment *FileAttachment) ([]byte, error) {
	var msg bytes.Buffer
	w := multipart.NewWriter(&msg)

	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	htmlPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write(html); err != nil {
		return nil, err
	}

	if attachment != nil {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		filePart, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": attachment.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(filePart, attachment.Data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return msg.Bytes(), nil
}

// writeBase64Lines encodes data in 76-character lines as required by RFC 2045
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded + "\r\n"))
	return err
}
