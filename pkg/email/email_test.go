package email_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	"kqs-apply/config"
	"kqs-apply/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newService(capture *sent, err error) *email.EmailService {
	cfg := &config.Config{
		SMTPHost:            "smtp.example.org",
		SMTPPort:            "587",
		SMTPUsername:        "robot@example.org",
		SMTPPassword:        "secret",
		SMTPFromEmail:       "noreply@kingsquant.com",
		ApplicationsEmailTo: "recruitment@kingsquant.com",
	}
	return email.NewEmailService(cfg).WithSendFunc(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*capture = sent{addr: addr, from: from, to: to, msg: msg}
		return err
	})
}

func TestSendApplicationEmail(t *testing.T) {
	var got sent
	svc := newService(&got, nil)
	require.True(t, svc.IsConfigured())

	data := email.ApplicationEmailData{
		ReferenceID:    "ref-1",
		ApplicantName:  "Jo <script>",
		ApplicantEmail: "jo@x.com",
		Position:       "Data Scientist",
		Message:        "Hello",
		CVFilename:     "cv.pdf",
	}
	cv := &email.FileAttachment{Filename: "cv.pdf", ContentType: "application/pdf", Data: bytes.Repeat([]byte("%PDF"), 100)}

	require.NoError(t, svc.SendApplicationEmail(data, cv))

	assert.Equal(t, "smtp.example.org:587", got.addr)
	assert.Equal(t, "noreply@kingsquant.com", got.from)
	assert.Equal(t, []string{"recruitment@kingsquant.com"}, got.to)

	msg, err := mail.ReadMessage(bytes.NewReader(got.msg))
	require.NoError(t, err)
	assert.Equal(t, "jo@x.com", msg.Header.Get("Reply-To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Application: Data Scientist - Jo <script>", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	r := multipart.NewReader(msg.Body, params["boundary"])

	htmlPart, err := r.NextPart()
	require.NoError(t, err)
	html, _ := io.ReadAll(htmlPart)
	assert.Contains(t, string(html), "Jo &lt;script&gt;")
	assert.Contains(t, string(html), "ref-1")

	filePart, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", filePart.FileName())
	encoded, _ := io.ReadAll(filePart)
	for _, line := range strings.Split(strings.TrimSpace(string(encoded)), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, cv.Data, decoded)

	_, err = r.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSendApplicationEmailWithoutAttachment(t *testing.T) {
	var got sent
	require.NoError(t, newService(&got, nil).SendApplicationEmail(email.ApplicationEmailData{Position: "General Application"}, nil))
	assert.NotContains(t, string(got.msg), "Content-Disposition: attachment")
}

func TestSendApplicationEmailError(t *testing.T) {
	var got sent
	err := newService(&got, errors.New("535 auth failed")).SendApplicationEmail(email.ApplicationEmailData{}, nil)
	assert.ErrorContains(t, err, "failed to send email")
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, email.NewEmailService(&config.Config{SMTPHost: "smtp"}).IsConfigured())
}
