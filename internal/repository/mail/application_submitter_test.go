package mail_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"kqs-apply/internal/domain"
	"kqs-apply/internal/repository/mail"
	"kqs-apply/pkg/apperror"
	"kqs-apply/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendApplicationEmail(data email.ApplicationEmailData, attachment *email.FileAttachment) error {
	return m.Called(data, attachment).Error(0)
}

func (m *MockMailer) IsConfigured() bool {
	return m.Called().Bool(0)
}

func TestSubmitApplication(t *testing.T) {
	form := domain.ApplicationForm{
		Name:    "  Jo ",
		Email:   "jo@x.com ",
		Subject: "Algorithmic Trader",
		Message: " Hello ",
	}

	t.Run("sends trimmed fields without attachment", func(t *testing.T) {
		m := new(MockMailer)
		m.On("IsConfigured").Return(true)
		m.On("SendApplicationEmail", mock.MatchedBy(func(d email.ApplicationEmailData) bool {
			return d.ApplicantName == "Jo" && d.ApplicantEmail == "jo@x.com" &&
				d.Position == "Algorithmic Trader" && d.Message == "Hello" &&
				d.CVFilename == "" && d.ReferenceID != ""
		}), (*email.FileAttachment)(nil)).Return(nil)

		receipt, err := mail.NewApplicationSubmitter(m).SubmitApplication(context.Background(), form)
		require.NoError(t, err)
		assert.NotEmpty(t, receipt.ReferenceID)
		m.AssertExpectations(t)
	})

	t.Run("attaches the CV", func(t *testing.T) {
		withCV := form
		withCV.Attachment = &domain.Attachment{Filename: "cv.pdf", ContentType: "application/pdf", Size: 4, Data: []byte("%PDF")}

		m := new(MockMailer)
		m.On("IsConfigured").Return(true)
		m.On("SendApplicationEmail",
			mock.MatchedBy(func(d email.ApplicationEmailData) bool { return d.CVFilename == "cv.pdf" }),
			&email.FileAttachment{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		).Return(nil)

		_, err := mail.NewApplicationSubmitter(m).SubmitApplication(context.Background(), withCV)
		require.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("unconfigured mailer is unavailable", func(t *testing.T) {
		m := new(MockMailer)
		m.On("IsConfigured").Return(false)

		_, err := mail.NewApplicationSubmitter(m).SubmitApplication(context.Background(), form)

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
		assert.Equal(t, mail.MsgUnavailable, appErr.Message)
		m.AssertNotCalled(t, "SendApplicationEmail", mock.Anything, mock.Anything)
	})

	t.Run("send failure is unavailable", func(t *testing.T) {
		m := new(MockMailer)
		m.On("IsConfigured").Return(true)
		m.On("SendApplicationEmail", mock.Anything, mock.Anything).Return(errors.New("535 auth failed"))

		_, err := mail.NewApplicationSubmitter(m).SubmitApplication(context.Background(), form)
		assert.Equal(t, mail.MsgUnavailable, apperror.UserMessage(err, ""))
		assert.ErrorContains(t, err, "535 auth failed")
	})

	t.Run("cancelled context skips sending", func(t *testing.T) {
		m := new(MockMailer)
		m.On("IsConfigured").Return(true)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := mail.NewApplicationSubmitter(m).SubmitApplication(ctx, form)
		assert.ErrorIs(t, err, context.Canceled)
		m.AssertNotCalled(t, "SendApplicationEmail", mock.Anything, mock.Anything)
	})
}
