package mail

import (
	"context"
	"fmt"
	"strings"

	"kqs-apply/internal/domain"
	"kqs-apply/pkg/apperror"
	"kqs-apply/pkg/email"
	"kqs-apply/pkg/logger"

	"github.com/google/uuid"
)

// MsgUnavailable is shown when the society inbox cannot be reached
const MsgUnavailable = "Application service temporarily unavailable"

// Mailer delivers a rendered application email
type Mailer interface {
	SendApplicationEmail(data email.ApplicationEmailData, attachment *email.FileAttachment) error
	IsConfigured() bool
}

// ApplicationSubmitter mails applications to the society inbox
type ApplicationSubmitter struct {
	mailer Mailer
}

var _ domain.ApplicationSubmitter = (*ApplicationSubmitter)(nil)

// NewApplicationSubmitter creates the SMTP collaborator
func NewApplicationSubmitter(mailer Mailer) *ApplicationSubmitter {
	return &ApplicationSubmitter{mailer: mailer}
}

// SubmitApplication sends the application email. SMTP gives no cancellation,
// so ctx only stops the caller from waiting on it.
func (s *ApplicationSubmitter) SubmitApplication(ctx context.Context, form domain.ApplicationForm) (*domain.SubmissionReceipt, error) {
	if !s.mailer.IsConfigured() {
		return nil, apperror.Unavailable(MsgUnavailable, fmt.Errorf("email service is not configured"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	referenceID := uuid.NewString()
	data := email.ApplicationEmailData{
		ReferenceID:    referenceID,
		ApplicantName:  strings.TrimSpace(form.Name),
		ApplicantEmail: strings.TrimSpace(form.Email),
		Position:       strings.TrimSpace(form.Subject),
		Message:        strings.TrimSpace(form.Message),
	}

	var attachment *email.FileAttachment
	if a := form.Attachment; a != nil {
		data.CVFilename = a.Filename
		attachment = &email.FileAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Data:        a.Data,
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- s.mailer.SendApplicationEmail(data, attachment)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Log.Error("Failed to send application email", "reference_id", referenceID, "error", err)
			return nil, apperror.Unavailable(MsgUnavailable, fmt.Errorf("failed to send application email: %w", err))
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	logger.Log.Info("Application emailed", "reference_id", referenceID, "position", data.Position, "has_cv", attachment != nil)
	return &domain.SubmissionReceipt{ReferenceID: referenceID}, nil
}
