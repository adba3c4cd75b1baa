package usecase

import (
	"kqs-apply/internal/domain"
	"kqs-apply/pkg/security"
	"kqs-apply/pkg/validation"
)

// CV rule messages
const (
	MsgCVRequired = "CV upload is required"
	MsgCVType     = "Please upload a PDF or Word document"
	MsgCVSize     = "File size must be less than 5MB"
)

var formValidator = validation.New()

// applicationInput carries the text rules of the apply form
type applicationInput struct {
	Name    string `json:"name" validate:"trimmed_required,trimmed_min=2"`
	Email   string `json:"email" validate:"trimmed_required,loose_email"`
	Subject string `json:"subject" validate:"trimmed_required"`
}

// ValidateApplication computes the complete error set for form.
// The message field never produces an error. When requireAttachment is set
// the CV must be present, a PDF or Word document, and at most 5 MiB; a size
// violation replaces a type violation on the same key.
func ValidateApplication(form domain.ApplicationForm, requireAttachment bool) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	err := formValidator.Struct(applicationInput{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
	})
	for field, msg := range validation.FieldErrors(err) {
		errs[domain.Field(field)] = msg
	}

	if requireAttachment {
		validateAttachment(form.Attachment, errs)
	}
	return errs
}

func validateAttachment(a *domain.Attachment, errs domain.ValidationErrors) {
	if a == nil {
		errs[domain.FieldAttachment] = MsgCVRequired
		return
	}
	if !security.IsCVContentType(a.ContentType) {
		errs[domain.FieldAttachment] = MsgCVType
	}
	if a.Size > security.MaxCVBytes {
		errs[domain.FieldAttachment] = MsgCVSize
	}
}

