package domain

import (
	"context"
	"sort"
)

// Field identifies one input of the application form
type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldSubject    Field = "subject"
	FieldMessage    Field = "message"
	FieldAttachment Field = "attachment"
)

// DefaultSubject seeds the subject when the dialog is opened without a job title
const DefaultSubject = "General Application"

// SuccessMessage replaces the form once the application has been accepted
const SuccessMessage = "Application submitted successfully! Thank you for your interest in joining KQS. We'll review your application and get back to you soon."

// Attachment is the CV uploaded with an application
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// ApplicationForm holds the values of one application dialog
type ApplicationForm struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Subject    string      `json:"subject"` // Seeded from the job title, read-only to the applicant
	Message    string      `json:"message"` // Optional
	Attachment *Attachment `json:"attachment,omitempty"`
}

// NewApplicationForm returns an empty form whose subject is jobTitle, or DefaultSubject
func NewApplicationForm(jobTitle string) ApplicationForm {
	subject := jobTitle
	if subject == "" {
		subject = DefaultSubject
	}
	return ApplicationForm{Subject: subject}
}

// Clone copies the form. Attachment bytes are shared and must not be mutated.
func (f ApplicationForm) Clone() ApplicationForm {
	if f.Attachment != nil {
		a := *f.Attachment
		f.Attachment = &a
	}
	return f
}

// ValidationErrors maps a field to its human-readable error
type ValidationErrors map[Field]string

func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// Fields returns the fields with errors in lexical order
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for k := range v {
		fields = append(fields, string(k))
	}
	sort.Strings(fields)
	return fields
}

// FormState is the lifecycle state of an application dialog
type FormState int

const (
	StateEditing FormState = iota
	StateValidating
	StateSubmitting
	StateSubmitted
)

func (s FormState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// SubmissionReceipt is returned by a collaborator that accepted an application
type SubmissionReceipt struct {
	ReferenceID string `json:"reference_id"`
	Message     string `json:"message,omitempty"`
}

// FormSnapshot is a read-only copy of a dialog's state for rendering
type FormSnapshot struct {
	Open        bool
	State       FormState
	Form        ApplicationForm
	Errors      ValidationErrors
	SubmitError string // Top-level error from the last failed submission
	Receipt     *SubmissionReceipt
	CanSubmit   bool
}

// ApplicationSubmitter delivers a validated application to whoever reviews it
type ApplicationSubmitter interface {
	SubmitApplication(ctx context.Context, form ApplicationForm) (*SubmissionReceipt, error)
}
