package domain_test

import (
	"testing"

	"kqs-apply/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplicationForm(t *testing.T) {
	assert.Equal(t, domain.ApplicationForm{Subject: "Analyst"}, domain.NewApplicationForm("Analyst"))
	assert.Equal(t, domain.ApplicationForm{Subject: domain.DefaultSubject}, domain.NewApplicationForm(""))
}

func TestApplicationFormClone(t *testing.T) {
	form := domain.ApplicationForm{Name: "Jo", Attachment: &domain.Attachment{Filename: "cv.pdf", Size: 10}}

	clone := form.Clone()
	clone.Attachment.Filename = "other.pdf"

	assert.Equal(t, "cv.pdf", form.Attachment.Filename)
}

func TestValidationErrorsFields(t *testing.T) {
	errs := domain.ValidationErrors{domain.FieldSubject: "x", domain.FieldEmail: "y"}
	assert.Equal(t, []string{"email", "subject"}, errs.Fields())
}

func TestFindPosition(t *testing.T) {
	p, ok := domain.FindPosition("  data scientist ")
	require.True(t, ok)
	assert.Equal(t, "Data Scientist", p.Title)
	assert.Equal(t, "Hybrid", p.Location)

	_, ok = domain.FindPosition("Janitor")
	assert.False(t, ok)
}

func TestOpenPositionsReturnsCopy(t *testing.T) {
	positions := domain.OpenPositions()
	require.Len(t, positions, 3)
	positions[0].Requirements[0] = "changed"

	assert.NotEqual(t, "changed", domain.OpenPositions()[0].Requirements[0])
}

func TestDialogCopy(t *testing.T) {
	assert.Equal(t, "Apply Now", domain.DialogTitle(""))
	assert.Equal(t, "Apply for Algorithmic Trader", domain.DialogTitle("Algorithmic Trader"))
	assert.Contains(t, domain.DialogDescription("Algorithmic Trader"), "as a Algorithmic Trader")
}
